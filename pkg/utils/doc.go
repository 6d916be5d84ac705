// Package utils provides concurrency and recovery helpers for rembed.
//
// This package contains:
//   - A sliding-window worker pool with per-item results (concurrent.go)
//   - Panic recovery helpers (recovery.go)
//   - Environment helpers (helpers.go)
//   - Cosine similarity and top-k ranking of vectors (vector.go)
package utils
