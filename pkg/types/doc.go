// Package types defines the core data types shared across rembed.
//
// This package contains the fundamental types used throughout rembed:
//   - ClientDescriptor: the canonical, parsed configuration of an embedding client
//   - ProviderFormat: the provider family a client talks to
//   - Vector: an embedding encoded as little-endian float32 values
//   - the error taxonomy returned by registration, invocation and batches
//
// # Text and multimodal clients
//
// A descriptor with a non-empty EmbeddingModel is multimodal: images are first
// described by Model and the description is then embedded by EmbeddingModel.
// Every other descriptor is a text client.
//
//	d := types.ClientDescriptor{Name: "c2", Format: types.FormatOllama, Model: "llava", EmbeddingModel: "nomic-embed-text"}
//	d.IsMultimodal() // true
//
// # Errors
//
// Error types implement Is so that callers can match through wrapping:
//
//	if errors.Is(err, &types.ClientNotRegisteredError{}) {
//	    // Handle missing client
//	}
//
// ErrorKind maps any error to a stable name used in batch results and HTTP
// responses.
package types
