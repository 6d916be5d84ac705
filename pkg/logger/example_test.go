package logger_test

import (
	"log/slog"

	"github.com/soundprediction/rembed/pkg/logger"
)

func ExampleNewDefaultLogger() {
	// Create a logger with default settings
	log := logger.NewDefaultLogger(slog.LevelDebug)

	// Log different levels
	log.Debug("This is a debug message")
	log.Info("This is an info message")
	log.Info("Batch finished", "client", "c1") // Will be green in terminal
	log.Warn("This is a warning message")      // Will be yellow in terminal
	log.Error("This is an error message")      // Will be red in terminal
}

func ExampleNewLogger() {
	// Create a logger with custom configuration
	log := logger.NewDefaultLogger(slog.LevelInfo)

	// Log with attributes
	log.Info("Processing request", "client", "c1", "function", "embed_batch")
	log.Info("Batch finished", "total", 42, "concurrency", 4)                  // Green
	log.Warn("Circuit breaker half-open", "endpoint", "ollama")                // Yellow
	log.Error("Provider request failed", "error", "timeout", "retry_count", 3) // Red
}
