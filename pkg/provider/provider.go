package provider

import (
	"context"
)

// Provider is one remote (or simulated) AI endpoint. Implementations are safe
// for concurrent use.
type Provider interface {
	// Embed returns the embedding of text produced by model.
	Embed(ctx context.Context, model, text string) ([]float32, error)

	// Describe asks a vision model for a textual description of an image.
	Describe(ctx context.Context, req DescribeRequest) (string, error)
}

// DescribeRequest is the input of the describe stage of image embedding.
type DescribeRequest struct {
	Model string
	Image []byte
	// MIMEType is the detected image type, e.g. "image/png".
	MIMEType string
	// Prompt is the user prompt sent alongside the image.
	Prompt string
	// SystemPrompt is optional.
	SystemPrompt string
}
