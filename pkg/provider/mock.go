package provider

import (
	"context"
	"fmt"
	"math"
)

// DefaultMockDimensions is the vector size produced by MockProvider.
const DefaultMockDimensions = 1536

// MockProvider returns deterministic embeddings derived from the input text.
type MockProvider struct {
	Dimensions int
}

// NewMockProvider creates a MockProvider with DefaultMockDimensions.
func NewMockProvider() *MockProvider {
	return &MockProvider{Dimensions: DefaultMockDimensions}
}

func (m *MockProvider) Embed(ctx context.Context, model, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dims := m.Dimensions
	if dims <= 0 {
		dims = DefaultMockDimensions
	}
	return MockEmbedding(text, dims), nil
}

func (m *MockProvider) Describe(ctx context.Context, req DescribeRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf("mock description of a %d byte %s image (hash %08x)", len(req.Image), req.MIMEType, mockHash(string(req.Image))), nil
}

// MockEmbedding maps text to dims values in [-1, 1]. Equal texts always yield
// equal vectors.
func MockEmbedding(text string, dims int) []float32 {
	hash := mockHash(text)
	out := make([]float32, dims)
	for i := range out {
		out[i] = float32(hash+uint32(i))/float32(math.MaxUint32)*2 - 1
	}
	return out
}

func mockHash(text string) uint32 {
	var acc uint32
	for i := 0; i < len(text); i++ {
		acc = acc*31 + uint32(text[i])
	}
	return acc
}
