package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedding_Deterministic(t *testing.T) {
	a := MockEmbedding("hello world", 10)
	b := MockEmbedding("hello world", 10)
	assert.Equal(t, a, b)
	assert.NotEqual(t, MockEmbedding("hello", 10), MockEmbedding("world", 10))
}

func TestMockEmbedding_Range(t *testing.T) {
	for _, v := range MockEmbedding("test", 1536) {
		assert.GreaterOrEqual(t, v, float32(-1))
		assert.LessOrEqual(t, v, float32(1))
	}
}

func TestMockHash(t *testing.T) {
	assert.Equal(t, uint32(0), mockHash(""))
	// 'a' = 97, 'b' = 98: 97*31 + 98
	assert.Equal(t, uint32(3105), mockHash("ab"))
}

func TestMockProvider(t *testing.T) {
	p := NewMockProvider()
	vec, err := p.Embed(context.Background(), "any", "text")
	require.NoError(t, err)
	assert.Len(t, vec, DefaultMockDimensions)

	desc, err := p.Describe(context.Background(), DescribeRequest{Image: []byte{1, 2, 3}, MIMEType: "image/png"})
	require.NoError(t, err)
	assert.Contains(t, desc, "3 byte image/png")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Embed(ctx, "any", "text")
	assert.ErrorIs(t, err, context.Canceled)
}
