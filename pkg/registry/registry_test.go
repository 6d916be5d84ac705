package registry

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/soundprediction/rembed/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_TextClient(t *testing.T) {
	r := New()
	_, err := r.Register("c1", "mock:key123")
	require.NoError(t, err)

	d, ok := r.LookupText("c1")
	require.True(t, ok)
	assert.Equal(t, types.FormatMock, d.Format)
	assert.Equal(t, "key123", d.Credential)

	_, ok = r.LookupMultimodal("c1")
	assert.False(t, ok)
}

func TestRegistry_MultimodalClient(t *testing.T) {
	r := New()
	_, err := r.Register("c2", map[string]string{
		"format":          "ollama",
		"model":           "llava",
		"embedding_model": "nomic-embed-text",
	})
	require.NoError(t, err)

	_, ok := r.LookupMultimodal("c2")
	assert.True(t, ok)
	_, ok = r.LookupText("c2")
	assert.False(t, ok)

	kind, ok := r.Kind("c2")
	require.True(t, ok)
	assert.Equal(t, KindMultimodal, kind)
	assert.Equal(t, "multimodal", kind.String())
}

func TestRegistry_ReRegisterMovesClassification(t *testing.T) {
	r := New()
	_, err := r.Register("c", "mock:first")
	require.NoError(t, err)

	_, err = r.Register("c", []string{"format", "mock", "model", "vision", "embedding_model", "embed"})
	require.NoError(t, err)

	_, ok := r.LookupText("c")
	assert.False(t, ok, "stale text entry must be removed")
	d, ok := r.LookupMultimodal("c")
	require.True(t, ok)
	assert.Equal(t, "vision", d.Model)
	assert.Empty(t, d.Credential, "upsert replaces, it does not merge")

	_, err = r.Register("c", "mock:second")
	require.NoError(t, err)
	_, ok = r.LookupMultimodal("c")
	assert.False(t, ok)
	d, ok = r.LookupText("c")
	require.True(t, ok)
	assert.Equal(t, "second", d.Credential)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_MalformedLeavesRegistryUntouched(t *testing.T) {
	r := New()
	_, err := r.Register("c", "mock:key")
	require.NoError(t, err)

	_, err = r.Register("c", `{"provider": `)
	require.Error(t, err)
	assert.True(t, errors.Is(err, &types.MalformedConfigError{}))

	d, ok := r.LookupText("c")
	require.True(t, ok)
	assert.Equal(t, "key", d.Credential)

	_, err = r.Register("", "mock:key")
	assert.True(t, errors.Is(err, &types.MalformedConfigError{}))
}

func TestRegistry_ListNamesAndDescriptors(t *testing.T) {
	r := New()
	assert.Empty(t, r.ListNames())

	r.Put(types.ClientDescriptor{Name: "b", Format: types.FormatMock, Model: "m", Credential: "sk-verysecretkey"})
	r.Put(types.ClientDescriptor{Name: "a", Format: types.FormatMock, Model: "v", EmbeddingModel: "e"})

	assert.Equal(t, []string{"a", "b"}, r.ListNames())

	descs := r.Descriptors()
	require.Len(t, descs, 2)
	assert.Equal(t, "a", descs[0].Name)
	assert.Equal(t, "sk-v****", descs[1].Credential)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := New()
	var wg sync.WaitGroup

	for i := 0; i < 40; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("c%d", i%5)
			if i%2 == 0 {
				_, _ = r.Register(name, "mock:key")
			} else {
				_, _ = r.Register(name, []string{"format", "mock", "model", "v", "embedding_model", "e"})
			}
		}(i)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("c%d", i%5)
			if d, ok := r.LookupText(name); ok {
				assert.False(t, d.IsMultimodal())
			}
			if d, ok := r.LookupMultimodal(name); ok {
				assert.True(t, d.IsMultimodal())
			}
			_ = r.ListNames()
		}(i)
	}
	wg.Wait()

	for _, name := range r.ListNames() {
		_, text := r.LookupText(name)
		_, multi := r.LookupMultimodal(name)
		assert.True(t, text != multi, "name %s must have exactly one classification", name)
	}
}
