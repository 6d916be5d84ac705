package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"scaled", []float32{1, 2}, []float32{2, 4}, 1},
		{"different lengths", []float32{1, 2}, []float32{1}, 0},
		{"empty", nil, nil, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-6)
		})
	}
}

func TestNormalize(t *testing.T) {
	v := Normalize([]float32{3, 4})
	require.Len(t, v, 2)
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)
	assert.InDelta(t, 1, Magnitude(v), 1e-6)

	assert.Nil(t, Normalize(nil))
	assert.Nil(t, Normalize([]float32{0, 0}))
}

func TestMagnitude(t *testing.T) {
	assert.InDelta(t, 5, Magnitude([]float32{3, 4}), 1e-9)
	assert.InDelta(t, math.Sqrt(3), Magnitude([]float32{1, 1, 1}), 1e-9)
	assert.Zero(t, Magnitude(nil))
}

func TestTopKByScore(t *testing.T) {
	items := []ScoredItem[string]{
		{"a", 0.1}, {"b", 0.9}, {"c", 0.5}, {"d", 0.7}, {"e", 0.3},
	}

	tests := []struct {
		name string
		k    int
		want []string
	}{
		{"top two", 2, []string{"b", "d"}},
		{"top three", 3, []string{"b", "d", "c"}},
		{"all", 5, []string{"b", "d", "c", "e", "a"}},
		{"more than available", 10, []string{"b", "d", "c", "e", "a"}},
		{"zero", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TopKByScore(items, tt.k)
			var names []string
			for _, item := range got {
				names = append(names, item.Item)
			}
			assert.Equal(t, tt.want, names)
		})
	}

	assert.Equal(t, "a", items[0].Item, "input is not reordered")
}

func BenchmarkCosineSimilarity(b *testing.B) {
	a := make([]float32, 1536)
	c := make([]float32, 1536)
	for i := range a {
		a[i] = float32(i)
		c[i] = float32(len(a) - i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		CosineSimilarity(a, c)
	}
}
