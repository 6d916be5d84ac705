package rembed_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/soundprediction/rembed"
	"github.com/soundprediction/rembed/pkg/config"
	"github.com/soundprediction/rembed/pkg/provider"
	"github.com/soundprediction/rembed/pkg/telemetry"
	"github.com/soundprediction/rembed/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

var _ rembed.Embedder = (*rembed.Client)(nil)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestClient(t *testing.T, cfg *config.Config, opts ...rembed.Options) *rembed.Client {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	c, err := rembed.New(cfg, quietLogger(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

type memoryRecorder struct {
	mu      sync.Mutex
	records []telemetry.BatchRecord
}

func (r *memoryRecorder) RecordBatch(ctx context.Context, record telemetry.BatchRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}

func TestClient_TextScenario(t *testing.T) {
	c := newTestClient(t, nil)
	require.NoError(t, c.Register("c1", "mock:key123"))

	vec, err := c.EmbedText(context.Background(), "c1", "hello")
	require.NoError(t, err)
	assert.Equal(t, provider.MockEmbedding("hello", provider.DefaultMockDimensions), vec.Floats())

	_, err = c.EmbedImage(context.Background(), "c1", pngHeader, "")
	assert.ErrorIs(t, err, &types.ClientNotRegisteredError{})
}

func TestClient_MultimodalScenario(t *testing.T) {
	c := newTestClient(t, nil)
	require.NoError(t, c.Register("c2", []string{"format", "mock", "model", "vision", "embedding_model", "embed"}))

	vec, err := c.EmbedImage(context.Background(), "c2", pngHeader, "")
	require.NoError(t, err)
	assert.Equal(t, provider.DefaultMockDimensions, vec.Dimensions())

	_, err = c.EmbedText(context.Background(), "c2", "hello")
	assert.ErrorIs(t, err, &types.ClientNotRegisteredError{})

	res, err := c.EmbedImagesBatch(context.Background(), "c2", [][]byte{pngHeader, pngHeader})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Stats.Successful)
	assert.Equal(t, vec, res.Results[0].Embedding)
}

func TestClient_RegisterFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Clients = map[string]any{
		"b": "mock::m",
		"a": map[string]any{"format": "mock", "model": "v", "embedding_model": "e"},
	}
	c := newTestClient(t, cfg)

	assert.Equal(t, []string{"a", "b"}, c.ListRegisteredNames())
	descs := c.Clients()
	require.Len(t, descs, 2)
	assert.True(t, descs[0].IsMultimodal())
}

func TestClient_RegisterFromConfigMalformed(t *testing.T) {
	cfg := config.Default()
	cfg.Clients = map[string]any{"bad": ":nothing"}
	_, err := rembed.New(cfg, quietLogger())
	assert.ErrorIs(t, err, &types.MalformedConfigError{})
}

func TestClient_Batch(t *testing.T) {
	rec := &memoryRecorder{}
	c := newTestClient(t, nil, rembed.Options{Recorder: rec})
	require.NoError(t, c.Register("c1", "mock::m"))

	_, err := c.EmbedBatch(context.Background(), "c1", nil)
	assert.ErrorIs(t, err, types.ErrEmptyBatch)

	res, err := c.EmbedBatch(context.Background(), "c1", []string{"a", "", "c"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Stats.Successful)
	assert.Equal(t, 1, res.Stats.Failed)
	assert.Equal(t, types.KindEmptyInput, res.Results[1].ErrorKind())
	assert.Equal(t, 4, res.Concurrency)

	require.Len(t, rec.records, 1)
	assert.Equal(t, res.JobID, rec.records[0].JobID)
}

func TestClient_EmbedBatchJSON(t *testing.T) {
	c := newTestClient(t, nil)
	require.NoError(t, c.Register("c1", "mock::m"))

	out, err := c.EmbedBatchJSON(context.Background(), "c1", `["a", "b"]`)
	require.NoError(t, err)

	var encoded []string
	require.NoError(t, json.Unmarshal([]byte(out), &encoded))
	require.Len(t, encoded, 2)
	raw, err := base64.StdEncoding.DecodeString(encoded[1])
	require.NoError(t, err)
	assert.Equal(t, provider.MockEmbedding("b", provider.DefaultMockDimensions), types.Vector(raw).Floats())

	tests := []struct {
		name  string
		input string
		check func(t *testing.T, err error)
	}{
		{"invalid json", `not json`, func(t *testing.T, err error) { assert.ErrorContains(t, err, "invalid JSON array") }},
		{"empty array", `[]`, func(t *testing.T, err error) { assert.ErrorIs(t, err, types.ErrEmptyBatch) }},
		{"failed item", `["a", ""]`, func(t *testing.T, err error) { assert.ErrorIs(t, err, types.ErrEmptyInput) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.EmbedBatchJSON(context.Background(), "c1", tt.input)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestClient_TelemetryWrittenOnClose(t *testing.T) {
	cfg := config.Default()
	cfg.Telemetry.ParquetPath = t.TempDir()
	c, err := rembed.New(cfg, quietLogger())
	require.NoError(t, err)
	require.NoError(t, c.Register("c1", "mock::m"))

	_, err = c.EmbedBatch(context.Background(), "c1", []string{"a"})
	require.NoError(t, err)
	require.NoError(t, c.Close())

	files, err := filepath.Glob(filepath.Join(cfg.Telemetry.ParquetPath, "batch_stats_*.parquet"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestClient_VersionAndDebug(t *testing.T) {
	c := newTestClient(t, nil)
	assert.Equal(t, rembed.Version(), c.Version())
	assert.Regexp(t, `^v\d+\.\d+\.\d+`, c.Version())

	debug := c.Debug()
	assert.Contains(t, debug, "Version: "+c.Version())
	assert.Contains(t, debug, "ollama")
}
