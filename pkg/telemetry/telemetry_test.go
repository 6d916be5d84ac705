package telemetry

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/soundprediction/rembed/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parquetFiles(t *testing.T, dir, prefix string) []string {
	t.Helper()
	files, err := filepath.Glob(filepath.Join(dir, prefix+"*.parquet"))
	require.NoError(t, err)
	return files
}

func TestParquetStatsRecorder(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewParquetStatsRecorder(dir, 2)
	require.NoError(t, err)

	ctx := context.WithValue(context.Background(), types.ContextKeyRequestID, "req-1")
	require.NoError(t, rec.RecordBatch(ctx, BatchRecord{JobID: "job-1", Client: "c1", Total: 3, Successful: 2, Failed: 1}))
	assert.Empty(t, parquetFiles(t, dir, "batch_stats_"), "below batch size nothing is written")

	require.NoError(t, rec.RecordBatch(context.Background(), BatchRecord{JobID: "job-2", Client: "c1", Total: 1, Successful: 1}))
	files := parquetFiles(t, dir, "batch_stats_")
	require.Len(t, files, 1)

	rows, err := parquet.ReadFile[BatchRecord](files[0])
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "job-1", rows[0].JobID)
	assert.Equal(t, "req-1", rows[0].RequestID)
	assert.NotEmpty(t, rows[0].ID)
	assert.Equal(t, 1, rows[0].Failed)

	require.NoError(t, rec.Close())
}

func TestParquetStatsRecorder_CloseFlushes(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewParquetStatsRecorder(dir, 0)
	require.NoError(t, err)

	require.NoError(t, rec.RecordBatch(context.Background(), BatchRecord{JobID: "job-1"}))
	require.NoError(t, rec.Close())
	assert.Len(t, parquetFiles(t, dir, "batch_stats_"), 1)
}

func TestParquetHandler(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	h, err := NewParquetHandler(slog.NewTextHandler(&out, nil), dir)
	require.NoError(t, err)
	logger := slog.New(h).With("component", "dispatch")

	ctx := context.WithValue(context.Background(), types.ContextKeyClientName, "c1")
	logger.InfoContext(ctx, "batch started")
	logger.ErrorContext(ctx, "provider failed", "error", errors.New("connection refused"))

	assert.Contains(t, out.String(), "batch started")
	assert.Contains(t, out.String(), "provider failed")

	require.NoError(t, h.Flush())
	files := parquetFiles(t, dir, "execution_errors_")
	require.Len(t, files, 1)

	rows, err := parquet.ReadFile[LogRecord](files[0])
	require.NoError(t, err)
	require.Len(t, rows, 1, "only errors are persisted")
	assert.Equal(t, "provider failed", rows[0].Message)
	assert.Equal(t, "c1", rows[0].Client)
	assert.Contains(t, rows[0].Attributes, "connection refused")
	assert.Contains(t, rows[0].Attributes, "dispatch")
	assert.WithinDuration(t, time.Now(), rows[0].Timestamp, time.Minute)
}

func TestNewParquetHandler_BadDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	_, err := NewParquetHandler(slog.Default().Handler(), filepath.Join(file, "sub"))
	assert.Error(t, err)
}
