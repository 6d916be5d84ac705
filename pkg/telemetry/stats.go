package telemetry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
	"github.com/soundprediction/rembed/pkg/types"
)

// BatchRecord represents the statistics of one completed batch
type BatchRecord struct {
	ID            string    `parquet:"id"`
	JobID         string    `parquet:"job_id"`
	Timestamp     time.Time `parquet:"timestamp"`
	Client        string    `parquet:"client"`
	Provider      string    `parquet:"provider"`
	Model         string    `parquet:"model"`
	Kind          string    `parquet:"kind"` // text or image
	Concurrency   int       `parquet:"concurrency"`
	Total         int       `parquet:"total"`
	Successful    int       `parquet:"successful"`
	Failed        int       `parquet:"failed"`
	ElapsedMs     int64     `parquet:"elapsed_ms"`
	Throughput    float64   `parquet:"throughput"`
	AvgPerItemMs  float64   `parquet:"avg_per_item_ms"`
	RequestID     string    `parquet:"request_id"`
	RequestSource string    `parquet:"request_source"`
}

// ParquetStatsRecorder persists batch statistics to Parquet files
type ParquetStatsRecorder struct {
	outputDir string
	mu        sync.Mutex
	buffer    []BatchRecord
	batchSize int
}

// NewParquetStatsRecorder creates a recorder writing to outputDir. Records are
// buffered and written every batchSize records and on Close.
func NewParquetStatsRecorder(outputDir string, batchSize int) (*ParquetStatsRecorder, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create batch statistics directory: %w", err)
	}
	if batchSize <= 0 {
		batchSize = 100
	}

	return &ParquetStatsRecorder{
		outputDir: outputDir,
		buffer:    make([]BatchRecord, 0, batchSize),
		batchSize: batchSize,
	}, nil
}

// RecordBatch adds a record to the buffer
func (r *ParquetStatsRecorder) RecordBatch(ctx context.Context, record BatchRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}
	if v, ok := ctx.Value(types.ContextKeyRequestID).(string); ok && record.RequestID == "" {
		record.RequestID = v
	}
	if v, ok := ctx.Value(types.ContextKeyRequestSource).(string); ok && record.RequestSource == "" {
		record.RequestSource = v
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.buffer = append(r.buffer, record)

	if len(r.buffer) >= r.batchSize {
		return r.flush()
	}

	return nil
}

// Flush writes buffered records.
func (r *ParquetStatsRecorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flush()
}

// Close flushes remaining records.
func (r *ParquetStatsRecorder) Close() error {
	return r.Flush()
}

// flush writes the current buffer to a new Parquet file
// Caller must hold the lock
func (r *ParquetStatsRecorder) flush() error {
	if len(r.buffer) == 0 {
		return nil
	}

	filename := fmt.Sprintf("batch_stats_%s_%d.parquet", time.Now().Format("20060102_150405"), time.Now().UnixNano())
	if err := parquet.WriteFile(filepath.Join(r.outputDir, filename), r.buffer); err != nil {
		return fmt.Errorf("failed to write batch statistics parquet file: %w", err)
	}

	r.buffer = r.buffer[:0]
	return nil
}
