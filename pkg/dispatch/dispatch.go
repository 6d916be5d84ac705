package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/soundprediction/rembed/pkg/invoker"
	"github.com/soundprediction/rembed/pkg/telemetry"
	"github.com/soundprediction/rembed/pkg/types"
	"github.com/soundprediction/rembed/pkg/utils"
)

// Batch kinds reported in BatchResult and telemetry.
const (
	KindText  = "text"
	KindImage = "image"
)

// Result is the outcome of one batch item.
type Result struct {
	Index     int          `json:"index"`
	Embedding types.Vector `json:"embedding,omitempty"`
	Err       error        `json:"-"`
}

// OK reports whether the item produced an embedding.
func (r Result) OK() bool {
	return r.Err == nil
}

// ErrorKind returns the taxonomy name of the item error, or "".
func (r Result) ErrorKind() string {
	return types.ErrorKind(r.Err)
}

// Stats summarizes a finished batch.
type Stats struct {
	Total      int           `json:"total"`
	Successful int           `json:"successful"`
	Failed     int           `json:"failed"`
	Elapsed    time.Duration `json:"elapsed"`
	// Throughput is items per second, 0 when no time elapsed.
	Throughput float64       `json:"throughput"`
	AvgPerItem time.Duration `json:"avg_per_item"`
}

// BatchResult holds one result per input, in input order.
type BatchResult struct {
	JobID       string   `json:"job_id"`
	Client      string   `json:"client"`
	Kind        string   `json:"kind"`
	Concurrency int      `json:"concurrency"`
	Results     []Result `json:"results"`
	Stats       Stats    `json:"stats"`
}

// Embeddings returns the vectors of all items, nil for failed ones.
func (b *BatchResult) Embeddings() []types.Vector {
	out := make([]types.Vector, len(b.Results))
	for i, r := range b.Results {
		out[i] = r.Embedding
	}
	return out
}

// StatsRecorder receives the statistics of every finished batch.
type StatsRecorder interface {
	RecordBatch(ctx context.Context, record telemetry.BatchRecord) error
}

// Options configures a Dispatcher.
type Options struct {
	// DefaultConcurrency applies to clients without max_concurrent_requests.
	DefaultConcurrency int
	Recorder           StatsRecorder
	Logger             *slog.Logger
}

// Dispatcher runs batches through an Invoker.
type Dispatcher struct {
	invoker *invoker.Invoker
	opts    Options
	logger  *slog.Logger
}

// New creates a Dispatcher.
func New(inv *invoker.Invoker, opts Options) *Dispatcher {
	if opts.DefaultConcurrency <= 0 {
		opts.DefaultConcurrency = types.DefaultMaxConcurrentRequests
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		invoker: inv,
		opts:    opts,
		logger:  logger,
	}
}

// EmbedBatch embeds every text with the text client registered as name.
func (d *Dispatcher) EmbedBatch(ctx context.Context, name string, texts []string) (*BatchResult, error) {
	desc, err := d.invoker.LookupText(name, invoker.FuncEmbedBatch)
	if err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return nil, types.ErrEmptyBatch
	}

	return run(ctx, d, desc, KindText, texts, func(ctx context.Context, _ int, text string) (types.Vector, error) {
		return d.invoker.InvokeText(ctx, desc, text)
	})
}

// EmbedImagesBatch describes and embeds every image with the multimodal
// client registered as name. prompt applies to every image; empty uses the
// default prompt.
func (d *Dispatcher) EmbedImagesBatch(ctx context.Context, name string, images [][]byte, prompt string) (*BatchResult, error) {
	desc, err := d.invoker.LookupMultimodal(name, invoker.FuncEmbedImagesBatch)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, types.ErrEmptyBatch
	}

	return run(ctx, d, desc, KindImage, images, func(ctx context.Context, _ int, image []byte) (types.Vector, error) {
		return d.invoker.InvokeImage(ctx, desc, image, prompt)
	})
}

func run[T any](ctx context.Context, d *Dispatcher, desc types.ClientDescriptor, kind string, items []T, worker utils.Worker[T, types.Vector]) (*BatchResult, error) {
	jobID := uuid.New().String()
	concurrency := desc.Concurrency(d.opts.DefaultConcurrency)
	ctx = context.WithValue(ctx, types.ContextKeyClientName, desc.Name)

	d.logger.Debug("batch started",
		"job_id", jobID,
		"client", desc.Name,
		"kind", kind,
		"items", len(items),
		"concurrency", concurrency)

	pool := utils.NewWorkerPool(concurrency, worker)
	start := time.Now()
	vectors, errs := pool.ProcessItems(ctx, items)
	elapsed := time.Since(start)

	results := make([]Result, len(items))
	for i := range items {
		results[i] = Result{Index: i, Embedding: vectors[i], Err: errs[i]}
		if errs[i] != nil {
			results[i].Embedding = nil
		}
	}

	res := &BatchResult{
		JobID:       jobID,
		Client:      desc.Name,
		Kind:        kind,
		Concurrency: concurrency,
		Results:     results,
		Stats:       computeStats(results, elapsed),
	}

	d.logger.Info("batch finished",
		"job_id", jobID,
		"client", desc.Name,
		"kind", kind,
		"total", res.Stats.Total,
		"successful", res.Stats.Successful,
		"failed", res.Stats.Failed,
		"elapsed", elapsed,
		"throughput", res.Stats.Throughput)

	d.record(ctx, desc, res)
	return res, nil
}

func (d *Dispatcher) record(ctx context.Context, desc types.ClientDescriptor, res *BatchResult) {
	if d.opts.Recorder == nil {
		return
	}
	err := d.recordBatch(ctx, telemetry.BatchRecord{
		JobID:        res.JobID,
		Client:       desc.Name,
		Provider:     string(desc.Format),
		Model:        desc.Model,
		Kind:         res.Kind,
		Concurrency:  res.Concurrency,
		Total:        res.Stats.Total,
		Successful:   res.Stats.Successful,
		Failed:       res.Stats.Failed,
		ElapsedMs:    res.Stats.Elapsed.Milliseconds(),
		Throughput:   res.Stats.Throughput,
		AvgPerItemMs: float64(res.Stats.AvgPerItem) / float64(time.Millisecond),
	})
	if err != nil {
		d.logger.Warn("failed to record batch statistics", "job_id", res.JobID, "error", err)
	}
}

// recordBatch turns a panicking recorder into an error.
func (d *Dispatcher) recordBatch(ctx context.Context, rec telemetry.BatchRecord) (err error) {
	defer utils.RecoverAsError(&err)
	return d.opts.Recorder.RecordBatch(ctx, rec)
}

func computeStats(results []Result, elapsed time.Duration) Stats {
	s := Stats{Total: len(results), Elapsed: elapsed}
	for _, r := range results {
		if r.OK() {
			s.Successful++
		} else {
			s.Failed++
		}
	}
	if secs := elapsed.Seconds(); secs > 0 {
		s.Throughput = float64(s.Total) / secs
	}
	if s.Total > 0 {
		s.AvgPerItem = elapsed / time.Duration(s.Total)
	}
	return s
}
