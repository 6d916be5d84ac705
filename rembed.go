package rembed

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strings"

	"github.com/soundprediction/rembed/pkg/alert"
	"github.com/soundprediction/rembed/pkg/config"
	"github.com/soundprediction/rembed/pkg/dispatch"
	"github.com/soundprediction/rembed/pkg/invoker"
	"github.com/soundprediction/rembed/pkg/provider"
	"github.com/soundprediction/rembed/pkg/registry"
	"github.com/soundprediction/rembed/pkg/telemetry"
	"github.com/soundprediction/rembed/pkg/types"
)

// Build information - can be set at build time using ldflags
var (
	version   = "0.1.0"
	gitCommit = "unknown"
)

// ClientRegistrar manages the set of named embedding clients.
type ClientRegistrar interface {
	// Register parses raw and stores it under name, replacing any previous
	// client with that name. raw may be a configuration string, key/value
	// pairs, a map or a types.ClientDescriptor.
	Register(name string, raw any) error

	// ListRegisteredNames returns the sorted names of all registered clients.
	ListRegisteredNames() []string

	// Clients returns the registered descriptors with credentials masked.
	Clients() []types.ClientDescriptor
}

// SingleEmbedder embeds one input at a time.
type SingleEmbedder interface {
	// EmbedText embeds text with a text client.
	EmbedText(ctx context.Context, name, text string) (types.Vector, error)

	// EmbedImage describes image with a multimodal client and embeds the
	// description. An empty prompt uses the configured vision prompt.
	EmbedImage(ctx context.Context, name string, image []byte, prompt string) (types.Vector, error)
}

// BatchEmbedder embeds many inputs concurrently. Item failures are reported
// per result; only an unknown client or an empty batch fail the call.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, name string, texts []string) (*dispatch.BatchResult, error)
	EmbedImagesBatch(ctx context.Context, name string, images [][]byte) (*dispatch.BatchResult, error)
	EmbedImagesBatchWithPrompt(ctx context.Context, name string, images [][]byte, prompt string) (*dispatch.BatchResult, error)

	// EmbedBatchJSON accepts a JSON array of strings and returns a JSON array
	// of base64 encoded vectors in the same order.
	EmbedBatchJSON(ctx context.Context, name, jsonArray string) (string, error)
}

// Embedder is the main interface of the library.
type Embedder interface {
	ClientRegistrar
	SingleEmbedder
	BatchEmbedder

	Version() string
	Debug() string
	Close() error
}

// Client implements Embedder.
type Client struct {
	config     *config.Config
	registry   *registry.Registry
	factory    *provider.Factory
	invoker    *invoker.Invoker
	dispatcher *dispatch.Dispatcher
	stats      *telemetry.ParquetStatsRecorder
	logger     *slog.Logger
}

// Options customizes New beyond what config.Config carries.
type Options struct {
	// Resolver replaces the provider factory, mainly for tests.
	Resolver provider.Resolver
	Alerter  alert.Alerter
	// Recorder replaces the Parquet statistics recorder.
	Recorder dispatch.StatsRecorder
}

// New creates a Client from configuration and registers cfg.Clients.
// A nil cfg uses config.Default().
func New(cfg *config.Config, logger *slog.Logger, opts ...Options) (*Client, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}

	alerter := o.Alerter
	if alerter == nil {
		alerter = alert.New(cfg.Alert, logger)
	}

	c := &Client{
		config:   cfg,
		registry: registry.New(),
		logger:   logger,
	}

	resolver := o.Resolver
	if resolver == nil {
		c.factory = provider.NewFactory(provider.OptionsFromConfig(cfg, alerter, logger))
		resolver = c.factory
	}

	c.invoker = invoker.New(c.registry, resolver, invoker.Options{
		VisionPrompt:       cfg.Dispatch.VisionPrompt,
		VisionSystemPrompt: cfg.Dispatch.VisionSystemPrompt,
		Logger:             logger,
	})

	recorder := o.Recorder
	if recorder == nil && cfg.Telemetry.ParquetPath != "" {
		stats, err := telemetry.NewParquetStatsRecorder(cfg.Telemetry.ParquetPath, cfg.Telemetry.FlushSize)
		if err != nil {
			return nil, err
		}
		c.stats = stats
		recorder = stats
	}

	c.dispatcher = dispatch.New(c.invoker, dispatch.Options{
		DefaultConcurrency: cfg.Dispatch.MaxConcurrentRequests,
		Recorder:           recorder,
		Logger:             logger,
	})

	names := make([]string, 0, len(cfg.Clients))
	for name := range cfg.Clients {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := c.Register(name, cfg.Clients[name]); err != nil {
			return nil, fmt.Errorf("failed to register client %q: %w", name, err)
		}
	}

	return c, nil
}

// Register implements ClientRegistrar.
func (c *Client) Register(name string, raw any) error {
	desc, err := c.registry.Register(name, raw)
	if err != nil {
		return err
	}
	c.logger.Info("registered client",
		"client", name,
		"provider", desc.Format,
		"model", desc.Model,
		"multimodal", desc.IsMultimodal())
	return nil
}

// ListRegisteredNames implements ClientRegistrar.
func (c *Client) ListRegisteredNames() []string {
	return c.registry.ListNames()
}

// Clients implements ClientRegistrar.
func (c *Client) Clients() []types.ClientDescriptor {
	return c.registry.Descriptors()
}

// EmbedText implements SingleEmbedder.
func (c *Client) EmbedText(ctx context.Context, name, text string) (types.Vector, error) {
	return c.invoker.EmbedText(ctx, name, text)
}

// EmbedImage implements SingleEmbedder.
func (c *Client) EmbedImage(ctx context.Context, name string, image []byte, prompt string) (types.Vector, error) {
	return c.invoker.EmbedImage(ctx, name, image, prompt)
}

// EmbedBatch implements BatchEmbedder.
func (c *Client) EmbedBatch(ctx context.Context, name string, texts []string) (*dispatch.BatchResult, error) {
	return c.dispatcher.EmbedBatch(ctx, name, texts)
}

// EmbedImagesBatch implements BatchEmbedder using the configured vision prompt.
func (c *Client) EmbedImagesBatch(ctx context.Context, name string, images [][]byte) (*dispatch.BatchResult, error) {
	return c.dispatcher.EmbedImagesBatch(ctx, name, images, "")
}

// EmbedImagesBatchWithPrompt implements BatchEmbedder.
func (c *Client) EmbedImagesBatchWithPrompt(ctx context.Context, name string, images [][]byte, prompt string) (*dispatch.BatchResult, error) {
	return c.dispatcher.EmbedImagesBatch(ctx, name, images, prompt)
}

// EmbedBatchJSON implements BatchEmbedder. The output has no room for
// per-item errors, so the first failed item fails the call.
func (c *Client) EmbedBatchJSON(ctx context.Context, name, jsonArray string) (string, error) {
	var texts []string
	if err := json.Unmarshal([]byte(jsonArray), &texts); err != nil {
		return "", fmt.Errorf("invalid JSON array: %w", err)
	}

	res, err := c.dispatcher.EmbedBatch(ctx, name, texts)
	if err != nil {
		return "", err
	}

	encoded := make([]string, len(res.Results))
	for i, r := range res.Results {
		if r.Err != nil {
			return "", fmt.Errorf("item %d: %w", i, r.Err)
		}
		encoded[i] = base64.StdEncoding.EncodeToString(r.Embedding)
	}

	out, err := json.Marshal(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to encode embeddings: %w", err)
	}
	return string(out), nil
}

// Version returns the library version.
func (c *Client) Version() string {
	return Version()
}

// Debug returns build and backend information.
func (c *Client) Debug() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Version: %s\n", Version())
	fmt.Fprintf(&sb, "Source: %s\n", gitCommit)
	fmt.Fprintf(&sb, "Go: %s\n", runtime.Version())
	formats := provider.Formats()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	fmt.Fprintf(&sb, "Providers: %s\n", strings.Join(names, ", "))
	if c.config.Transport.MockEmbeddings {
		sb.WriteString("Mock embeddings: enabled\n")
	}
	return sb.String()
}

// Close flushes buffered batch statistics.
func (c *Client) Close() error {
	var errs []error
	if c.stats != nil {
		if err := c.stats.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Version returns the library version string.
func Version() string {
	return "v" + version
}
