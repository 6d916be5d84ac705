package provider

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/soundprediction/rembed/pkg/alert"
	"github.com/soundprediction/rembed/pkg/config"
	"github.com/soundprediction/rembed/pkg/types"
)

// DefaultTimeout bounds every provider HTTP request.
const DefaultTimeout = 30 * time.Second

// Resolver returns the Provider serving a format at an endpoint.
type Resolver interface {
	Resolve(ctx context.Context, format types.ProviderFormat, credential, endpointURL string) (Provider, error)
}

// Options configures a Factory.
type Options struct {
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
	Timeout    time.Duration

	// MockMode routes every known format to the mock transport.
	MockMode bool

	// Retry is applied when MaxRetries is positive.
	Retry *RetryConfig

	CircuitBreaker config.CircuitBreakerConfig
	Alerter        alert.Alerter
	Logger         *slog.Logger
}

// OptionsFromConfig maps application configuration to factory options.
func OptionsFromConfig(cfg *config.Config, alerter alert.Alerter, logger *slog.Logger) Options {
	return Options{
		Timeout:  cfg.Transport.TimeoutDuration(),
		MockMode: cfg.Transport.MockEmbeddings,
		Retry: &RetryConfig{
			MaxRetries:        cfg.Transport.MaxRetries,
			InitialDelay:      time.Duration(cfg.Transport.InitialDelayMs) * time.Millisecond,
			MaxDelay:          time.Duration(cfg.Transport.MaxDelayMs) * time.Millisecond,
			BackoffMultiplier: cfg.Transport.BackoffMultiplier,
		},
		CircuitBreaker: cfg.CircuitBreaker,
		Alerter:        alerter,
		Logger:         logger,
	}
}

// Factory builds providers on demand and caches them per endpoint and
// credential, so that circuit breaker state is shared by every client that
// talks to the same endpoint.
type Factory struct {
	opts       Options
	httpClient *http.Client
	mock       *MockProvider
	logger     *slog.Logger

	mu        sync.Mutex
	providers map[string]Provider
}

// NewFactory creates a Factory.
func NewFactory(opts Options) *Factory {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Factory{
		opts:       opts,
		httpClient: httpClient,
		mock:       NewMockProvider(),
		logger:     logger,
		providers:  make(map[string]Provider),
	}
}

// Resolve validates the format, resolves the credential and returns a cached
// or newly built provider.
func (f *Factory) Resolve(ctx context.Context, format types.ProviderFormat, credential, endpointURL string) (Provider, error) {
	info, ok := Lookup(format)
	if !ok {
		return nil, types.NewProviderError(format, types.ProviderUnsupported,
			fmt.Sprintf("unsupported provider %q", format), nil)
	}
	if f.opts.MockMode || info.Format == types.FormatMock {
		return f.mock, nil
	}

	key, err := info.ResolveCredential(credential)
	if err != nil {
		return nil, err
	}
	baseURL := endpointURL
	if baseURL == "" {
		baseURL = info.DefaultBaseURL
	}

	cacheKey := string(info.Format) + "|" + baseURL + "|" + key
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.providers[cacheKey]; ok {
		return p, nil
	}

	p, err := f.build(ctx, info, key, baseURL)
	if err != nil {
		return nil, types.NewProviderError(info.Format, types.ProviderRequestFailed, "failed to create client", err)
	}
	f.providers[cacheKey] = p
	f.logger.Debug("created provider client", "provider", info.Format, "endpoint", endpointName(info, baseURL))
	return p, nil
}

func (f *Factory) build(ctx context.Context, info Info, key, baseURL string) (Provider, error) {
	var p Provider
	switch info.Format {
	case types.FormatGemini:
		gp, err := NewGeminiProvider(ctx, key, baseURL, f.httpClient)
		if err != nil {
			return nil, err
		}
		p = gp
	case types.FormatAnthropic:
		p = NewAnthropicProvider(key, baseURL, f.httpClient)
	default:
		op, err := NewOpenAIProvider(info.Format, key, baseURL, f.httpClient)
		if err != nil {
			return nil, err
		}
		p = op
	}

	if f.opts.Retry != nil && f.opts.Retry.MaxRetries > 0 {
		retryCfg := *f.opts.Retry
		p = NewRetryProvider(p, &retryCfg)
	}
	if f.opts.CircuitBreaker.Enabled {
		p = NewCircuitBreakerProvider(p, info.Format, f.opts.CircuitBreaker, f.opts.Alerter, f.logger, endpointName(info, baseURL))
	}
	return p, nil
}

func endpointName(info Info, baseURL string) string {
	if baseURL == "" {
		return string(info.Format)
	}
	return string(info.Format) + "@" + baseURL
}
