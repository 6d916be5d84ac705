package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"github.com/soundprediction/rembed/pkg/alert"
	"github.com/soundprediction/rembed/pkg/config"
	"github.com/soundprediction/rembed/pkg/types"
)

// CircuitBreakerProvider wraps a Provider with circuit breaking logic
type CircuitBreakerProvider struct {
	provider Provider
	cb       *gobreaker.CircuitBreaker
	format   types.ProviderFormat
}

// NewCircuitBreakerProvider creates a new circuit breaker wrapper. name
// identifies the endpoint in alerts and logs.
func NewCircuitBreakerProvider(provider Provider, format types.ProviderFormat, cfg config.CircuitBreakerConfig, alerter alert.Alerter, logger *slog.Logger, name string) *CircuitBreakerProvider {
	if logger == nil {
		logger = slog.Default()
	}
	ratio := cfg.ReadyToTripRatio
	if ratio <= 0 {
		ratio = 0.6
	}

	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    time.Duration(cfg.Interval) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= ratio
		},
		IsSuccessful: func(err error) bool {
			// Caller-side failures say nothing about endpoint health.
			return err == nil || errors.Is(err, context.Canceled) || isConfigurationError(err)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "endpoint", name, "from", from.String(), "to", to.String())
			if to == gobreaker.StateOpen && alerter != nil {
				msg := fmt.Sprintf("Circuit Breaker '%s' changed status from %s to %s. Too many failures detected.", name, from, to)
				if err := alerter.Alert(fmt.Sprintf("URGENT: Circuit Breaker Tripped - %s", name), msg); err != nil {
					logger.Error("failed to send circuit breaker alert", "endpoint", name, "error", err)
				}
			}
		},
	}

	return &CircuitBreakerProvider{
		provider: provider,
		cb:       gobreaker.NewCircuitBreaker(st),
		format:   format,
	}
}

func (c *CircuitBreakerProvider) Embed(ctx context.Context, model, text string) ([]float32, error) {
	resp, err := c.cb.Execute(func() (interface{}, error) {
		return c.provider.Embed(ctx, model, text)
	})
	if err != nil {
		return nil, c.translate(err)
	}
	return resp.([]float32), nil
}

func (c *CircuitBreakerProvider) Describe(ctx context.Context, req DescribeRequest) (string, error) {
	resp, err := c.cb.Execute(func() (interface{}, error) {
		return c.provider.Describe(ctx, req)
	})
	if err != nil {
		return "", c.translate(err)
	}
	return resp.(string), nil
}

// State returns the current breaker state.
func (c *CircuitBreakerProvider) State() gobreaker.State {
	return c.cb.State()
}

func (c *CircuitBreakerProvider) translate(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return types.NewProviderError(c.format, types.ProviderUnavailable, "circuit breaker is open", err)
	}
	return err
}

// isConfigurationError reports provider errors caused by the client
// configuration rather than by the endpoint.
func isConfigurationError(err error) bool {
	var perr *types.ProviderError
	if !errors.As(err, &perr) {
		return false
	}
	return perr.Kind == types.ProviderUnsupported || perr.Kind == types.ProviderMissingCredential
}
