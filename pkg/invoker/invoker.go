// Package invoker executes single embedding requests against the provider
// named by a registered client.
package invoker

import (
	"context"
	"log/slog"
	"time"

	"github.com/soundprediction/rembed/pkg/config"
	"github.com/soundprediction/rembed/pkg/provider"
	"github.com/soundprediction/rembed/pkg/registry"
	"github.com/soundprediction/rembed/pkg/types"
)

// Function names reported in ClientNotRegisteredError.
const (
	FuncEmbedText        = "embed_text"
	FuncEmbedImage       = "embed_image"
	FuncEmbedBatch       = "embed_batch"
	FuncEmbedImagesBatch = "embed_images_batch"
)

// Options configures an Invoker.
type Options struct {
	// VisionPrompt is the default user prompt of the describe stage.
	VisionPrompt string
	// VisionSystemPrompt accompanies VisionPrompt. It is not sent when the
	// caller supplies its own prompt.
	VisionSystemPrompt string
	Logger             *slog.Logger
}

// Invoker turns one request for a named client into provider calls.
// It does not cache results and does not retry; retries belong to the
// provider transport.
type Invoker struct {
	registry *registry.Registry
	resolver provider.Resolver
	opts     Options
	logger   *slog.Logger
}

// New creates an Invoker.
func New(reg *registry.Registry, resolver provider.Resolver, opts Options) *Invoker {
	if opts.VisionPrompt == "" {
		opts.VisionPrompt = config.DefaultVisionPrompt
		if opts.VisionSystemPrompt == "" {
			opts.VisionSystemPrompt = config.DefaultVisionSystemPrompt
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Invoker{
		registry: reg,
		resolver: resolver,
		opts:     opts,
		logger:   logger,
	}
}

// LookupText returns the text client registered as name, or a
// ClientNotRegisteredError naming function.
func (inv *Invoker) LookupText(name, function string) (types.ClientDescriptor, error) {
	desc, ok := inv.registry.LookupText(name)
	if !ok {
		return types.ClientDescriptor{}, &types.ClientNotRegisteredError{Name: name, Function: function}
	}
	return desc, nil
}

// LookupMultimodal returns the multimodal client registered as name, or a
// ClientNotRegisteredError naming function.
func (inv *Invoker) LookupMultimodal(name, function string) (types.ClientDescriptor, error) {
	desc, ok := inv.registry.LookupMultimodal(name)
	if !ok {
		return types.ClientDescriptor{}, &types.ClientNotRegisteredError{Name: name, Function: function}
	}
	return desc, nil
}

// EmbedText embeds text with the text client registered as name.
func (inv *Invoker) EmbedText(ctx context.Context, name, text string) (types.Vector, error) {
	desc, err := inv.LookupText(name, FuncEmbedText)
	if err != nil {
		return nil, err
	}
	return inv.InvokeText(ctx, desc, text)
}

// InvokeText embeds text with desc.Model.
func (inv *Invoker) InvokeText(ctx context.Context, desc types.ClientDescriptor, text string) (types.Vector, error) {
	if text == "" {
		return nil, types.ErrEmptyInput
	}
	if err := provider.RequireCapability(desc.Format, provider.CapabilityEmbedding); err != nil {
		return nil, err
	}

	p, err := inv.resolver.Resolve(ctx, desc.Format, desc.Credential, desc.EndpointURL)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	values, err := p.Embed(ctx, desc.Model, text)
	if err != nil {
		inv.logger.Debug("embedding request failed", "client", desc.Name, "provider", desc.Format, "error", err)
		return nil, asProviderError(desc.Format, err)
	}
	if len(values) == 0 {
		return nil, types.NewProviderError(desc.Format, types.ProviderMalformedResponse, "empty embedding", nil)
	}

	inv.logger.Debug("embedded text",
		"client", desc.Name,
		"provider", desc.Format,
		"model", desc.Model,
		"dimensions", len(values),
		"duration", time.Since(start))
	return types.EncodeVector(values), nil
}

// asProviderError keeps typed provider failures and classifies anything else
// as a failed request.
func asProviderError(format types.ProviderFormat, err error) error {
	if types.ErrorKind(err) == types.KindProviderError {
		return err
	}
	return types.NewProviderError(format, types.ProviderRequestFailed, "", err)
}
