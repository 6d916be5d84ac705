package invoker

import (
	"context"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/soundprediction/rembed/pkg/provider"
	"github.com/soundprediction/rembed/pkg/types"
)

var supportedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// ValidateImage checks that image is a non-empty JPEG, PNG, GIF or WebP
// payload and returns its MIME type.
func ValidateImage(image []byte) (string, error) {
	if len(image) == 0 {
		return "", &types.MalformedImageError{Reason: "image is empty"}
	}
	mt := mimetype.Detect(image)
	for _, supported := range supportedImageTypes {
		if mt.Is(supported) {
			return supported, nil
		}
	}
	return "", &types.MalformedImageError{Reason: "unsupported image type " + mt.String()}
}

// EmbedImage describes image with the multimodal client registered as name
// and embeds the description. An empty prompt uses the default prompt.
func (inv *Invoker) EmbedImage(ctx context.Context, name string, image []byte, prompt string) (types.Vector, error) {
	desc, err := inv.LookupMultimodal(name, FuncEmbedImage)
	if err != nil {
		return nil, err
	}
	return inv.InvokeImage(ctx, desc, image, prompt)
}

// InvokeImage runs the two-stage image pipeline. The embedding stage never
// runs when the describe stage fails.
func (inv *Invoker) InvokeImage(ctx context.Context, desc types.ClientDescriptor, image []byte, prompt string) (types.Vector, error) {
	mimeType, err := ValidateImage(image)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	description, err := inv.describe(ctx, desc, image, mimeType, prompt)
	if err != nil {
		return nil, err
	}

	embedDesc := embeddingStage(desc)
	vec, err := inv.InvokeText(ctx, embedDesc, description)
	if err != nil {
		return nil, err
	}

	inv.logger.Debug("embedded image",
		"client", desc.Name,
		"vision_model", desc.Model,
		"embedding_model", embedDesc.Model,
		"description_length", len(description),
		"duration", time.Since(start))
	return vec, nil
}

func (inv *Invoker) describe(ctx context.Context, desc types.ClientDescriptor, image []byte, mimeType, prompt string) (string, error) {
	if err := provider.RequireCapability(desc.Format, provider.CapabilityVision); err != nil {
		return "", err
	}
	p, err := inv.resolver.Resolve(ctx, desc.Format, desc.Credential, desc.EndpointURL)
	if err != nil {
		return "", err
	}

	req := provider.DescribeRequest{
		Model:    desc.Model,
		Image:    image,
		MIMEType: mimeType,
		Prompt:   prompt,
	}
	if prompt == "" {
		req.Prompt = inv.opts.VisionPrompt
		req.SystemPrompt = inv.opts.VisionSystemPrompt
	}

	description, err := p.Describe(ctx, req)
	if err != nil {
		return "", asProviderError(desc.Format, err)
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return "", types.NewProviderError(desc.Format, types.ProviderMalformedResponse, "vision model returned an empty description", nil)
	}
	return description, nil
}

// embeddingStage returns the descriptor used to embed an image description.
// A provider-qualified embedding model runs on that provider with its
// environment credential and default endpoint.
func embeddingStage(desc types.ClientDescriptor) types.ClientDescriptor {
	stage := types.ClientDescriptor{
		Name:                  desc.Name,
		Format:                desc.Format,
		Model:                 desc.EmbeddingModel,
		Credential:            desc.Credential,
		EndpointURL:           desc.EndpointURL,
		MaxConcurrentRequests: desc.MaxConcurrentRequests,
	}
	if format, model, ok := types.SplitQualifiedModel(desc.EmbeddingModel); ok && format != desc.Format {
		stage.Format = format
		stage.Model = model
		stage.Credential = ""
		stage.EndpointURL = ""
	} else if ok {
		stage.Model = model
	}
	return stage
}
