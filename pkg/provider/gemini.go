package provider

import (
	"context"
	"fmt"
	"net/http"

	"github.com/soundprediction/rembed/pkg/types"
	"google.golang.org/genai"
)

// GeminiProvider uses the Gemini API for both embeddings and image description.
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider creates a Gemini provider. An empty baseURL uses the SDK default.
func NewGeminiProvider(ctx context.Context, apiKey, baseURL string, httpClient *http.Client) (*GeminiProvider, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if baseURL != "" {
		clientCfg.HTTPOptions.BaseURL = baseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiProvider{client: client}, nil
}

func (p *GeminiProvider) Embed(ctx context.Context, model, text string) ([]float32, error) {
	resp, err := p.client.Models.EmbedContent(ctx, model, genai.Text(text), nil)
	if err != nil {
		return nil, types.NewProviderError(types.FormatGemini, types.ProviderRequestFailed, "embedding request failed", err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, types.NewProviderError(types.FormatGemini, types.ProviderMalformedResponse, "no embedding returned", nil)
	}
	return resp.Embeddings[0].Values, nil
}

func (p *GeminiProvider) Describe(ctx context.Context, req DescribeRequest) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(req.Prompt),
			genai.NewPartFromBytes(req.Image, req.MIMEType),
		}, genai.RoleUser),
	}

	var cfg *genai.GenerateContentConfig
	if req.SystemPrompt != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(req.SystemPrompt, genai.RoleUser),
		}
	}

	resp, err := p.client.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return "", types.NewProviderError(types.FormatGemini, types.ProviderRequestFailed, "vision request failed", err)
	}
	return resp.Text(), nil
}
