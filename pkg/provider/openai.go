package provider

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/soundprediction/rembed/pkg/types"
)

// OpenAIProvider talks to OpenAI and to every OpenAI-compatible server
// (Ollama, llamafile, Jina, Mixedbread).
type OpenAIProvider struct {
	client  *openai.Client
	format  types.ProviderFormat
	baseURL string
}

// NewOpenAIProvider creates an OpenAI-compatible provider. An empty baseURL
// uses the official OpenAI endpoint.
func NewOpenAIProvider(format types.ProviderFormat, apiKey, baseURL string, httpClient *http.Client) (*OpenAIProvider, error) {
	if baseURL == "" {
		clientConfig := openai.DefaultConfig(apiKey)
		if httpClient != nil {
			clientConfig.HTTPClient = httpClient
		}
		return &OpenAIProvider{client: openai.NewClientWithConfig(clientConfig), format: format}, nil
	}

	// Validate and configure custom base URL for OpenAI-compatible services
	if err := validateBaseURL(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	// Use dummy API key if none provided (local servers don't require authentication)
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.BaseURL = strings.TrimRight(baseURL, "/")

	// Many services expect "/v1" to be appended to the base URL
	if !hasAPIPath(baseURL) {
		clientConfig.BaseURL += "/v1"
	}
	if httpClient != nil {
		clientConfig.HTTPClient = httpClient
	}

	return &OpenAIProvider{
		client:  openai.NewClientWithConfig(clientConfig),
		format:  format,
		baseURL: clientConfig.BaseURL,
	}, nil
}

// Embed calls the embeddings endpoint with a single input.
func (p *OpenAIProvider) Embed(ctx context.Context, model, text string) ([]float32, error) {
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(model),
	})
	if err != nil {
		return nil, types.NewProviderError(p.format, types.ProviderRequestFailed, "embedding request failed", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, types.NewProviderError(p.format, types.ProviderMalformedResponse, "no embedding returned", nil)
	}
	return resp.Data[0].Embedding, nil
}

// Describe sends the image as a data URL in a chat completion.
func (p *OpenAIProvider) Describe(ctx context.Context, req DescribeRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: req.Prompt},
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    dataURL(req.MIMEType, req.Image),
					Detail: openai.ImageURLDetailAuto,
				},
			},
		},
	})

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: messages,
	})
	if err != nil {
		return "", types.NewProviderError(p.format, types.ProviderRequestFailed, "vision request failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", types.NewProviderError(p.format, types.ProviderMalformedResponse, "no choices returned", nil)
	}
	return resp.Choices[0].Message.Content, nil
}

func dataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// httpStatus extracts the HTTP status code of a go-openai error, or 0.
func httpStatus(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// validateBaseURL validates that the base URL is properly formatted
func validateBaseURL(baseURL string) error {
	if baseURL == "" {
		return fmt.Errorf("baseURL cannot be empty")
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid baseURL format: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("baseURL must use http:// or https:// scheme")
	}

	return nil
}

// hasAPIPath checks if the base URL already includes an API path
func hasAPIPath(baseURL string) bool {
	baseURL = strings.TrimRight(baseURL, "/")
	for _, path := range []string{"/v1", "/api", "/v1beta"} {
		if strings.HasSuffix(baseURL, path) {
			return true
		}
	}
	return false
}
