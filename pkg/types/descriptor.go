package types

import (
	"strings"
)

// DefaultMaxConcurrentRequests is the per-client batch concurrency used when a
// configuration does not set max_concurrent_requests.
const DefaultMaxConcurrentRequests = 4

// ProviderFormat identifies the provider family a client talks to.
// Unknown values are kept as-is and only rejected when a request is made.
type ProviderFormat string

const (
	// FormatOpenAI is the OpenAI embeddings and chat API.
	FormatOpenAI ProviderFormat = "openai"
	// FormatGemini is Google's Gemini API.
	FormatGemini ProviderFormat = "gemini"
	// FormatAnthropic is the Anthropic messages API (vision only).
	FormatAnthropic ProviderFormat = "anthropic"
	// FormatOllama is a locally hosted Ollama server.
	FormatOllama ProviderFormat = "ollama"
	// FormatLlamafile is a locally hosted llamafile server.
	FormatLlamafile ProviderFormat = "llamafile"
	// FormatJina is the Jina AI embeddings API.
	FormatJina ProviderFormat = "jina"
	// FormatMixedbread is the Mixedbread embeddings API.
	FormatMixedbread ProviderFormat = "mixedbread"
	// FormatMock returns deterministic embeddings without network calls.
	FormatMock ProviderFormat = "mock"
)

var formatAliases = map[string]ProviderFormat{
	"google": FormatGemini,
	"claude": FormatAnthropic,
}

// NormalizeFormat lowercases a provider identifier and resolves legacy aliases.
func NormalizeFormat(s string) ProviderFormat {
	s = strings.ToLower(strings.TrimSpace(s))
	if f, ok := formatAliases[s]; ok {
		return f
	}
	return ProviderFormat(s)
}

// SplitQualifiedModel splits a provider-qualified model identifier such as
// "ollama::nomic-embed-text". ok is false when the value is not qualified.
func SplitQualifiedModel(s string) (format ProviderFormat, model string, ok bool) {
	idx := strings.Index(s, "::")
	if idx <= 0 || idx+2 >= len(s) {
		return "", s, false
	}
	return NormalizeFormat(s[:idx]), s[idx+2:], true
}

// ClientDescriptor is the canonical, immutable description of a registered
// embedding client. Copies are handed out by the registry; callers must not
// rely on mutating them.
type ClientDescriptor struct {
	Name   string         `json:"name" yaml:"name"`
	Format ProviderFormat `json:"format" yaml:"format"`
	Model  string         `json:"model" yaml:"model"`

	// EmbeddingModel marks a multimodal client: Model describes the image and
	// EmbeddingModel embeds the description.
	EmbeddingModel string `json:"embedding_model,omitempty" yaml:"embedding_model,omitempty"`

	// Credential is excluded from JSON so descriptors can be listed safely.
	Credential  string `json:"-" yaml:"-"`
	EndpointURL string `json:"url,omitempty" yaml:"url,omitempty"`

	MaxConcurrentRequests int `json:"max_concurrent_requests" yaml:"max_concurrent_requests"`
}

// IsMultimodal reports whether the descriptor carries an embedding model.
func (d ClientDescriptor) IsMultimodal() bool {
	return d.EmbeddingModel != ""
}

// Concurrency returns MaxConcurrentRequests, or fallback when unset.
func (d ClientDescriptor) Concurrency(fallback int) int {
	if d.MaxConcurrentRequests > 0 {
		return d.MaxConcurrentRequests
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultMaxConcurrentRequests
}

// HasCredential reports whether an explicit credential was configured.
func (d ClientDescriptor) HasCredential() bool {
	return d.Credential != ""
}

// Redacted returns a copy with the credential masked.
func (d ClientDescriptor) Redacted() ClientDescriptor {
	if d.Credential == "" {
		return d
	}
	if len(d.Credential) <= 8 {
		d.Credential = "****"
		return d
	}
	d.Credential = d.Credential[:4] + "****"
	return d
}
