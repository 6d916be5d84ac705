package provider

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/soundprediction/rembed/pkg/types"
)

// Info describes a supported provider.
type Info struct {
	Format      types.ProviderFormat
	Name        string
	Description string
	// DefaultBaseURL is empty when the SDK default is used.
	DefaultBaseURL string
	// APIKeyEnv lists the environment variables checked, in order, when a
	// descriptor carries no credential.
	APIKeyEnv         []string
	RequiresKey       bool
	SupportsEmbedding bool
	SupportsVision    bool
	IsLocal           bool
}

// BuiltInProviders contains the standard set of supported providers.
var BuiltInProviders = map[types.ProviderFormat]Info{
	types.FormatOpenAI: {
		Format:            types.FormatOpenAI,
		Name:              "OpenAI",
		Description:       "OpenAI embeddings and vision chat models",
		APIKeyEnv:         []string{"OPENAI_API_KEY"},
		RequiresKey:       true,
		SupportsEmbedding: true,
		SupportsVision:    true,
	},
	types.FormatGemini: {
		Format:            types.FormatGemini,
		Name:              "Google Gemini",
		Description:       "Gemini embedding and multimodal models",
		APIKeyEnv:         []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"},
		RequiresKey:       true,
		SupportsEmbedding: true,
		SupportsVision:    true,
	},
	types.FormatAnthropic: {
		Format:         types.FormatAnthropic,
		Name:           "Anthropic",
		Description:    "Claude vision models (no embedding endpoint)",
		APIKeyEnv:      []string{"ANTHROPIC_API_KEY"},
		RequiresKey:    true,
		SupportsVision: true,
	},
	types.FormatOllama: {
		Format:            types.FormatOllama,
		Name:              "Ollama",
		Description:       "Locally hosted models through the OpenAI-compatible API",
		DefaultBaseURL:    "http://localhost:11434/v1",
		SupportsEmbedding: true,
		SupportsVision:    true,
		IsLocal:           true,
	},
	types.FormatLlamafile: {
		Format:            types.FormatLlamafile,
		Name:              "llamafile",
		Description:       "Single-file local models through the OpenAI-compatible API",
		DefaultBaseURL:    "http://localhost:8080/v1",
		SupportsEmbedding: true,
		SupportsVision:    true,
		IsLocal:           true,
	},
	types.FormatJina: {
		Format:            types.FormatJina,
		Name:              "Jina AI",
		Description:       "Hosted embedding models through an OpenAI-compatible API",
		DefaultBaseURL:    "https://api.jina.ai/v1",
		APIKeyEnv:         []string{"JINA_API_KEY"},
		RequiresKey:       true,
		SupportsEmbedding: true,
	},
	types.FormatMixedbread: {
		Format:            types.FormatMixedbread,
		Name:              "Mixedbread",
		Description:       "Hosted embedding models through an OpenAI-compatible API",
		DefaultBaseURL:    "https://api.mixedbread.ai/v1",
		APIKeyEnv:         []string{"MIXEDBREAD_API_KEY"},
		RequiresKey:       true,
		SupportsEmbedding: true,
	},
	types.FormatMock: {
		Format:            types.FormatMock,
		Name:              "Mock",
		Description:       "Deterministic embeddings without network calls",
		SupportsEmbedding: true,
		SupportsVision:    true,
		IsLocal:           true,
	},
}

// Lookup returns the catalog entry for format.
func Lookup(format types.ProviderFormat) (Info, bool) {
	info, ok := BuiltInProviders[types.NormalizeFormat(string(format))]
	return info, ok
}

// Formats returns the supported provider formats in sorted order.
func Formats() []types.ProviderFormat {
	out := make([]types.ProviderFormat, 0, len(BuiltInProviders))
	for f := range BuiltInProviders {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Capability is an operation a provider family may serve.
type Capability string

const (
	CapabilityEmbedding Capability = "embedding"
	CapabilityVision    Capability = "vision"
)

// RequireCapability returns an unsupported_provider ProviderError when the
// catalog entry of format cannot serve c. Formats missing from the catalog
// pass; Resolve rejects them.
func RequireCapability(format types.ProviderFormat, c Capability) error {
	info, ok := Lookup(format)
	if !ok {
		return nil
	}
	supported := info.SupportsEmbedding
	if c == CapabilityVision {
		supported = info.SupportsVision
	}
	if supported {
		return nil
	}
	return types.NewProviderError(info.Format, types.ProviderUnsupported,
		fmt.Sprintf("%s does not support %s", info.Name, c), nil)
}

// ResolveCredential returns explicit when set, otherwise the first non-empty
// environment variable of the provider. A provider that requires a key and
// has none yields a missing_credential ProviderError.
func (i Info) ResolveCredential(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	for _, env := range i.APIKeyEnv {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v, nil
		}
	}
	if i.RequiresKey {
		return "", types.NewProviderError(i.Format, types.ProviderMissingCredential,
			"no credential configured and "+strings.Join(i.APIKeyEnv, " / ")+" is not set", nil)
	}
	return "", nil
}
