package clientconfig

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/soundprediction/rembed/pkg/types"
)

// Option keys accepted by the structured and serialized forms.
const (
	KeyFormat                = "format"
	KeyProvider              = "provider"
	KeyModel                 = "model"
	KeyEmbeddingModel        = "embedding_model"
	KeyKey                   = "key"
	KeyAPIKey                = "api_key"
	KeyURL                   = "url"
	KeyMaxConcurrentRequests = "max_concurrent_requests"
)

var bareProvider = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// Parse turns one configuration value into a descriptor for the client name.
//
// raw may be a free-form string, ordered key/value pairs ([]string), a map
// (map[string]string or map[string]any), or an already canonical
// types.ClientDescriptor. The provider is never validated here.
func Parse(name string, raw any) (types.ClientDescriptor, error) {
	switch v := raw.(type) {
	case string:
		return ParseString(name, v)
	case []string:
		return ParsePairs(name, v...)
	case map[string]string:
		return ParseOptions(name, v)
	case map[string]any:
		opts, err := stringifyOptions(v)
		if err != nil {
			return types.ClientDescriptor{}, err
		}
		return ParseOptions(name, opts)
	case map[any]any:
		opts := make(map[string]any, len(v))
		for k, val := range v {
			opts[fmt.Sprint(k)] = val
		}
		return Parse(name, opts)
	case []any:
		pairs := make([]string, len(v))
		for i, item := range v {
			s, err := scalarString(item)
			if err != nil {
				return types.ClientDescriptor{}, &types.MalformedConfigError{Reason: fmt.Sprintf("pair element %d", i), Err: err}
			}
			pairs[i] = s
		}
		return ParsePairs(name, pairs...)
	case types.ClientDescriptor:
		return canonical(name, v)
	case *types.ClientDescriptor:
		if v == nil {
			return types.ClientDescriptor{}, types.NewMalformedConfigError("nil descriptor")
		}
		return canonical(name, *v)
	case nil:
		return types.ClientDescriptor{}, types.NewMalformedConfigError("configuration is empty")
	default:
		return types.ClientDescriptor{}, types.NewMalformedConfigError("unsupported configuration type %T", raw)
	}
}

// ParseString parses the string syntaxes:
//
//	{"provider": "openai", "model": "..."}   serialized object
//	ollama::nomic-embed-text                 provider and model
//	openai:sk-...                            provider and credential
//	openai                                   bare provider
//
// Only the first colon is significant for the credential form, so
// credentials may themselves contain colons.
func ParseString(name, raw string) (types.ClientDescriptor, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return types.ClientDescriptor{}, types.NewMalformedConfigError("configuration is empty")
	}

	if strings.HasPrefix(s, "{") {
		return parseSerialized(name, s)
	}

	idx := strings.Index(s, ":")
	switch {
	case idx == 0:
		return types.ClientDescriptor{}, types.NewMalformedConfigError("missing provider before ':'")
	case idx > 0 && strings.HasPrefix(s[idx:], "::"):
		provider, model := s[:idx], strings.TrimSpace(s[idx+2:])
		if model == "" {
			return types.ClientDescriptor{}, types.NewMalformedConfigError("missing model after '::'")
		}
		if !bareProvider.MatchString(provider) {
			return types.ClientDescriptor{}, types.NewMalformedConfigError("invalid provider %q", provider)
		}
		return build(name, options{format: provider, model: model})
	case idx > 0:
		provider := strings.TrimSpace(s[:idx])
		if !bareProvider.MatchString(provider) {
			return types.ClientDescriptor{}, types.NewMalformedConfigError("invalid provider %q", provider)
		}
		// surrounding whitespace is dropped, inner colons and spaces are kept
		credential := strings.TrimSpace(s[idx+1:])
		return build(name, options{format: provider, model: name, key: credential})
	}

	if !bareProvider.MatchString(s) {
		return types.ClientDescriptor{}, types.NewMalformedConfigError("unrecognized configuration %q", s)
	}
	return build(name, options{format: s, model: name})
}

// ParsePairs parses the structured form given as ordered key/value pairs,
// e.g. ParsePairs("c2", "format", "ollama", "model", "llava").
// Later duplicates win.
func ParsePairs(name string, pairs ...string) (types.ClientDescriptor, error) {
	if len(pairs)%2 != 0 {
		return types.ClientDescriptor{}, types.NewMalformedConfigError("must have an even number of arguments, as key/value pairs")
	}
	opts := make(map[string]string, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		opts[pairs[i]] = pairs[i+1]
	}
	return ParseOptions(name, opts)
}

// ParseOptions parses the structured form given as a map. Unknown keys are ignored.
func ParseOptions(name string, opts map[string]string) (types.ClientDescriptor, error) {
	o := options{
		format:         firstNonEmpty(opts[KeyFormat], opts[KeyProvider]),
		model:          strings.TrimSpace(opts[KeyModel]),
		embeddingModel: strings.TrimSpace(opts[KeyEmbeddingModel]),
		key:            firstNonEmpty(opts[KeyKey], opts[KeyAPIKey]),
		url:            strings.TrimSpace(opts[KeyURL]),
	}

	n, err := parseConcurrency(opts[KeyMaxConcurrentRequests])
	if err != nil {
		return types.ClientDescriptor{}, err
	}
	o.maxConcurrent = n

	if o.model == "" {
		return types.ClientDescriptor{}, types.NewMalformedConfigError("'model' option is required")
	}
	if o.format == "" {
		format, model, ok := types.SplitQualifiedModel(o.model)
		if !ok {
			return types.ClientDescriptor{}, types.NewMalformedConfigError("'format' option or a provider-qualified 'model' is required")
		}
		o.format, o.model = string(format), model
	}

	return build(name, o)
}

// serializedConfig is the flat object accepted by the serialized form.
type serializedConfig struct {
	Provider              string          `json:"provider"`
	Format                string          `json:"format"`
	Model                 string          `json:"model"`
	EmbeddingModel        string          `json:"embedding_model"`
	APIKey                string          `json:"api_key"`
	Key                   string          `json:"key"`
	URL                   string          `json:"url"`
	MaxConcurrentRequests json.RawMessage `json:"max_concurrent_requests"`
}

func parseSerialized(name, s string) (types.ClientDescriptor, error) {
	var sc serializedConfig
	if err := json.Unmarshal([]byte(s), &sc); err != nil {
		return types.ClientDescriptor{}, &types.MalformedConfigError{Reason: "invalid serialized object", Err: err}
	}

	o := options{
		format:         firstNonEmpty(sc.Provider, sc.Format),
		model:          strings.TrimSpace(sc.Model),
		embeddingModel: strings.TrimSpace(sc.EmbeddingModel),
		key:            firstNonEmpty(sc.APIKey, sc.Key),
		url:            strings.TrimSpace(sc.URL),
	}

	if len(sc.MaxConcurrentRequests) > 0 {
		var v any
		if err := json.Unmarshal(sc.MaxConcurrentRequests, &v); err != nil {
			return types.ClientDescriptor{}, &types.MalformedConfigError{Reason: "invalid max_concurrent_requests", Err: err}
		}
		raw, err := scalarString(v)
		if err != nil {
			return types.ClientDescriptor{}, &types.MalformedConfigError{Reason: "max_concurrent_requests must be an integer", Err: err}
		}
		n, err := parseConcurrency(raw)
		if err != nil {
			return types.ClientDescriptor{}, err
		}
		o.maxConcurrent = n
	}

	if format, model, ok := types.SplitQualifiedModel(o.format); ok {
		o.format = string(format)
		if o.model == "" {
			o.model = model
		}
	}
	if o.format == "" {
		format, model, ok := types.SplitQualifiedModel(o.model)
		if !ok {
			return types.ClientDescriptor{}, types.NewMalformedConfigError("'provider' field is required")
		}
		o.format, o.model = string(format), model
	}
	if o.model == "" {
		o.model = name
	}

	return build(name, o)
}

type options struct {
	format         string
	model          string
	embeddingModel string
	key            string
	url            string
	maxConcurrent  int
}

func build(name string, o options) (types.ClientDescriptor, error) {
	return canonical(name, types.ClientDescriptor{
		Format:                types.NormalizeFormat(o.format),
		Model:                 o.model,
		EmbeddingModel:        o.embeddingModel,
		Credential:            o.key,
		EndpointURL:           o.url,
		MaxConcurrentRequests: o.maxConcurrent,
	})
}

func canonical(name string, d types.ClientDescriptor) (types.ClientDescriptor, error) {
	d.Name = name
	d.Format = types.NormalizeFormat(string(d.Format))
	d.Model = strings.TrimSpace(d.Model)
	d.EmbeddingModel = strings.TrimSpace(d.EmbeddingModel)
	d.EndpointURL = strings.TrimSpace(d.EndpointURL)

	if d.Format == "" {
		return types.ClientDescriptor{}, types.NewMalformedConfigError("provider is required")
	}
	if d.Model == "" {
		return types.ClientDescriptor{}, types.NewMalformedConfigError("model is required")
	}
	if d.MaxConcurrentRequests <= 0 {
		d.MaxConcurrentRequests = types.DefaultMaxConcurrentRequests
	}
	return d, nil
}

// parseConcurrency reads max_concurrent_requests. Empty means unset.
func parseConcurrency(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &types.MalformedConfigError{Reason: "max_concurrent_requests must be an integer", Err: err}
	}
	return n, nil
}

func stringifyOptions(in map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(in))
	for k, v := range in {
		s, err := scalarString(v)
		if err != nil {
			return nil, &types.MalformedConfigError{Reason: fmt.Sprintf("option %q", k), Err: err}
		}
		out[k] = s
	}
	return out, nil
}

func scalarString(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		if t != float64(int64(t)) {
			return "", fmt.Errorf("non-integer number %v", t)
		}
		return strconv.FormatInt(int64(t), 10), nil
	case bool:
		return strconv.FormatBool(t), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
