// Package registry holds the registered embedding clients for the lifetime of
// a process.
package registry

import (
	"sort"
	"sync"

	"github.com/soundprediction/rembed/pkg/clientconfig"
	"github.com/soundprediction/rembed/pkg/types"
)

// Kind is the classification of a registered client.
type Kind int

const (
	// KindText clients embed text directly.
	KindText Kind = iota
	// KindMultimodal clients describe images and embed the description.
	KindMultimodal
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindMultimodal:
		return "multimodal"
	default:
		return "unknown"
	}
}

type entry struct {
	kind Kind
	desc types.ClientDescriptor
}

// Registry maps client names to descriptors. Each name has exactly one
// classification, derived from the presence of an embedding model.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]entry
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{clients: make(map[string]entry)}
}

// Register parses raw and stores the result under name, replacing any previous
// descriptor for that name. A parse failure leaves the registry unchanged.
func (r *Registry) Register(name string, raw any) (types.ClientDescriptor, error) {
	if name == "" {
		return types.ClientDescriptor{}, types.NewMalformedConfigError("client name is required")
	}
	desc, err := clientconfig.Parse(name, raw)
	if err != nil {
		return types.ClientDescriptor{}, err
	}
	r.Put(desc)
	return desc, nil
}

// Put stores an already parsed descriptor under desc.Name.
func (r *Registry) Put(desc types.ClientDescriptor) {
	kind := KindText
	if desc.IsMultimodal() {
		kind = KindMultimodal
	}

	r.mu.Lock()
	r.clients[desc.Name] = entry{kind: kind, desc: desc}
	r.mu.Unlock()
}

// LookupText returns the descriptor of a text client. ok is false when the name
// is unknown or registered as multimodal.
func (r *Registry) LookupText(name string) (types.ClientDescriptor, bool) {
	return r.lookup(name, KindText)
}

// LookupMultimodal returns the descriptor of a multimodal client. ok is false
// when the name is unknown or registered as a text client.
func (r *Registry) LookupMultimodal(name string) (types.ClientDescriptor, bool) {
	return r.lookup(name, KindMultimodal)
}

func (r *Registry) lookup(name string, kind Kind) (types.ClientDescriptor, bool) {
	r.mu.RLock()
	e, ok := r.clients[name]
	r.mu.RUnlock()
	if !ok || e.kind != kind {
		return types.ClientDescriptor{}, false
	}
	return e.desc, true
}

// Kind returns the classification of name.
func (r *Registry) Kind(name string) (Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.clients[name]
	return e.kind, ok
}

// ListNames returns every registered name in sorted order.
func (r *Registry) ListNames() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Descriptors returns redacted copies of every descriptor, sorted by name.
func (r *Registry) Descriptors() []types.ClientDescriptor {
	r.mu.RLock()
	out := make([]types.ClientDescriptor, 0, len(r.clients))
	for _, e := range r.clients {
		out = append(out, e.desc.Redacted())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of registered clients.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}
