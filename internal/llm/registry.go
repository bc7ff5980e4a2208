package llm

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kolobosdimitrios/GANDALF/internal/types"
)

// Registry holds the configured providers, keyed by name.
type Registry interface {
	Register(p Provider) error
	Get(name string) (Provider, error)
	List() []string
}

// DefaultRegistry is the standard Registry implementation. Safe for
// concurrent use.
type DefaultRegistry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *DefaultRegistry {
	return &DefaultRegistry{providers: make(map[string]Provider)}
}

// Register adds a provider. Registering the same name twice is an error;
// replacing a live provider mid-run is never intended.
func (r *DefaultRegistry) Register(p Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if name == "" {
		return types.NewError(types.LLM_PROVIDER_DUPLICATE, "provider has empty name")
	}
	if _, exists := r.providers[name]; exists {
		return types.NewError(types.LLM_PROVIDER_DUPLICATE,
			fmt.Sprintf("provider %q already registered", name))
	}
	r.providers[name] = p
	return nil
}

// Get returns the provider registered under name.
func (r *DefaultRegistry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, types.NewError(types.LLM_PROVIDER_NOT_FOUND,
			fmt.Sprintf("provider %q not registered", name))
	}
	return p, nil
}

// List returns the registered provider names, sorted.
func (r *DefaultRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
