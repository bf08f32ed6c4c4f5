package adapter

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Factory creates an adapter for a dialect.
type Factory func(dialect Dialect, deps Deps) (Adapter, error)

// Info contains metadata about an adapter kind.
type Info struct {
	Name        string
	Description string
	Factory     Factory
}

// Registry manages registered adapter kinds.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]*Info
}

// NewRegistry creates a new adapter registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]*Info),
	}
}

// Register adds an adapter kind to the registry.
func (r *Registry) Register(name string, info *Info) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.adapters[name]; exists {
		return fmt.Errorf("adapter %s is already registered", name)
	}

	r.adapters[name] = info
	return nil
}

// Get retrieves an adapter kind by name.
func (r *Registry) Get(name string) (*Info, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, exists := r.adapters[name]
	if !exists {
		return nil, fmt.Errorf("adapter %s not found", name)
	}

	return info, nil
}

// List returns all registered adapter kinds, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Create builds an adapter for the dialect's kind.
func (r *Registry) Create(dialect Dialect, deps Deps) (Adapter, error) {
	info, err := r.Get(dialect.Kind)
	if err != nil {
		return nil, err
	}

	return info.Factory(dialect, deps)
}

// DefaultRegistry holds the built-in adapter kinds.
var DefaultRegistry = NewRegistry()

// RegisterAdapter registers an adapter kind with the default registry.
func RegisterAdapter(name string, info *Info) {
	if err := DefaultRegistry.Register(name, info); err != nil {
		slog.Warn("Failed to register adapter", "adapter", name, "error", err)
	}
}
