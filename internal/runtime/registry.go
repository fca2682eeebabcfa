package runtime

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownBackend is returned when no backend is registered under a name.
var ErrUnknownBackend = errors.New("unknown runtime backend")

// Registry keeps the configured backends addressable by name.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]Backend
}

// NewRegistry constructs a registry from the supplied backends.
func NewRegistry(backends ...Backend) (*Registry, error) {
	reg := &Registry{
		backends: make(map[string]Backend, len(backends)),
	}

	for _, backend := range backends {
		if backend == nil {
			return nil, fmt.Errorf("runtime backend cannot be nil")
		}

		name := backend.Name()
		if name == "" {
			return nil, fmt.Errorf("runtime backend missing name")
		}
		if _, exists := reg.backends[name]; exists {
			return nil, fmt.Errorf("duplicate runtime backend %q", name)
		}

		reg.backends[name] = backend
	}

	if len(reg.backends) == 0 {
		return nil, fmt.Errorf("at least one runtime backend must be registered")
	}

	return reg, nil
}

// Backend returns the backend registered under name.
func (r *Registry) Backend(name string) (Backend, error) {
	r.mu.RLock()
	backend, ok := r.backends[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownBackend, name, r.Names())
	}
	return backend, nil
}

// Names lists the registered backend names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close releases resources held by each backend.
func (r *Registry) Close() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var errs []error
	for name, backend := range r.backends {
		if err := backend.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	return errors.Join(errs...)
}
