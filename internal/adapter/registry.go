package adapter

import (
	"fmt"
	"sort"
	"sync"
)

// Constructor returns a new, unloaded adapter.
type Constructor func() Adapter

// Registry maps variant identifiers to constructors.
type Registry struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

// Default is the process-wide registry reference backends register into.
var Default = NewRegistry()

// Register adds a constructor for variant.
func (r *Registry) Register(variant string, ctor Constructor) error {
	if variant == "" {
		return fmt.Errorf("register: empty variant")
	}
	if ctor == nil {
		return fmt.Errorf("register %q: nil constructor", variant)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ctors[variant]; ok {
		return fmt.Errorf("register %q: %w", variant, ErrDuplicateVariant)
	}
	r.ctors[variant] = ctor
	return nil
}

// MustRegister is like Register but panics on error. It is meant for init.
func (r *Registry) MustRegister(variant string, ctor Constructor) {
	if err := r.Register(variant, ctor); err != nil {
		panic(err)
	}
}

// New constructs an unloaded adapter of the given variant.
func (r *Registry) New(variant string) (Adapter, error) {
	r.mu.RLock()
	ctor, ok := r.ctors[variant]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
	}

	a := ctor()
	if got := a.Variant(); got != variant {
		return nil, fmt.Errorf("constructor for %q built variant %q", variant, got)
	}
	return a, nil
}

// Has reports whether variant is registered.
func (r *Registry) Has(variant string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ctors[variant]
	return ok
}

// Variants returns the sorted registered identifiers.
func (r *Registry) Variants() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.ctors))
	for v := range r.ctors {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Register adds a constructor to the Default registry.
func Register(variant string, ctor Constructor) error {
	return Default.Register(variant, ctor)
}
