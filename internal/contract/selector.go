package contract

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/born-ml/contract/internal/logging"
	"github.com/born-ml/contract/internal/tensor"
)

// Selector holds interchangeable models for one task and routes predictions
// to the active one. Every model added must be compatible with the others,
// so switching never changes what callers send or receive.
//
// Thread Safety:
//
//	Safe for concurrent use. Use takes effect for predictions that start
//	after it returns.
type Selector struct {
	logger *slog.Logger

	mu     sync.RWMutex
	models map[string]*Model
	active atomic.Pointer[selection]
}

type selection struct {
	name  string
	model *Model
}

// NewSelector returns an empty selector.
func NewSelector() *Selector {
	return &Selector{
		logger: logging.New("selector"),
		models: make(map[string]*Model),
	}
}

// Add registers m under name. The first model added becomes active.
func (s *Selector) Add(name string, m *Model) error {
	if name == "" || m == nil {
		return fmt.Errorf("%w: name and model are required", ErrInvalidModel)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.models[name]; ok {
		return fmt.Errorf("model %q already added", name)
	}
	for other, existing := range s.models {
		if !existing.CompatibleWith(m) {
			return fmt.Errorf("%w: %q (%s, %s) vs %q (%s, %s)", ErrIncompatible,
				name, m.input, m.output, other, existing.input, existing.output)
		}
	}

	s.models[name] = m
	if s.active.Load() == nil {
		s.active.Store(&selection{name: name, model: m})
	}
	return nil
}

// Use makes the named model active.
func (s *Selector) Use(name string) error {
	s.mu.RLock()
	m, ok := s.models[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}

	prev := s.active.Swap(&selection{name: name, model: m})
	if prev != nil && prev.name != name {
		s.logger.Info("model switched", slog.String("from", prev.name), slog.String("to", name))
	}
	return nil
}

// Remove drops the named model. The active model cannot be removed.
func (s *Selector) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.models[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}
	if cur := s.active.Load(); cur != nil && cur.name == name {
		return fmt.Errorf("model %q is active", name)
	}
	delete(s.models, name)
	return nil
}

// Active returns the active model and its name, or nil when empty.
func (s *Selector) Active() (string, *Model) {
	cur := s.active.Load()
	if cur == nil {
		return "", nil
	}
	return cur.name, cur.model
}

// Get returns the named model.
func (s *Selector) Get(name string) (*Model, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.models[name]
	return m, ok
}

// Names returns the sorted model names.
func (s *Selector) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.models))
	for name := range s.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Predict runs the active model.
func (s *Selector) Predict(ctx context.Context, raw *tensor.RawTensor) (*tensor.RawTensor, error) {
	cur := s.active.Load()
	if cur == nil {
		return nil, ErrNoModel
	}
	return cur.model.Predict(ctx, raw)
}
