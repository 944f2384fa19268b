package extension

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Module is a resolved extension module that exports named symbols.
type Module interface {
	// Lookup returns the value exported under symbol.
	Lookup(symbol string) (any, error)
}

// Symbols is a Module backed by a map of exported names.
type Symbols map[string]any

// Lookup returns the value exported under symbol, or ErrSymbolNotFound.
func (s Symbols) Lookup(symbol string) (any, error) {
	v, ok := s[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}
	return v, nil
}

// Resolver maps a module identifier to a Module.
type Resolver interface {
	Resolve(ctx context.Context, id string) (Module, error)
}

// Registry resolves modules registered in-process, keyed by identifier.
// Extension packages typically register themselves from init.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]Module
}

// NewRegistry creates an empty module registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]Module)}
}

// Register adds a module under id.
// Returns ErrEmptyModuleID, ErrNilModule, or *ModuleExistsError.
func (r *Registry) Register(id string, m Module) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrEmptyModuleID
	}
	if m == nil {
		return ErrNilModule
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.modules[id]; exists {
		return &ModuleExistsError{ID: id}
	}
	r.modules[id] = m
	return nil
}

// Resolve returns the module registered under id. Surrounding whitespace is
// ignored, as in Register.
func (r *Registry) Resolve(_ context.Context, id string) (Module, error) {
	id = strings.TrimSpace(id)

	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.modules[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModule, id)
	}
	return m, nil
}

// IDs returns the registered identifiers sorted lexically.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.modules))
	for id := range r.modules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry that Register populates.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds a module to the default registry.
func Register(id string, m Module) error {
	return defaultRegistry.Register(id, m)
}

// MustRegister adds a module to the default registry and panics on failure.
// It is meant for init functions of extension packages.
func MustRegister(id string, m Module) {
	if err := Register(id, m); err != nil {
		panic(fmt.Sprintf("extension: register %s: %v", id, err))
	}
}

// ChainResolver tries each resolver in order and returns the first module found.
type ChainResolver []Resolver

// Resolve returns the first successful resolution, or all failures joined.
func (c ChainResolver) Resolve(ctx context.Context, id string) (Module, error) {
	if len(c) == 0 {
		return nil, fmt.Errorf("%w: %q (no resolvers configured)", ErrUnknownModule, id)
	}

	errs := make([]error, 0, len(c))
	for _, r := range c {
		m, err := r.Resolve(ctx, id)
		if err == nil {
			return m, nil
		}
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}

var (
	_ Module   = Symbols(nil)
	_ Resolver = (*Registry)(nil)
	_ Resolver = ChainResolver(nil)
)
