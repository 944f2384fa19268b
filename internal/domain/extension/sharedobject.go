package extension

import (
	"context"
	"fmt"
	"path/filepath"
	"plugin"
	"reflect"
	"strings"
)

// SharedObjectResolver resolves module identifiers to Go plugins built with
// -buildmode=plugin, found at <Dir>/<id>.so.
type SharedObjectResolver struct {
	Dir string
}

// NewSharedObjectResolver creates a resolver rooted at dir.
func NewSharedObjectResolver(dir string) *SharedObjectResolver {
	return &SharedObjectResolver{Dir: dir}
}

// Path returns the shared object path for id.
func (r *SharedObjectResolver) Path(id string) string {
	return filepath.Join(r.Dir, id+".so")
}

// Resolve opens the shared object for id.
func (r *SharedObjectResolver) Resolve(_ context.Context, id string) (Module, error) {
	id = strings.TrimSpace(id)
	if strings.ContainsAny(id, `/\`) || id == "" || strings.HasPrefix(id, ".") {
		return nil, fmt.Errorf("%w: %q is not a valid module identifier", ErrUnknownModule, id)
	}

	p, err := plugin.Open(r.Path(id))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", r.Path(id), err)
	}
	return sharedObject{p: p}, nil
}

type sharedObject struct {
	p *plugin.Plugin
}

// Lookup returns the symbol, dereferencing the pointer-to-variable that
// plugin.Lookup yields for package-level variables.
func (s sharedObject) Lookup(symbol string) (any, error) {
	sym, err := s.p.Lookup(symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSymbolNotFound, err)
	}
	return derefSymbol(sym), nil
}

func derefSymbol(sym any) any {
	if _, ok := sym.(Extension); ok {
		return sym
	}
	rv := reflect.ValueOf(sym)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().CanInterface() {
		if ext, ok := rv.Elem().Interface().(Extension); ok {
			return ext
		}
	}
	return sym
}

var _ Resolver = (*SharedObjectResolver)(nil)
