package extension

import (
	"context"
	"fmt"
	"reflect"

	"github.com/felixgeelhaar/txext/internal/adapters/logging"
	"github.com/felixgeelhaar/txext/internal/ports"
	"github.com/google/uuid"
)

// Loader resolves extension modules by identifier and initializes their
// manifests.
//
// Loader holds no mutable state after construction and takes no locks.
// Each call resolves the module and runs its hooks again; nothing is cached.
type Loader struct {
	resolver Resolver
	mode     HookMode
	logger   ports.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithResolver sets the module resolver (default: DefaultRegistry()).
func WithResolver(r Resolver) LoaderOption {
	return func(l *Loader) {
		l.resolver = r
	}
}

// WithHookMode selects the hook contract (default: HookEntrypoint).
func WithHookMode(mode HookMode) LoaderOption {
	return func(l *Loader) {
		l.mode = mode
	}
}

// WithLogger sets the logger (default: no-op).
func WithLogger(logger ports.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a loader with the given options.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		resolver: DefaultRegistry(),
		mode:     HookEntrypoint,
		logger:   logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// HookMode returns the hook contract the loader drives.
func (l *Loader) HookMode() HookMode {
	return l.mode
}

// LoadFromModuleName resolves id, validates its TXManifest and runs the
// manifest's hooks. It returns the declared value itself.
//
// Failures are *LoadError values matching ErrModuleNotFound,
// ErrManifestMissing, ErrManifestTypeMismatch, ErrManifestInitFailed or
// ErrManifestVerifyFailed. A manifest declaring a nil descriptor is a type
// mismatch that also matches ErrNilDescriptor. An undefined hook mode fails
// with ErrUnknownHookMode before anything is resolved. Side effects of a hook
// that fails are not undone.
func (l *Loader) LoadFromModuleName(ctx context.Context, id string) (Extension, error) {
	log := l.logger.With(
		ports.F("module", id),
		ports.F("load_id", uuid.NewString()),
	)
	log.Debug(ctx, "resolving extension module", ports.F("hook_mode", l.mode.String()))

	if !l.mode.valid() {
		err := fmt.Errorf("%w: %s", ErrUnknownHookMode, l.mode)
		log.Error(ctx, "extension load failed", ports.F("cause", err))
		return nil, err
	}

	mod, err := l.resolver.Resolve(ctx, id)
	if err != nil {
		return nil, l.fail(ctx, log, &LoadError{Kind: ErrModuleNotFound, Module: id, Err: err})
	}

	sym, err := mod.Lookup(ManifestSymbol)
	if err != nil {
		return nil, l.fail(ctx, log, &LoadError{Kind: ErrManifestMissing, Module: id, Err: err})
	}

	ext, ok := sym.(Extension)
	if !ok || isNil(ext) {
		return nil, l.fail(ctx, log, &LoadError{
			Kind:   ErrManifestTypeMismatch,
			Module: id,
			Detail: fmt.Sprintf("got %T", sym),
		})
	}

	if detail := nilDescriptor(ext); detail != "" {
		return nil, l.fail(ctx, log, &LoadError{
			Kind:   ErrManifestTypeMismatch,
			Module: id,
			Detail: detail,
			Err:    ErrNilDescriptor,
		})
	}

	hookCtx := ports.ContextWithLogger(ctx, log)

	switch l.mode {
	case HookBootstrapVerify:
		log.Warn(ctx, "using deprecated bootstrap/verify hooks")
		if err := callHook(hookCtx, "bootstrap", ext.Bootstrap); err != nil {
			return nil, l.fail(ctx, log, &LoadError{Kind: ErrManifestInitFailed, Module: id, Err: err})
		}
		if err := callHook(hookCtx, "verify", ext.Verify); err != nil {
			return nil, l.fail(ctx, log, &LoadError{Kind: ErrManifestVerifyFailed, Module: id, Err: err})
		}
	case HookEntrypoint:
		if err := callHook(hookCtx, "entrypoint", ext.Entrypoint); err != nil {
			return nil, l.fail(ctx, log, &LoadError{Kind: ErrManifestInitFailed, Module: id, Err: err})
		}
	}

	log.Info(ctx, "extension loaded",
		ports.F("signal_types", len(ext.SignalTypes())),
		ports.F("content_types", len(ext.ContentTypes())),
		ports.F("apis", len(ext.APIs())),
	)
	return ext, nil
}

// LoadAll loads each identifier in order and stops at the first failure.
func (l *Loader) LoadAll(ctx context.Context, ids []string) ([]Extension, error) {
	exts := make([]Extension, 0, len(ids))
	for _, id := range ids {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		ext, err := l.LoadFromModuleName(ctx, id)
		if err != nil {
			return nil, err
		}
		exts = append(exts, ext)
	}
	return exts, nil
}

func (l *Loader) fail(ctx context.Context, log ports.Logger, err *LoadError) error {
	fields := []ports.Field{ports.F("kind", err.Kind.Error())}
	if err.Err != nil {
		fields = append(fields, ports.F("cause", err.Err))
	}
	log.Error(ctx, "extension load failed", fields...)
	return err
}

func callHook(ctx context.Context, name string, hook func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &HookPanicError{Hook: name, Value: r}
		}
	}()
	return hook(ctx)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
