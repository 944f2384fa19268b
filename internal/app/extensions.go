// Package app wires configuration, the extension loader and logging into the
// operations the txext CLI exposes.
package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/felixgeelhaar/txext/internal/adapters/logging"
	"github.com/felixgeelhaar/txext/internal/config"
	"github.com/felixgeelhaar/txext/internal/domain/extension"
	"github.com/felixgeelhaar/txext/internal/ports"
)

// ExtensionService manages the configured extension list.
type ExtensionService struct {
	mu         sync.Mutex
	configPath string
	resolver   extension.Resolver
	hookMode   *extension.HookMode
	logger     ports.Logger
}

// ServiceOption configures an ExtensionService.
type ServiceOption func(*ExtensionService)

// WithResolver replaces the resolver derived from the configuration.
func WithResolver(r extension.Resolver) ServiceOption {
	return func(s *ExtensionService) {
		s.resolver = r
	}
}

// WithHookMode overrides the configured hook mode.
func WithHookMode(mode extension.HookMode) ServiceOption {
	return func(s *ExtensionService) {
		s.hookMode = &mode
	}
}

// WithLogger sets the logger (default: no-op).
func WithLogger(logger ports.Logger) ServiceOption {
	return func(s *ExtensionService) {
		s.logger = logger
	}
}

// NewExtensionService creates a service backed by the config file at path.
func NewExtensionService(configPath string, opts ...ServiceOption) *ExtensionService {
	s := &ExtensionService{
		configPath: configPath,
		logger:     logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ConfigPath returns the config file the service reads and writes.
func (s *ExtensionService) ConfigPath() string {
	return s.configPath
}

// List returns the configured module identifiers in load order.
func (s *ExtensionService) List() ([]string, error) {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return nil, err
	}
	return cfg.Extensions, nil
}

// Add loads id, checks it against the configured extensions and persists it.
// Nothing is written if loading or the conflict check fails.
func (s *ExtensionService) Add(ctx context.Context, id string) (extension.Extension, error) {
	id = strings.TrimSpace(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := config.Load(s.configPath)
	if err != nil {
		return nil, err
	}
	if cfg.HasExtension(id) {
		return nil, fmt.Errorf("%w: %s", config.ErrExtensionConfigured, id)
	}

	loader, err := s.loaderFor(cfg)
	if err != nil {
		return nil, err
	}

	catalog, err := s.loadCatalog(ctx, loader, cfg.Extensions)
	if err != nil {
		return nil, fmt.Errorf("loading configured extensions: %w", err)
	}

	ext, err := loader.LoadFromModuleName(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := catalog.Add(id, ext); err != nil {
		return nil, fmt.Errorf("adding %s: %w", id, err)
	}

	if err := cfg.AddExtension(id); err != nil {
		return nil, err
	}
	if err := cfg.Save(s.configPath); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "extension added", ports.F("module", id), ports.F("config", s.configPath))
	return ext, nil
}

// Remove drops id from the configured extensions.
func (s *ExtensionService) Remove(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := config.Load(s.configPath)
	if err != nil {
		return err
	}
	if err := cfg.RemoveExtension(id); err != nil {
		return err
	}
	if err := cfg.Save(s.configPath); err != nil {
		return err
	}

	s.logger.Info(ctx, "extension removed", ports.F("module", id), ports.F("config", s.configPath))
	return nil
}

// Info loads id without changing the configuration. Hooks run on every call.
func (s *ExtensionService) Info(ctx context.Context, id string) (extension.Extension, error) {
	id = strings.TrimSpace(id)
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return nil, err
	}
	loader, err := s.loaderFor(cfg)
	if err != nil {
		return nil, err
	}
	return loader.LoadFromModuleName(ctx, id)
}

// LoadConfigured loads every configured extension into a catalog.
func (s *ExtensionService) LoadConfigured(ctx context.Context) (*extension.Catalog, error) {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return nil, err
	}
	loader, err := s.loaderFor(cfg)
	if err != nil {
		return nil, err
	}
	return s.loadCatalog(ctx, loader, cfg.Extensions)
}

func (s *ExtensionService) loadCatalog(ctx context.Context, loader *extension.Loader, ids []string) (*extension.Catalog, error) {
	exts, err := loader.LoadAll(ctx, ids)
	if err != nil {
		return nil, err
	}

	catalog := extension.NewCatalog()
	for i, ext := range exts {
		if err := catalog.Add(ids[i], ext); err != nil {
			return nil, err
		}
	}
	return catalog, nil
}

func (s *ExtensionService) loaderFor(cfg *config.Config) (*extension.Loader, error) {
	mode, err := cfg.ParsedHookMode()
	if err != nil {
		return nil, err
	}
	if s.hookMode != nil {
		mode = *s.hookMode
	}

	resolver := s.resolver
	if resolver == nil {
		resolver = ResolverFor(cfg)
	}

	return extension.NewLoader(
		extension.WithResolver(resolver),
		extension.WithHookMode(mode),
		extension.WithLogger(s.logger),
	), nil
}

// ResolverFor returns the default registry, chained with a shared object
// resolver when cfg names a plugin directory.
func ResolverFor(cfg *config.Config) extension.Resolver {
	if cfg.PluginDir == "" {
		return extension.DefaultRegistry()
	}
	return extension.ChainResolver{
		extension.DefaultRegistry(),
		extension.NewSharedObjectResolver(cfg.PluginDir),
	}
}
