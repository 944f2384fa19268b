// Package config loads and persists txext host settings: which extension
// modules to load and how to load them.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/felixgeelhaar/txext/internal/domain/extension"
	"github.com/felixgeelhaar/txext/internal/ports"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides DefaultPath when set.
const EnvConfigPath = "TXEXT_CONFIG"

var (
	// ErrExtensionConfigured indicates the module identifier is already listed.
	ErrExtensionConfigured = errors.New("extension already configured")
	// ErrExtensionNotConfigured indicates the module identifier is not listed.
	ErrExtensionNotConfigured = errors.New("extension not configured")
)

// Config is the persisted host configuration.
type Config struct {
	// Extensions are module identifiers, loaded in this order.
	Extensions []string `yaml:"extensions" toml:"extensions"`
	// HookMode is "entrypoint" or "bootstrap-verify".
	HookMode string `yaml:"hook_mode,omitempty" toml:"hook_mode,omitempty"`
	// PluginDir holds Go plugin shared objects named <module>.so.
	PluginDir string `yaml:"plugin_dir,omitempty" toml:"plugin_dir,omitempty"`
	// Log configures diagnostic output.
	Log LogConfig `yaml:"log" toml:"log"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `yaml:"level,omitempty" toml:"level,omitempty"`
	Format string `yaml:"format,omitempty" toml:"format,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Extensions: []string{},
		HookMode:   extension.HookEntrypoint.String(),
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultPath returns $TXEXT_CONFIG, or ~/.txext/config.yaml.
func DefaultPath() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".txext", "config.yaml")
	}
	return filepath.Join(home, ".txext", "config.yaml")
}

// Load reads the configuration at path. A missing file yields Default().
// Files ending in .toml are decoded as TOML, anything else as YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := Default()
	if isTOML(path) {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.Extensions == nil {
		cfg.Extensions = []string{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories.
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(c)
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// Validate checks the hook mode, log settings and extension identifiers.
func (c *Config) Validate() error {
	if _, err := extension.ParseHookMode(c.HookMode); err != nil {
		return err
	}
	if _, err := ports.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (use text or json)", c.Log.Format)
	}
	seen := make(map[string]struct{}, len(c.Extensions))
	for _, id := range c.Extensions {
		if strings.TrimSpace(id) == "" {
			return extension.ErrEmptyModuleID
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %s", ErrExtensionConfigured, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// ParsedHookMode returns the configured hook mode.
func (c *Config) ParsedHookMode() (extension.HookMode, error) {
	return extension.ParseHookMode(c.HookMode)
}

// HasExtension reports whether id is configured.
func (c *Config) HasExtension(id string) bool {
	return slices.Contains(c.Extensions, strings.TrimSpace(id))
}

// AddExtension appends id to the extension list.
func (c *Config) AddExtension(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return extension.ErrEmptyModuleID
	}
	if c.HasExtension(id) {
		return fmt.Errorf("%w: %s", ErrExtensionConfigured, id)
	}
	c.Extensions = append(c.Extensions, id)
	return nil
}

// RemoveExtension removes id from the extension list, keeping the order of
// the remaining entries.
func (c *Config) RemoveExtension(id string) error {
	id = strings.TrimSpace(id)
	idx := slices.Index(c.Extensions, id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrExtensionNotConfigured, id)
	}
	c.Extensions = slices.Delete(c.Extensions, idx, idx+1)
	return nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
