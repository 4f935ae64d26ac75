package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dshills/coltlink/internal/config/loader"
)

const (
	// AppName names the user config directory.
	AppName = "coltlink"
	// UserConfigFile is the user configuration file name.
	UserConfigFile = "config.toml"
	// ProjectConfigFile is the per-project configuration file name.
	ProjectConfigFile = ".coltlink.toml"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "COLTLINK_"
)

// Config provides access to the merged coltlink configuration. Layers are
// applied lowest priority first: built-in defaults, the user file, the
// project file, then COLTLINK_ environment variables.
type Config struct {
	mu sync.RWMutex

	data map[string]any

	// Configuration paths
	userConfigDir    string
	projectConfigDir string
	env              *loader.EnvLoader

	// configErrors stores errors encountered during configuration access.
	configErrors map[string]error
}

// Option configures a Config instance.
type Option func(*Config)

// WithUserConfigDir sets the user configuration directory.
func WithUserConfigDir(dir string) Option {
	return func(c *Config) {
		c.userConfigDir = dir
	}
}

// WithProjectConfigDir sets the project configuration directory.
func WithProjectConfigDir(dir string) Option {
	return func(c *Config) {
		c.projectConfigDir = dir
	}
}

// WithEnvLoader replaces the environment layer.
func WithEnvLoader(env *loader.EnvLoader) Option {
	return func(c *Config) {
		c.env = env
	}
}

// New creates a Config holding only the defaults. Call Load to read the
// other layers.
func New(opts ...Option) *Config {
	c := &Config{
		data:         defaultConfig(),
		configErrors: make(map[string]error),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.userConfigDir == "" {
		c.userConfigDir = defaultUserConfigDir()
	}
	if c.env == nil {
		c.env = loader.NewEnvLoader(EnvPrefix)
	}
	return c
}

// Load creates a Config and reads every layer.
func Load(opts ...Option) (*Config, error) {
	c := New(opts...)
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads every layer.
func (c *Config) Reload() error {
	merged := defaultConfig()

	sources := []loader.Loader{loader.NewTOMLLoader(c.UserConfigPath())}
	if p := c.ProjectConfigPath(); p != "" {
		sources = append(sources, loader.NewTOMLLoader(p))
	}
	sources = append(sources, c.env)

	for _, src := range sources {
		data, err := src.Load()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		merged = loader.DeepMerge(merged, data)
	}

	c.mu.Lock()
	c.data = merged
	c.configErrors = make(map[string]error)
	c.mu.Unlock()
	return nil
}

// UserConfigPath returns the user configuration file.
func (c *Config) UserConfigPath() string {
	return filepath.Join(c.userConfigDir, UserConfigFile)
}

// UserConfigDir returns the user configuration directory.
func (c *Config) UserConfigDir() string {
	return c.userConfigDir
}

// ProjectConfigPath returns the project configuration file, or "" when no
// project directory is set.
func (c *Config) ProjectConfigPath() string {
	if c.projectConfigDir == "" {
		return ""
	}
	return filepath.Join(c.projectConfigDir, ProjectConfigFile)
}

// Get returns the merged value at a dotted path.
func (c *Config) Get(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return loader.GetByPath(c.data, path)
}

// SetUserValue persists path = value in the user configuration file and
// applies it to the in-memory configuration.
func (c *Config) SetUserValue(path string, value any) error {
	if !IsKnownSetting(path) {
		return fmt.Errorf("%w: %s", ErrSettingNotFound, path)
	}
	if err := loader.SetValue(c.UserConfigPath(), path, value); err != nil {
		return err
	}

	c.mu.Lock()
	loader.SetByPath(c.data, path, value)
	delete(c.configErrors, path)
	c.mu.Unlock()
	return nil
}

// defaultUserConfigDir returns $XDG_CONFIG_HOME/coltlink, falling back to
// ~/.config/coltlink.
func defaultUserConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", AppName)
}

// recordConfigError stores an error for a configuration path.
func (c *Config) recordConfigError(path string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.configErrors[path] = err
}

// ConfigErrors returns the errors recorded while reading settings.
func (c *Config) ConfigErrors() map[string]error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]error, len(c.configErrors))
	for k, v := range c.configErrors {
		out[k] = v
	}
	return out
}
