package config

import (
	"path/filepath"
	"time"
)

// Setting paths.
const (
	KeyColtPath           = "colt.path"
	KeyColtAddress        = "colt.address"
	KeyColtToken          = "colt.token"
	KeyColtRequestTimeout = "colt.request_timeout"
	KeyColtConnectTimeout = "colt.connect_timeout"
	KeyEditorAutosave     = "editor.autosave"
	KeyEditorIdleDelay    = "editor.idle_delay"
	KeyEditorConsole      = "editor.console_window"
	KeyProjectWorkingSet  = "project.working_set"
	KeyLoggingLevel       = "logging.level"
)

// defaultConfig returns the default configuration values.
func defaultConfig() map[string]any {
	return map[string]any{
		"colt": map[string]any{
			"path":            "",
			"address":         "127.0.0.1:8092",
			"token":           "",
			"request_timeout": "10s",
			"connect_timeout": "30s",
		},
		"editor": map[string]any{
			"autosave":       false,
			"idle_delay":     "800ms",
			"console_window": "3s",
		},
		"project": map[string]any{
			"working_set": "",
		},
		"logging": map[string]any{
			"level": "info",
		},
	}
}

// IsKnownSetting reports whether path names a coltlink setting.
func IsKnownSetting(path string) bool {
	switch path {
	case KeyColtPath, KeyColtAddress, KeyColtToken, KeyColtRequestTimeout, KeyColtConnectTimeout,
		KeyEditorAutosave, KeyEditorIdleDelay, KeyEditorConsole,
		KeyProjectWorkingSet, KeyLoggingLevel:
		return true
	}
	return false
}

// ColtConfig contains COLT connection settings.
type ColtConfig struct {
	// Path is the COLT executable.
	Path string
	// Address is COLT's RPC host:port.
	Address string
	// Token is the security token obtained by authorization.
	Token string
	// RequestTimeout bounds each RPC call.
	RequestTimeout time.Duration
	// ConnectTimeout bounds connecting to a starting COLT.
	ConnectTimeout time.Duration
}

// EditorConfig contains editor bridge settings.
type EditorConfig struct {
	Autosave      bool
	IdleDelay     time.Duration
	ConsoleWindow time.Duration
}

// ProjectConfig contains project settings.
type ProjectConfig struct {
	// WorkingSet is the working-set file.
	WorkingSet string
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level string
}

// Colt returns the COLT settings.
func (c *Config) Colt() ColtConfig {
	return ColtConfig{
		Path:           c.getStringOr(KeyColtPath, ""),
		Address:        c.getStringOr(KeyColtAddress, "127.0.0.1:8092"),
		Token:          c.getStringOr(KeyColtToken, ""),
		RequestTimeout: c.getDurationOr(KeyColtRequestTimeout, 10*time.Second),
		ConnectTimeout: c.getDurationOr(KeyColtConnectTimeout, 30*time.Second),
	}
}

// Editor returns the editor settings.
func (c *Config) Editor() EditorConfig {
	return EditorConfig{
		Autosave:      c.getBoolOr(KeyEditorAutosave, false),
		IdleDelay:     c.getDurationOr(KeyEditorIdleDelay, 800*time.Millisecond),
		ConsoleWindow: c.getDurationOr(KeyEditorConsole, 3*time.Second),
	}
}

// Project returns the project settings. An unset working set lives in the
// user config directory.
func (c *Config) Project() ProjectConfig {
	ws := c.getStringOr(KeyProjectWorkingSet, "")
	if ws == "" {
		ws = filepath.Join(c.userConfigDir, "working_set.yaml")
	}
	return ProjectConfig{WorkingSet: ws}
}

// Logging returns the logging settings.
func (c *Config) Logging() LoggingConfig {
	return LoggingConfig{
		Level: c.getStringOr(KeyLoggingLevel, "info"),
	}
}

func (c *Config) getStringOr(path string, defaultValue string) string {
	v, ok := c.Get(path)
	if !ok {
		return defaultValue
	}
	s, ok := v.(string)
	if !ok {
		c.recordConfigError(path, &TypeError{Path: path, Expected: "string", Value: v})
		return defaultValue
	}
	return s
}

func (c *Config) getBoolOr(path string, defaultValue bool) bool {
	v, ok := c.Get(path)
	if !ok {
		return defaultValue
	}
	b, ok := v.(bool)
	if !ok {
		c.recordConfigError(path, &TypeError{Path: path, Expected: "bool", Value: v})
		return defaultValue
	}
	return b
}

// getDurationOr accepts a duration string ("800ms"), a time.Duration from
// the environment layer, or an integer number of milliseconds.
func (c *Config) getDurationOr(path string, defaultValue time.Duration) time.Duration {
	v, ok := c.Get(path)
	if !ok {
		return defaultValue
	}
	switch d := v.(type) {
	case time.Duration:
		return d
	case int64:
		return time.Duration(d) * time.Millisecond
	case string:
		parsed, err := time.ParseDuration(d)
		if err != nil {
			c.recordConfigError(path, &TypeError{Path: path, Expected: "duration", Value: d})
			return defaultValue
		}
		return parsed
	default:
		c.recordConfigError(path, &TypeError{Path: path, Expected: "duration", Value: v})
		return defaultValue
	}
}
