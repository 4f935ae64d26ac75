package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/coltlink/internal/config/loader"
)

// isolatedEnv returns an env layer that no real variable can match.
func isolatedEnv() Option {
	return WithEnvLoader(loader.NewEnvLoader("COLTLINK_TEST_ISOLATED_"))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestNew_WithOptions(t *testing.T) {
	userDir := t.TempDir()
	projectDir := t.TempDir()

	c := New(WithUserConfigDir(userDir), WithProjectConfigDir(projectDir))

	if c.UserConfigDir() != userDir {
		t.Errorf("UserConfigDir() = %q, want %q", c.UserConfigDir(), userDir)
	}
	if got, want := c.UserConfigPath(), filepath.Join(userDir, UserConfigFile); got != want {
		t.Errorf("UserConfigPath() = %q, want %q", got, want)
	}
	if got, want := c.ProjectConfigPath(), filepath.Join(projectDir, ProjectConfigFile); got != want {
		t.Errorf("ProjectConfigPath() = %q, want %q", got, want)
	}
	if New(WithUserConfigDir(userDir)).ProjectConfigPath() != "" {
		t.Error("ProjectConfigPath() without a project dir should be empty")
	}
}

func TestDefaultUserConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := defaultUserConfigDir(); got != filepath.Join("/xdg", "coltlink") {
		t.Errorf("defaultUserConfigDir() = %q", got)
	}
}

func TestConfig_Defaults(t *testing.T) {
	c, err := Load(WithUserConfigDir(t.TempDir()), isolatedEnv())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	colt := c.Colt()
	if colt.Address != "127.0.0.1:8092" {
		t.Errorf("Colt.Address = %q", colt.Address)
	}
	if colt.RequestTimeout != 10*time.Second || colt.ConnectTimeout != 30*time.Second {
		t.Errorf("Colt timeouts = %v, %v", colt.RequestTimeout, colt.ConnectTimeout)
	}
	if colt.Token != "" || colt.Path != "" {
		t.Errorf("Colt = %+v, want empty path and token", colt)
	}

	ed := c.Editor()
	if ed.Autosave {
		t.Error("Editor.Autosave should default to false")
	}
	if ed.IdleDelay != 800*time.Millisecond {
		t.Errorf("Editor.IdleDelay = %v", ed.IdleDelay)
	}
	if ed.ConsoleWindow != 3*time.Second {
		t.Errorf("Editor.ConsoleWindow = %v", ed.ConsoleWindow)
	}

	if got, want := c.Project().WorkingSet, filepath.Join(c.UserConfigDir(), "working_set.yaml"); got != want {
		t.Errorf("Project.WorkingSet = %q, want %q", got, want)
	}
	if c.Logging().Level != "info" {
		t.Errorf("Logging.Level = %q", c.Logging().Level)
	}
	if len(c.ConfigErrors()) != 0 {
		t.Errorf("ConfigErrors() = %v", c.ConfigErrors())
	}
}

func TestConfig_LayerPrecedence(t *testing.T) {
	userDir := t.TempDir()
	projectDir := t.TempDir()

	writeFile(t, filepath.Join(userDir, UserConfigFile), `
[colt]
path = "/opt/colt"
address = "127.0.0.1:9000"

[editor]
autosave = true
idle_delay = "500ms"
`)
	writeFile(t, filepath.Join(projectDir, ProjectConfigFile), `
[colt]
address = "127.0.0.1:9100"

[editor]
console_window = 1500
`)
	t.Setenv("COLTLINK_TEST_LOG_LEVEL", "debug")
	t.Setenv("COLTLINK_TEST_EDITOR_IDLE_DELAY", "250ms")

	c, err := Load(
		WithUserConfigDir(userDir),
		WithProjectConfigDir(projectDir),
		WithEnvLoader(loader.NewEnvLoader("COLTLINK_TEST_")),
	)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	colt := c.Colt()
	if colt.Path != "/opt/colt" {
		t.Errorf("Colt.Path = %q, want user value", colt.Path)
	}
	if colt.Address != "127.0.0.1:9100" {
		t.Errorf("Colt.Address = %q, want project value", colt.Address)
	}

	ed := c.Editor()
	if !ed.Autosave {
		t.Error("Editor.Autosave = false, want user value")
	}
	if ed.IdleDelay != 250*time.Millisecond {
		t.Errorf("Editor.IdleDelay = %v, want env value", ed.IdleDelay)
	}
	if ed.ConsoleWindow != 1500*time.Millisecond {
		t.Errorf("Editor.ConsoleWindow = %v, want integer milliseconds", ed.ConsoleWindow)
	}
	if c.Logging().Level != "debug" {
		t.Errorf("Logging.Level = %q, want env value", c.Logging().Level)
	}
}

func TestConfig_TypeMismatch(t *testing.T) {
	userDir := t.TempDir()
	writeFile(t, filepath.Join(userDir, UserConfigFile), `
[editor]
autosave = "sometimes"
idle_delay = "soon"
`)

	c, err := Load(WithUserConfigDir(userDir), isolatedEnv())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	ed := c.Editor()
	if ed.Autosave || ed.IdleDelay != 800*time.Millisecond {
		t.Errorf("Editor = %+v, want defaults", ed)
	}

	errs := c.ConfigErrors()
	for _, key := range []string{KeyEditorAutosave, KeyEditorIdleDelay} {
		if !errors.Is(errs[key], ErrTypeMismatch) {
			t.Errorf("ConfigErrors()[%q] = %v, want ErrTypeMismatch", key, errs[key])
		}
	}
}

func TestConfig_LoadParseError(t *testing.T) {
	userDir := t.TempDir()
	writeFile(t, filepath.Join(userDir, UserConfigFile), "[colt\n")

	_, err := Load(WithUserConfigDir(userDir), isolatedEnv())
	var pe *loader.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Load() error = %v, want *loader.ParseError", err)
	}
}

func TestConfig_SetUserValue(t *testing.T) {
	userDir := t.TempDir()
	c, err := Load(WithUserConfigDir(userDir), isolatedEnv())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.SetUserValue(KeyColtToken, "secret"); err != nil {
		t.Fatalf("SetUserValue() error = %v", err)
	}
	if c.Colt().Token != "secret" {
		t.Errorf("in-memory token = %q", c.Colt().Token)
	}

	reloaded, err := Load(WithUserConfigDir(userDir), isolatedEnv())
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Colt().Token != "secret" {
		t.Errorf("persisted token = %q", reloaded.Colt().Token)
	}

	if err := c.SetUserValue("colt.bogus", 1); !errors.Is(err, ErrSettingNotFound) {
		t.Errorf("SetUserValue(unknown) error = %v, want ErrSettingNotFound", err)
	}
}

func TestTypeError(t *testing.T) {
	tests := []struct {
		err  *TypeError
		want string
	}{
		{&TypeError{Path: KeyEditorAutosave, Expected: "bool", Value: "yes"}, `editor.autosave: want bool, got "yes"`},
		{&TypeError{Path: KeyEditorIdleDelay, Expected: "duration", Value: 1.5}, "editor.idle_delay: want duration, got float64"},
		{&TypeError{Path: KeyColtToken, Expected: "string", Value: int64(3)}, "colt.token: want string, got int64"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
		if !errors.Is(tt.err, ErrTypeMismatch) {
			t.Errorf("%v does not match ErrTypeMismatch", tt.err)
		}
	}
}
