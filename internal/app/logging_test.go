package app

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func fixedLogger(buf *bytes.Buffer, level LogLevel) *Logger {
	l := NewLogger(LoggerConfig{Level: level, Output: buf, Prefix: "coltlink"})
	l.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 6e6, time.UTC) }
	return l
}

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
	}{
		{LogLevelDebug, "DEBUG"},
		{LogLevelInfo, "INFO"},
		{LogLevelWarn, "WARN"},
		{LogLevelError, "ERROR"},
		{LogLevel(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("LogLevel(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LogLevelDebug,
		"DEBUG":   LogLevelDebug,
		"info":    LogLevelInfo,
		"Warning": LogLevelWarn,
		"warn":    LogLevelWarn,
		"error":   LogLevelError,
		"bogus":   LogLevelInfo,
		"":        LogLevelInfo,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogger_Format(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, LogLevelDebug)

	l.Info("connected to %s", "127.0.0.1:8092")

	want := "2026-01-02T03:04:05.006 [INFO] coltlink: connected to 127.0.0.1:8092\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, LogLevelWarn)

	l.Debug("debug")
	l.Info("info")
	l.Warn("warn")
	l.Error("error")

	out := buf.String()
	if strings.Contains(out, "debug") || strings.Contains(out, "info") {
		t.Errorf("filtered levels logged: %q", out)
	}
	if !strings.Contains(out, "[WARN]") || !strings.Contains(out, "[ERROR]") {
		t.Errorf("missing levels: %q", out)
	}

	buf.Reset()
	l.SetLevel(LogLevelDebug)
	l.Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Errorf("SetLevel had no effect: %q", buf.String())
	}
}

func TestLogger_FieldsSorted(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, LogLevelInfo)

	l.WithComponent("poller").WithFields(map[string]any{"file": "main.js", "attempt": 2}).Info("poll failed")

	if !strings.HasSuffix(buf.String(), "poll failed {attempt=2, component=poller, file=main.js}\n") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestLogger_WithFieldReplaces(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, LogLevelInfo)

	l.WithField("file", "a.js").WithField("file", "b.js").Info("x")

	if !strings.HasSuffix(buf.String(), "x {file=b.js}\n") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestLogger_DerivedSharesOutput(t *testing.T) {
	var first, second bytes.Buffer
	l := fixedLogger(&first, LogLevelInfo)
	child := l.WithComponent("bridge")

	child.Info("before")
	if !strings.Contains(first.String(), "before") {
		t.Fatalf("child did not write to parent output: %q", first.String())
	}

	child.SetOutput(&second)
	child.Info("after")
	l.Info("parent")
	if !strings.Contains(second.String(), "after") || !strings.Contains(second.String(), "parent") {
		t.Errorf("SetOutput not shared: %q", second.String())
	}
	if strings.Contains(first.String(), "after") {
		t.Errorf("old output still written: %q", first.String())
	}
}

func TestLogger_DisableEnable(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, LogLevelDebug)

	l.Disable()
	l.Error("hidden")
	if buf.Len() != 0 {
		t.Errorf("disabled logger wrote %q", buf.String())
	}

	l.Enable()
	l.Error("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("enabled logger output = %q", buf.String())
	}
}

func TestNullLogger(t *testing.T) {
	NullLogger.Error("nothing %d", 1)
	NullLogger.WithComponent("x").Info("still nothing")
}

func TestDefaultLoggerConfig(t *testing.T) {
	cfg := DefaultLoggerConfig()
	if cfg.Prefix != "coltlink" || cfg.Level != LogLevelInfo || cfg.Output == nil {
		t.Errorf("DefaultLoggerConfig() = %+v", cfg)
	}
}
