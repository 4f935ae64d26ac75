package app

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// LogLevel is the severity of a log line.
type LogLevel int

// Log levels, lowest first.
const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l LogLevel) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLogLevel maps a logging.level value to a LogLevel. "warning" is
// accepted for warn; anything unrecognized is info.
func ParseLogLevel(s string) LogLevel {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "WARNING" {
		return LogLevelWarn
	}
	for i, name := range levelNames {
		if name == s {
			return LogLevel(i)
		}
	}
	return LogLevelInfo
}

// logSink is the state every logger derived from one root shares.
type logSink struct {
	mu       sync.Mutex
	out      io.Writer
	tags     [len(levelNames)]string
	level    atomic.Int32
	disabled atomic.Bool
}

// setOutput renders the level tags for w. Colors are used only when w is a
// terminal.
func (s *logSink) setOutput(w io.Writer) {
	s.out = w
	var r *lipgloss.Renderer
	if w != nil {
		r = lipgloss.NewRenderer(w)
		if r.ColorProfile() == termenv.Ascii {
			r = nil
		}
	}
	colors := [len(levelNames)]string{"244", "39", "214", "196"}
	for i, name := range levelNames {
		tag := "[" + name + "]"
		if r != nil {
			tag = r.NewStyle().Bold(i == int(LogLevelError)).Foreground(lipgloss.Color(colors[i])).Render(tag)
		}
		s.tags[i] = tag
	}
}

type logField struct {
	key   string
	value any
}

// Logger writes leveled lines of the form
//
//	2026-01-02T03:04:05.006 [INFO] coltlink: message {key=value, ...}
//
// Loggers derived with WithField share level, output and lock with their
// root.
type Logger struct {
	sink   *logSink
	prefix string
	fields []logField // sorted by key
	now    func() time.Time
}

// LoggerConfig configures a root logger.
type LoggerConfig struct {
	Level LogLevel

	// Output defaults to os.Stderr.
	Output io.Writer

	// Prefix names the program on every line.
	Prefix string
}

// DefaultLoggerConfig logs info and above to stderr.
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{Level: LogLevelInfo, Output: os.Stderr, Prefix: "coltlink"}
}

// NewLogger creates a root logger.
func NewLogger(cfg LoggerConfig) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	sink := &logSink{}
	sink.setOutput(cfg.Output)
	sink.level.Store(int32(cfg.Level))
	return &Logger{sink: sink, prefix: cfg.Prefix, now: time.Now}
}

// WithField returns a logger that appends key=value to every line.
func (l *Logger) WithField(key string, value any) *Logger {
	fields := make([]logField, 0, len(l.fields)+1)
	replaced := false
	for _, f := range l.fields {
		if f.key == key {
			f.value = value
			replaced = true
		}
		fields = append(fields, f)
	}
	if !replaced {
		fields = append(fields, logField{key, value})
		sort.Slice(fields, func(i, j int) bool { return fields[i].key < fields[j].key })
	}
	return &Logger{sink: l.sink, prefix: l.prefix, fields: fields, now: l.now}
}

// WithFields is WithField for several keys.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	out := l
	for k, v := range fields {
		out = out.WithField(k, v)
	}
	return out
}

// WithComponent tags lines with the component that wrote them.
func (l *Logger) WithComponent(component string) *Logger {
	return l.WithField("component", component)
}

// SetLevel sets the minimum level for l and every logger sharing its root.
func (l *Logger) SetLevel(level LogLevel) {
	l.sink.level.Store(int32(level))
}

// Level returns the minimum level.
func (l *Logger) Level() LogLevel {
	return LogLevel(l.sink.level.Load())
}

// SetOutput redirects l and every logger sharing its root.
func (l *Logger) SetOutput(w io.Writer) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.setOutput(w)
}

// Disable silences the logger until Enable.
func (l *Logger) Disable() { l.sink.disabled.Store(true) }

// Enable undoes Disable.
func (l *Logger) Enable() { l.sink.disabled.Store(false) }

func (l *Logger) Debug(msg string, args ...any) { l.log(LogLevelDebug, msg, args) }
func (l *Logger) Info(msg string, args ...any)  { l.log(LogLevelInfo, msg, args) }
func (l *Logger) Warn(msg string, args ...any)  { l.log(LogLevelWarn, msg, args) }
func (l *Logger) Error(msg string, args ...any) { l.log(LogLevelError, msg, args) }

func (l *Logger) log(level LogLevel, msg string, args []any) {
	if l.sink.disabled.Load() || level < l.Level() {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if l.sink.out == nil {
		return
	}

	var b strings.Builder
	b.WriteString(l.now().Format("2006-01-02T15:04:05.000"))
	b.WriteByte(' ')
	b.WriteString(l.sink.tags[level])
	b.WriteByte(' ')
	if l.prefix != "" {
		b.WriteString(l.prefix)
		b.WriteString(": ")
	}
	b.WriteString(msg)
	for i, f := range l.fields {
		if i == 0 {
			b.WriteString(" {")
		} else {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%v", f.key, f.value)
	}
	if len(l.fields) > 0 {
		b.WriteByte('}')
	}
	b.WriteByte('\n')
	_, _ = io.WriteString(l.sink.out, b.String())
}

// NullLogger discards everything.
var NullLogger = func() *Logger {
	l := NewLogger(LoggerConfig{Output: io.Discard})
	l.Disable()
	return l
}()
