package reconcile

import (
	"context"
	"time"

	"github.com/dshills/coltlink/internal/colt"
	"github.com/dshills/coltlink/internal/editor"
)

// ConsolePrefix marks COLT output in the console.
const ConsolePrefix = "[COLT] "

// DefaultConsoleWindow is how young a session must be for a new error to
// reveal the console.
const DefaultConsoleWindow = 3 * time.Second

// Source is the part of the COLT client the reconciler reads from.
type Source interface {
	GetLastLogMessages(ctx context.Context) ([]colt.LogMessage, error)
	GetLastRuntimeError(ctx context.Context) (*colt.RuntimeError, error)
	GetMethodCounts(ctx context.Context) ([]colt.MethodCount, error)
}

// Sessions reports the live session state.
type Sessions interface {
	Session() colt.Session
}

// Logger is the logging the reconciler needs. *app.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}

// Option configures a Poller or Counts.
type Option func(*options)

type options struct {
	log           Logger
	now           func() time.Time
	consoleWindow time.Duration
}

func newOptions(opts []Option) options {
	o := options{
		log:           nopLogger{},
		now:           time.Now,
		consoleWindow: DefaultConsoleWindow,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithConsoleWindow sets how young a session must be for new errors to
// reveal the console.
func WithConsoleWindow(d time.Duration) Option {
	return func(o *options) {
		o.consoleWindow = d
	}
}

// Poller pulls log messages and runtime errors on every idle tick and
// reconciles them into error annotations.
type Poller struct {
	state    *State
	src      Source
	sessions Sessions
	ed       editor.Editor
	opts     options
}

// NewPoller creates a poller writing into state.
func NewPoller(state *State, src Source, sessions Sessions, ed editor.Editor, opts ...Option) *Poller {
	return &Poller{
		state:    state,
		src:      src,
		sessions: sessions,
		ed:       ed,
		opts:     newOptions(opts),
	}
}

// OnIdle runs one poll. Failures are logged and retried on the next tick.
func (p *Poller) OnIdle(ctx context.Context) {
	session := p.sessions.Session()
	if !session.Active {
		p.state.Clear(p.ed)
		return
	}

	msgs, err := p.src.GetLastLogMessages(ctx)
	if err != nil {
		p.opts.log.Debug("poll log messages: %v", err)
		return
	}

	rerr, err := p.src.GetLastRuntimeError(ctx)
	if err != nil {
		p.opts.log.Debug("poll runtime error: %v", err)
	} else if rerr != nil && rerr.ErrorMessage != "" && p.state.latchRuntimeError(rerr.ErrorMessage) {
		msgs = append(msgs, rerr.AsLogMessage())
	}

	young := session.Age(p.opts.now()) < p.opts.consoleWindow
	reveal := false
	var fresh []*Annotation

	for _, m := range msgs {
		switch {
		case !m.Located():
			p.ed.AppendConsole(ConsolePrefix + m.Message)
		case m.IsReload():
			p.state.ClearFile(p.ed, m.FilePath)
		default:
			p.ed.AppendConsole(ConsolePrefix + m.Message)
			fresh = append(fresh, p.state.upsert(Key{FilePath: m.FilePath, Position: m.Position}, m.Message))
			if young {
				reveal = true
			}
		}
	}

	bound := make(map[*Annotation]bool, len(fresh))
	for _, a := range fresh {
		// A later reload message in the same batch may have dropped it.
		if p.state.annotations[a.Key] != a || bound[a] {
			continue
		}
		p.state.bind(p.ed, a)
		bound[a] = true
	}

	for _, a := range p.state.annotations {
		if !bound[a] && p.state.stale(p.ed, a) {
			p.state.bind(p.ed, a)
		}
	}

	if reveal {
		p.ed.RevealConsole()
	}
}
