package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/coltlink/internal/colt"
	"github.com/dshills/coltlink/internal/config"
	"github.com/dshills/coltlink/internal/editor"
	"github.com/dshills/coltlink/internal/integration"
	"github.com/dshills/coltlink/internal/integration/process"
	"github.com/dshills/coltlink/internal/project"
	"github.com/dshills/coltlink/internal/reconcile"
	"github.com/dshills/coltlink/internal/rpc"
	"github.com/dshills/coltlink/internal/watcher"
)

// AppName identifies coltlink to COLT during authorization.
const AppName = "coltlink"

// Conn is a live connection to COLT. *rpc.Transport implements it.
type Conn interface {
	rpc.Caller
	colt.Notifier
	Done() <-chan struct{}
	Close() error
}

// Dialer opens a connection to COLT.
type Dialer func(ctx context.Context) (Conn, error)

// Options configures the application.
type Options struct {
	// UserConfigDir overrides the user configuration directory.
	UserConfigDir string

	// ProjectDir is searched for a .coltlink.toml.
	ProjectDir string

	// LogLevel overrides logging.level when set.
	LogLevel string

	// LogOutput receives log lines. Defaults to os.Stderr.
	LogOutput io.Writer

	// Output receives the console rendering. Defaults to os.Stdout.
	Output io.Writer

	// Prompter asks for the authorization short code.
	Prompter colt.CodePrompter

	// Dial replaces the launcher's connect, mainly for tests.
	Dial Dialer
}

// Application owns every coltlink component. One-shot commands use Connect
// and Client; the live bridge additionally calls Run.
type Application struct {
	mu sync.Mutex

	// Core infrastructure
	config     *config.Config
	logger     *Logger
	metrics    *Metrics
	loop       *Loop
	supervisor *process.Supervisor
	launcher   *colt.Launcher
	workingSet *project.WorkingSet

	// Editor side, owned by the loop
	console *editor.Console
	state   *reconcile.State
	status  *reconcile.StatusProjector
	idle    *integration.IdleTimer
	bridge  *Bridge
	host    *editor.Host

	// COLT side
	sessions *colt.SessionTracker
	dial     Dialer
	conn     Conn
	client   *colt.Client
	poller   *reconcile.Poller
	counts   *reconcile.Counts

	// State
	running atomic.Bool
	runCtx  context.Context

	opts Options
}

// New creates an application and initializes every component that does not
// need COLT.
func New(opts Options) (*Application, error) {
	app := &Application{opts: opts, runCtx: context.Background()}

	b := newBootstrapper(app, opts)
	if err := b.bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// Connect dials COLT, authorizes and synchronizes the session count. A
// stored token is reused; when COLT rejects it a new one is requested and
// persisted.
func (app *Application) Connect(ctx context.Context) (*colt.Client, error) {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.client != nil {
		return app.client, nil
	}

	conn, err := app.dial(ctx)
	if err != nil {
		return nil, NewComponentError("colt", "connect", err)
	}

	client := colt.NewClient(conn, colt.WithToken(app.config.Colt().Token))
	app.sessions.Attach(conn)

	err = app.sessions.Sync(ctx, client)
	if errors.Is(err, colt.ErrNotAuthorized) || rpc.IsUnauthorized(err) {
		if err = app.authorize(ctx, client); err == nil {
			err = app.sessions.Sync(ctx, client)
		}
	}
	if err != nil {
		_ = conn.Close()
		return nil, NewComponentError("colt", "connect", err)
	}

	app.conn = conn
	app.client = client
	app.poller = reconcile.NewPoller(app.state, client, app.sessions, app.console,
		reconcile.WithLogger(app.logger.WithComponent("poller")),
		reconcile.WithConsoleWindow(app.config.Editor().ConsoleWindow),
	)
	app.counts = reconcile.NewCounts(app.state, client, app.sessions, app.console,
		reconcile.WithLogger(app.logger.WithComponent("counts")),
	)

	go app.watchConn(conn)

	app.logger.Info("connected to COLT, %d active session(s)", app.sessions.ActiveSessions())
	return client, nil
}

func (app *Application) authorize(ctx context.Context, client *colt.Client) error {
	if app.opts.Prompter == nil {
		return fmt.Errorf("authorize: %w", colt.ErrNotAuthorized)
	}
	token, err := client.Authorize(ctx, AppName, app.opts.Prompter)
	if err != nil {
		return fmt.Errorf("authorize: %w", err)
	}
	if err := app.config.SetUserValue(config.KeyColtToken, token); err != nil {
		app.logger.Warn("persist token: %v", err)
	}
	return nil
}

// watchConn clears every annotation once COLT hangs up. A connection
// released by Close is ignored.
func (app *Application) watchConn(conn Conn) {
	<-conn.Done()
	app.mu.Lock()
	current := app.conn == conn
	if current {
		app.conn, app.client = nil, nil
	}
	app.mu.Unlock()
	if !current {
		return
	}
	app.logger.Warn("COLT connection closed")
	app.sessions.Reset()
	app.loop.Post(func() {
		app.state.Reset(app.console)
	})
}

// Client returns the connected client, or ErrNotConnected.
func (app *Application) Client() (*colt.Client, error) {
	app.mu.Lock()
	defer app.mu.Unlock()
	if app.client == nil {
		return nil, ErrNotConnected
	}
	return app.client, nil
}

// RequireSession returns the connected client when at least one live
// session is running, or colt.ErrNoSession.
func (app *Application) RequireSession() (*colt.Client, error) {
	client, err := app.Client()
	if err != nil {
		return nil, err
	}
	if !app.sessions.HasActiveSessions() {
		return nil, colt.ErrNoSession
	}
	return client, nil
}

// RegisterProject adds the project of mainDocument to the working set and
// persists it. projectFile may be overridden by colt:project meta tags.
func (app *Application) RegisterProject(mainDocument, projectFile string) (project.Project, error) {
	p, err := project.New(mainDocument, projectFile)
	if err != nil {
		return project.Project{}, err
	}
	app.workingSet.Add(p)
	if err := app.workingSet.Save(); err != nil {
		return project.Project{}, NewComponentError("project", "save working set", err)
	}
	return p, nil
}

// StartColt launches COLT for the project unless it already runs.
func (app *Application) StartColt(p project.Project) (*process.Process, error) {
	var args []string
	if p.ProjectFile != "" {
		args = append(args, p.ProjectFile)
	}
	return app.launcher.Start(args...)
}

// Run runs the live bridge until ctx is done: the event loop, the host
// command reader on in, and the project watcher. Connect must succeed
// first.
func (app *Application) Run(ctx context.Context, in io.Reader) error {
	if _, err := app.Client(); err != nil {
		return err
	}
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	g, gctx := errgroup.WithContext(ctx)
	app.runCtx = gctx

	w, err := app.watchRoots()
	if err != nil {
		app.logger.Warn("file watching disabled: %v", err)
	}

	g.Go(func() error {
		return app.loop.Run(gctx)
	})
	app.loop.Post(app.idle.Notify)

	if in != nil {
		g.Go(func() error {
			return app.host.Run(gctx, in)
		})
	}

	if w != nil {
		g.Go(func() error {
			watcher.Forward(gctx, w, app.host.Modified, func(err error) {
				app.logger.WithComponent("watcher").Warn("%v", err)
			})
			return nil
		})
		defer w.Close()
	}

	err = g.Wait()
	app.idle.Stop()

	m := app.metrics.Snapshot()
	app.logger.Debug("bridge stopped after %s: %d idle cycles (avg %s, max %s), %d tasks, %d panics",
		m.Uptime.Round(time.Second), m.IdleCycles, m.AvgIdle, m.MaxIdle, m.Tasks, m.Panics)
	return err
}

func (app *Application) watchRoots() (*watcher.Watcher, error) {
	roots := app.workingSet.Roots()
	if len(roots) == 0 {
		return nil, nil
	}
	w, err := watcher.New()
	if err != nil {
		return nil, err
	}
	for _, root := range roots {
		if err := w.WatchRecursive(root); err != nil {
			app.logger.Warn("watch %s: %v", root, err)
		}
	}
	return w, nil
}

// onIdle runs on the loop after the editor has been quiet for the idle
// delay. Errors are reconciled before counts so a count marker never
// shares a row with an error.
func (app *Application) onIdle() {
	if app.poller == nil {
		return
	}
	start := time.Now()
	app.poller.OnIdle(app.runCtx)
	app.counts.Refresh(app.runCtx)
	app.metrics.RecordIdle(time.Since(start))
}

// onSessionChange runs on the tracker's caller goroutine.
func (app *Application) onSessionChange(s colt.Session) {
	if s.Active {
		app.logger.Info("live session started")
		return
	}
	app.logger.Info("live session ended")
	app.loop.Post(func() {
		app.state.Reset(app.console)
	})
}

// Close closes the COLT connection and leaves started processes running.
func (app *Application) Close() error {
	app.mu.Lock()
	conn := app.conn
	app.conn = nil
	app.client = nil
	app.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

// Shutdown closes the connection and stops processes started by this
// application.
func (app *Application) Shutdown(timeout time.Duration) error {
	errs := NewErrorList()
	errs.Add(app.Close())

	done := make(chan struct{})
	go func() {
		app.supervisor.Shutdown(timeout)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout + time.Second):
		errs.Add(ErrShutdownTimeout)
	}

	return errs.AsError()
}

// IsRunning returns true while Run is active.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Config returns the configuration.
func (app *Application) Config() *config.Config {
	return app.config
}

// Logger returns the application's logger.
func (app *Application) Logger() *Logger {
	return app.logger
}

// Metrics returns the bridge metrics.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

// Loop returns the event loop.
func (app *Application) Loop() *Loop {
	return app.loop
}

// Console returns the console editor.
func (app *Application) Console() *editor.Console {
	return app.console
}

// State returns the annotation state.
func (app *Application) State() *reconcile.State {
	return app.state
}

// Sessions returns the session tracker.
func (app *Application) Sessions() *colt.SessionTracker {
	return app.sessions
}

// WorkingSet returns the project working set.
func (app *Application) WorkingSet() *project.WorkingSet {
	return app.workingSet
}

func defaultOutput(w io.Writer, fallback *os.File) io.Writer {
	if w == nil {
		return fallback
	}
	return w
}
