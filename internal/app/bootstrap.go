package app

import (
	"context"
	"os"
	"time"

	"github.com/dshills/coltlink/internal/colt"
	"github.com/dshills/coltlink/internal/config"
	"github.com/dshills/coltlink/internal/editor"
	"github.com/dshills/coltlink/internal/integration"
	"github.com/dshills/coltlink/internal/integration/process"
	"github.com/dshills/coltlink/internal/project"
	"github.com/dshills/coltlink/internal/reconcile"
)

// bootstrapper handles component initialization with proper cleanup on failure.
type bootstrapper struct {
	app       *Application
	opts      Options
	initOrder []string

	// configErr is reported once the logger exists.
	configErr error
}

// newBootstrapper creates a new bootstrapper for the application.
func newBootstrapper(app *Application, opts Options) *bootstrapper {
	return &bootstrapper{
		app:       app,
		opts:      opts,
		initOrder: make([]string, 0, 6),
	}
}

// bootstrap initializes all components in dependency order.
// On failure, it cleans up already-initialized components.
func (b *bootstrapper) bootstrap() error {
	steps := []func() error{
		b.initConfig,
		b.initLogger,
		b.initProject,
		b.initSupervisor,
		b.initEditor,
		b.initColt,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			b.cleanup()
			return err
		}
	}
	return nil
}

// initConfig loads the configuration. A broken file falls back to the
// defaults and is reported once the logger exists.
func (b *bootstrapper) initConfig() error {
	var configOpts []config.Option
	if b.opts.UserConfigDir != "" {
		configOpts = append(configOpts, config.WithUserConfigDir(b.opts.UserConfigDir))
	}
	if b.opts.ProjectDir != "" {
		configOpts = append(configOpts, config.WithProjectConfigDir(b.opts.ProjectDir))
	}

	cfg, err := config.Load(configOpts...)
	if err != nil {
		cfg = config.New(configOpts...)
		b.configErr = NewComponentError("config", "load", err)
	}
	b.app.config = cfg
	b.initOrder = append(b.initOrder, "config")
	return nil
}

// initLogger creates the application logger.
func (b *bootstrapper) initLogger() error {
	level := b.app.config.Logging().Level
	if b.opts.LogLevel != "" {
		level = b.opts.LogLevel
	}

	logCfg := DefaultLoggerConfig()
	logCfg.Level = ParseLogLevel(level)
	logCfg.Output = defaultOutput(b.opts.LogOutput, os.Stderr)
	b.app.logger = NewLogger(logCfg)

	for path, err := range b.app.config.ConfigErrors() {
		b.app.logger.Warn("setting %s: %v", path, err)
	}
	if b.configErr != nil {
		b.app.logger.Warn("%v; using defaults", b.configErr)
	}
	b.initOrder = append(b.initOrder, "logger")
	return nil
}

// initProject loads the working set.
func (b *bootstrapper) initProject() error {
	ws, err := project.LoadWorkingSet(b.app.config.Project().WorkingSet)
	if err != nil {
		return NewComponentError("project", "load working set", err)
	}
	b.app.workingSet = ws
	b.initOrder = append(b.initOrder, "project")
	return nil
}

// initSupervisor creates the process supervisor and the COLT launcher.
func (b *bootstrapper) initSupervisor() error {
	log := b.app.logger.WithComponent("supervisor")
	b.app.supervisor = process.NewSupervisor(
		process.WithExitHandler(func(p *process.Process) {
			log.Info("%s exited", p.Name)
		}),
	)

	cc := b.app.config.Colt()
	b.app.launcher = colt.NewLauncher(colt.LauncherConfig{
		Path:           cc.Path,
		Address:        cc.Address,
		ConnectTimeout: cc.ConnectTimeout,
		RequestTimeout: cc.RequestTimeout,
	}, b.app.supervisor)

	b.app.dial = b.opts.Dial
	if b.app.dial == nil {
		b.app.dial = func(ctx context.Context) (Conn, error) {
			t, err := b.app.launcher.Connect(ctx)
			if err != nil {
				return nil, err
			}
			return t, nil
		}
	}
	b.initOrder = append(b.initOrder, "supervisor")
	return nil
}

// initEditor builds the loop-owned side: console, annotation state, idle
// timer, bridge and host.
func (b *bootstrapper) initEditor() error {
	app := b.app
	ec := app.config.Editor()

	app.metrics = NewMetrics()
	app.loop = NewLoop(
		WithMetrics(app.metrics),
		WithPanicHandler(func(err error) {
			app.logger.WithComponent("loop").Error("%v", err)
		}),
	)

	app.console = editor.NewConsole(defaultOutput(b.opts.Output, os.Stdout))
	app.state = reconcile.NewState()
	app.status = reconcile.NewStatusProjector(app.state, app.console)
	app.idle = integration.NewIdleTimer(app.loop, ec.IdleDelay, app.onIdle)

	app.bridge = NewBridge(BridgeConfig{
		Editor: app.console,
		Idle:   app.idle,
		Status: app.status,
		IsColtFile: func(path string) bool {
			return project.IsColtFile(app.workingSet, path)
		},
		Live: func() bool {
			return app.sessions.HasActiveSessions()
		},
		Autosave: func() bool {
			return app.config.Editor().Autosave
		},
		Logger: app.logger,
	})

	hostLog := app.logger.WithComponent("host")
	app.host = editor.NewHost(app.console, app.bridge, app.loop.Post, func(err error) {
		hostLog.Warn("%v", err)
	})
	b.initOrder = append(b.initOrder, "editor")
	return nil
}

// initColt creates the session tracker.
func (b *bootstrapper) initColt() error {
	b.app.sessions = colt.NewSessionTracker(colt.WithSessionChange(b.app.onSessionChange))
	b.initOrder = append(b.initOrder, "colt")
	return nil
}

// cleanup performs cleanup in reverse initialization order.
// Called when bootstrap fails partway through.
func (b *bootstrapper) cleanup() {
	for i := len(b.initOrder) - 1; i >= 0; i-- {
		b.cleanupComponent(b.initOrder[i])
	}
}

// cleanupComponent cleans up a single component.
func (b *bootstrapper) cleanupComponent(component string) {
	switch component {
	case "supervisor":
		if b.app.supervisor != nil {
			b.app.supervisor.Shutdown(time.Second)
			b.app.supervisor = nil
		}
	case "editor":
		if b.app.idle != nil {
			b.app.idle.Stop()
		}
	}
}
