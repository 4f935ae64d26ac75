package app

import (
	"github.com/dshills/coltlink/internal/editor"
	"github.com/dshills/coltlink/internal/integration"
	"github.com/dshills/coltlink/internal/reconcile"
)

// BridgeConfig holds the collaborators of a Bridge.
type BridgeConfig struct {
	Editor editor.Editor
	Idle   *integration.IdleTimer
	Status *reconcile.StatusProjector

	// IsColtFile reports whether a path belongs to a working-set project.
	IsColtFile func(path string) bool
	// Live reports a connected transport with at least one active session.
	Live func() bool
	// Autosave reports whether autosave is enabled.
	Autosave func() bool

	Logger *Logger
}

// Bridge receives editor events on the loop. Every activation, edit and
// selection change re-arms the idle timer; selection changes also project
// the annotation under the caret onto the status bar, and edits of COLT
// files are saved when autosave is on.
type Bridge struct {
	cfg BridgeConfig
	log *Logger
}

// NewBridge creates a bridge.
func NewBridge(cfg BridgeConfig) *Bridge {
	log := cfg.Logger
	if log == nil {
		log = NullLogger
	}
	if cfg.IsColtFile == nil {
		cfg.IsColtFile = func(string) bool { return false }
	}
	if cfg.Live == nil {
		cfg.Live = func() bool { return false }
	}
	if cfg.Autosave == nil {
		cfg.Autosave = func() bool { return false }
	}
	return &Bridge{cfg: cfg, log: log.WithComponent("bridge")}
}

// OnActivated implements editor.Listener.
func (b *Bridge) OnActivated(view editor.ViewID) {
	b.cfg.Idle.Notify()
}

// OnModified implements editor.Listener.
func (b *Bridge) OnModified(view editor.ViewID) {
	b.cfg.Idle.Notify()
	b.autosave(view)
}

// OnSelectionModified implements editor.Listener.
func (b *Bridge) OnSelectionModified(view editor.ViewID, selectionStart int) {
	b.cfg.Idle.Notify()
	b.cfg.Status.Project(view, selectionStart)
}

// OnClosed implements editor.Listener. Annotations bound to the view go
// stale and are rebound by the next poll.
func (b *Bridge) OnClosed(view editor.ViewID) {}

func (b *Bridge) autosave(view editor.ViewID) {
	if !b.cfg.Autosave() || !b.cfg.Live() {
		return
	}
	path := b.cfg.Editor.FilePath(view)
	if path == "" || !b.cfg.IsColtFile(path) {
		return
	}
	if err := b.cfg.Editor.Save(view); err != nil {
		b.log.Warn("%v", NewOperationError("autosave", path, err))
		return
	}
	b.log.Debug("autosaved %s", path)
}
