package colt

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/dshills/coltlink/internal/integration/process"
	"github.com/dshills/coltlink/internal/rpc"
)

// ProcessName is the supervisor name of the COLT process.
const ProcessName = "colt"

// ValidatePath checks that path names an existing COLT executable.
func ValidatePath(path string) error {
	if path == "" {
		return ErrPathNotSpecified
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s", ErrPathInvalid, path)
	}
	return nil
}

// LauncherConfig configures a Launcher.
type LauncherConfig struct {
	// Path is the COLT executable.
	Path string
	// Address is COLT's RPC host:port.
	Address string
	// ConnectTimeout bounds how long Connect keeps retrying.
	ConnectTimeout time.Duration
	// RetryInterval is the pause between dial attempts.
	RetryInterval time.Duration
	// RequestTimeout bounds every RPC call.
	RequestTimeout time.Duration
}

// Launcher starts COLT under a process supervisor and connects to it.
type Launcher struct {
	cfg LauncherConfig
	sup *process.Supervisor
}

// NewLauncher creates a launcher.
func NewLauncher(cfg LauncherConfig, sup *process.Supervisor) *Launcher {
	return &Launcher{cfg: cfg, sup: sup}
}

// Start launches COLT with the given arguments, typically a project file.
// An already running COLT is returned as is.
func (l *Launcher) Start(args ...string) (*process.Process, error) {
	if p := l.sup.Running(ProcessName); p != nil {
		return p, nil
	}
	if err := ValidatePath(l.cfg.Path); err != nil {
		return nil, err
	}

	cmd := exec.Command(l.cfg.Path, args...)
	p, err := l.sup.StartDetached(ProcessName, cmd)
	if err != nil {
		return nil, fmt.Errorf("start COLT: %w", err)
	}
	return p, nil
}

// Connect dials COLT, retrying until its port accepts or the connect
// timeout expires.
func (l *Launcher) Connect(ctx context.Context) (*rpc.Transport, error) {
	if l.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.cfg.ConnectTimeout)
		defer cancel()
	}

	var opts []rpc.Option
	if l.cfg.RequestTimeout > 0 {
		opts = append(opts, rpc.WithCallTimeout(l.cfg.RequestTimeout))
	}

	t, err := rpc.DialRetry(ctx, l.cfg.Address, l.cfg.RetryInterval, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to COLT at %s: %w", l.cfg.Address, err)
	}
	return t, nil
}
