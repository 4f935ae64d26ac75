package process

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

var (
	ErrNotRunning  = errors.New("process not running")
	ErrNotFound    = errors.New("process not found")
	ErrDuplicateID = errors.New("process ID in use")
	ErrShutdown    = errors.New("supervisor shut down")
)

// State is the lifecycle stage of a started process.
type State int

const (
	StateRunning State = iota
	StateExited        // exited on its own, any code
	StateKilled        // ended by a signal
)

var stateNames = [...]string{"running", "exited", "killed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("unknown(%d)", int(s))
	}
	return stateNames[s]
}

// Process is a started child, normally COLT.
type Process struct {
	ID      string
	Name    string
	PID     int
	Started time.Time

	cmd      *exec.Cmd
	detached bool
	done     chan struct{}

	mu    sync.Mutex
	state State
	code  int
	err   error
}

// launch starts cmd and reaps it in the background.
func launch(id, name string, cmd *exec.Cmd, detached bool) (*Process, error) {
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", name, err)
	}
	p := &Process{
		ID:       id,
		Name:     name,
		PID:      cmd.Process.Pid,
		Started:  time.Now(),
		cmd:      cmd,
		detached: detached,
		done:     make(chan struct{}),
		code:     -1,
	}
	go p.reap()
	return p, nil
}

func (p *Process) reap() {
	err := p.cmd.Wait()

	state, code := StateExited, 0
	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		code = exitErr.ExitCode()
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			state = StateKilled
		}
	case err != nil:
		code = -1
	}

	p.mu.Lock()
	p.state, p.code, p.err = state, code, err
	p.mu.Unlock()
	close(p.done)
}

func (p *Process) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Process) IsRunning() bool { return p.State() == StateRunning }

// ExitCode is -1 while the process runs or when it was killed.
func (p *Process) ExitCode() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.code
}

// Err is the error returned by waiting on the process: nil for a clean
// exit.
func (p *Process) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Done is closed once the process has been reaped.
func (p *Process) Done() <-chan struct{} { return p.done }

// Detached reports whether the process was started with StartDetached.
func (p *Process) Detached() bool { return p.detached }

// Uptime is the time since start. It keeps growing after exit.
func (p *Process) Uptime() time.Duration { return time.Since(p.Started) }

func (p *Process) Signal(sig os.Signal) error {
	if !p.IsRunning() {
		return ErrNotRunning
	}
	return p.cmd.Process.Signal(sig)
}

// Terminate sends SIGTERM.
func (p *Process) Terminate() error { return p.Signal(syscall.SIGTERM) }

// Kill sends SIGKILL.
func (p *Process) Kill() error { return p.Signal(syscall.SIGKILL) }
