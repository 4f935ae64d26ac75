package process

import (
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Supervisor starts child processes, tracks them until they exit and stops
// the attached ones on Shutdown. It is safe for concurrent use.
type Supervisor struct {
	output io.Writer
	onExit func(*Process)

	mu     sync.Mutex
	procs  map[string]*Process
	closed bool
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithOutput sends the stdout and stderr of attached children to w.
// Without it their output is discarded.
func WithOutput(w io.Writer) Option {
	return func(s *Supervisor) { s.output = w }
}

// WithExitHandler calls fn from a background goroutine after each child
// exits. A panic in fn is swallowed.
func WithExitHandler(fn func(*Process)) Option {
	return func(s *Supervisor) { s.onExit = fn }
}

func NewSupervisor(opts ...Option) *Supervisor {
	s := &Supervisor{output: io.Discard, procs: make(map[string]*Process)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start starts an attached child under a fresh uuid.
func (s *Supervisor) Start(name string, cmd *exec.Cmd) (*Process, error) {
	return s.start(uuid.NewString(), name, cmd, false)
}

// StartWithID is Start with a caller-chosen ID.
func (s *Supervisor) StartWithID(id, name string, cmd *exec.Cmd) (*Process, error) {
	return s.start(id, name, cmd, false)
}

// StartDetached starts cmd in its own process group with no output pipes
// unless cmd sets them. Shutdown leaves it running, so a COLT launched by
// a one-shot command outlives coltlink.
func (s *Supervisor) StartDetached(name string, cmd *exec.Cmd) (*Process, error) {
	detach(cmd)
	return s.start(uuid.NewString(), name, cmd, true)
}

func (s *Supervisor) start(id, name string, cmd *exec.Cmd, detached bool) (*Process, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.closed:
		return nil, ErrShutdown
	case s.procs[id] != nil:
		return nil, ErrDuplicateID
	}

	if !detached {
		if cmd.Stdout == nil {
			cmd.Stdout = s.output
		}
		if cmd.Stderr == nil {
			cmd.Stderr = s.output
		}
	}

	p, err := launch(id, name, cmd, detached)
	if err != nil {
		return nil, err
	}
	s.procs[id] = p
	go s.untrackOnExit(p)
	return p, nil
}

func (s *Supervisor) untrackOnExit(p *Process) {
	<-p.Done()
	if s.onExit != nil {
		func() {
			defer func() { _ = recover() }()
			s.onExit(p)
		}()
	}
	s.mu.Lock()
	delete(s.procs, p.ID)
	s.mu.Unlock()
}

// Get returns the tracked process with the given ID, or nil.
func (s *Supervisor) Get(id string) *Process {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.procs[id]
}

// Running returns a running process named name, or nil.
func (s *Supervisor) Running(name string) *Process {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.procs {
		if p.Name == name && p.IsRunning() {
			return p
		}
	}
	return nil
}

// Count returns the number of tracked processes.
func (s *Supervisor) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.procs)
}

// Terminate sends SIGTERM to the process with the given ID. A process that
// already exited is not an error.
func (s *Supervisor) Terminate(id string) error {
	p := s.Get(id)
	if p == nil {
		return ErrNotFound
	}
	if err := p.Terminate(); err != nil && err != ErrNotRunning {
		return err
	}
	return nil
}

// Shutdown refuses new starts, sends SIGTERM to every attached process and
// SIGKILL to those still alive after timeout. It returns once they are
// reaped and untracked. Detached processes keep running. Later calls are
// no-ops.
func (s *Supervisor) Shutdown(timeout time.Duration) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	var attached []*Process
	for _, p := range s.procs {
		if !p.detached {
			attached = append(attached, p)
		}
	}
	s.mu.Unlock()

	for _, p := range attached {
		_ = p.Terminate()
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for _, p := range attached {
		select {
		case <-p.Done():
		case <-deadline.C:
			for _, q := range attached {
				_ = q.Kill()
			}
			<-p.Done()
		}
	}

	// Done closes just before untrackOnExit removes the entry.
	for _, p := range attached {
		for s.Get(p.ID) != nil {
			time.Sleep(time.Millisecond)
		}
	}
}

// IsShuttingDown reports whether Shutdown has been called.
func (s *Supervisor) IsShuttingDown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
