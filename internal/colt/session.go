package colt

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/dshills/coltlink/internal/rpc"
)

// Notifications COLT sends when a live session starts or ends.
const (
	NotifySessionStarted = "colt.sessionStarted"
	NotifySessionEnded   = "colt.sessionEnded"
)

// Session is a snapshot of the live session state.
type Session struct {
	Active    bool
	StartTime time.Time
}

// Age returns how long the session has been running at now. An inactive
// session has no age.
func (s Session) Age(now time.Time) time.Duration {
	if !s.Active {
		return 0
	}
	return now.Sub(s.StartTime)
}

// Notifier registers notification handlers. *rpc.Transport implements it.
type Notifier interface {
	OnNotification(method string, handler rpc.NotificationHandler)
}

// SessionTracker counts the live sessions COLT reports. It is safe for
// concurrent use.
type SessionTracker struct {
	mu       sync.Mutex
	active   int
	start    time.Time
	now      func() time.Time
	onChange func(Session)
}

// SessionOption configures a SessionTracker.
type SessionOption func(*SessionTracker)

// WithClock overrides the tracker's time source.
func WithClock(now func() time.Time) SessionOption {
	return func(t *SessionTracker) {
		t.now = now
	}
}

// WithSessionChange sets a callback run after every transition between
// active and inactive. It runs outside the tracker's lock.
func WithSessionChange(fn func(Session)) SessionOption {
	return func(t *SessionTracker) {
		t.onChange = fn
	}
}

// NewSessionTracker creates a tracker with no active sessions.
func NewSessionTracker(opts ...SessionOption) *SessionTracker {
	t := &SessionTracker{now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Attach subscribes the tracker to session notifications.
func (t *SessionTracker) Attach(n Notifier) {
	n.OnNotification(NotifySessionStarted, func(string, json.RawMessage) {
		t.Started()
	})
	n.OnNotification(NotifySessionEnded, func(string, json.RawMessage) {
		t.Ended()
	})
}

// Sync sets the active count from COLT directly, for clients that connect
// while sessions are already running.
func (t *SessionTracker) Sync(ctx context.Context, c *Client) error {
	n, err := c.ActiveSessions(ctx)
	if err != nil {
		return err
	}
	t.set(n)
	return nil
}

// Started records a new live session.
func (t *SessionTracker) Started() {
	t.mu.Lock()
	t.active++
	changed := t.active == 1
	if changed {
		t.start = t.now()
	}
	s := t.snapshot()
	t.mu.Unlock()

	if changed {
		t.notify(s)
	}
}

// Ended records the end of a live session.
func (t *SessionTracker) Ended() {
	t.mu.Lock()
	if t.active == 0 {
		t.mu.Unlock()
		return
	}
	t.active--
	changed := t.active == 0
	s := t.snapshot()
	t.mu.Unlock()

	if changed {
		t.notify(s)
	}
}

// Reset drops every session, as on disconnect or reload.
func (t *SessionTracker) Reset() {
	t.set(0)
}

func (t *SessionTracker) set(n int) {
	if n < 0 {
		n = 0
	}
	t.mu.Lock()
	was := t.active > 0
	t.active = n
	if !was && n > 0 {
		t.start = t.now()
	}
	changed := was != (n > 0)
	s := t.snapshot()
	t.mu.Unlock()

	if changed {
		t.notify(s)
	}
}

// snapshot must be called with mu held.
func (t *SessionTracker) snapshot() Session {
	if t.active == 0 {
		return Session{}
	}
	return Session{Active: true, StartTime: t.start}
}

func (t *SessionTracker) notify(s Session) {
	if t.onChange != nil {
		t.onChange(s)
	}
}

// Session returns the current session state.
func (t *SessionTracker) Session() Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot()
}

// HasActiveSessions reports whether any live session is running.
func (t *SessionTracker) HasActiveSessions() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active > 0
}

// ActiveSessions returns the number of live sessions.
func (t *SessionTracker) ActiveSessions() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}
