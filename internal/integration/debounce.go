package integration

import "time"

// DefaultIdleDelay is the quiet period after the last editor event before
// the idle callback runs.
const DefaultIdleDelay = 800 * time.Millisecond

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Scheduler posts deferred work onto the host's single event queue.
//
// Callbacks passed to AfterFunc must run on the same goroutine that calls
// IdleTimer methods; app.Loop provides that guarantee.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// IdleTimer coalesces bursts of editor events into a single idle signal.
//
// Every Notify pushes the deadline to now+delay. One scheduled task chases
// the deadline: when it wakes early it reschedules itself for the remainder,
// when it wakes at or after the deadline it fires the idle callback. After
// firing the timer re-arms, so idle probes repeat for as long as the host
// runs.
//
// IdleTimer is not safe for concurrent use. All calls, and all scheduler
// callbacks, must happen on the host event loop.
type IdleTimer struct {
	sched  Scheduler
	delay  time.Duration
	onIdle func()

	pending  int
	deadline time.Time
	timer    Timer
	stopped  bool
	fired    uint64
	rearm    bool
}

// IdleOption configures an IdleTimer.
type IdleOption func(*IdleTimer)

// WithoutRearm turns the repeating probe into a one-shot per burst.
func WithoutRearm() IdleOption {
	return func(t *IdleTimer) {
		t.rearm = false
	}
}

// NewIdleTimer creates an idle timer. A non-positive delay uses DefaultIdleDelay.
func NewIdleTimer(sched Scheduler, delay time.Duration, onIdle func(), opts ...IdleOption) *IdleTimer {
	if delay <= 0 {
		delay = DefaultIdleDelay
	}
	t := &IdleTimer{
		sched:  sched,
		delay:  delay,
		onIdle: onIdle,
		rearm:  true,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Notify records an editor event and pushes the idle deadline out.
func (t *IdleTimer) Notify() {
	if t.stopped {
		return
	}

	t.pending++
	t.deadline = t.sched.Now().Add(t.delay)

	if t.timer == nil {
		t.timer = t.sched.AfterFunc(t.delay, t.tick)
	}
}

func (t *IdleTimer) tick() {
	t.timer = nil
	if t.stopped {
		return
	}

	now := t.sched.Now()
	if now.Before(t.deadline) {
		t.timer = t.sched.AfterFunc(t.deadline.Sub(now), t.tick)
		return
	}

	t.pending = 0
	t.fired++
	if t.onIdle != nil {
		t.onIdle()
	}

	if t.rearm {
		t.Notify()
	}
}

// Pending returns the number of events folded into the upcoming firing.
func (t *IdleTimer) Pending() int {
	return t.pending
}

// Fired returns how many times the idle callback has run.
func (t *IdleTimer) Fired() uint64 {
	return t.fired
}

// Deadline returns when the next idle firing is due. The zero time means
// nothing is scheduled.
func (t *IdleTimer) Deadline() time.Time {
	if t.timer == nil {
		return time.Time{}
	}
	return t.deadline
}

// Stop cancels the scheduled probe. Later Notify calls are ignored.
func (t *IdleTimer) Stop() {
	t.stopped = true
	t.pending = 0
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// Stopped reports whether Stop has been called.
func (t *IdleTimer) Stopped() bool {
	return t.stopped
}
