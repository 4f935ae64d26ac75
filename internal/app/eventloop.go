package app

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/dshills/coltlink/internal/integration"
)

// DefaultQueueSize is the number of posted tasks buffered before Post blocks.
const DefaultQueueSize = 256

// Loop is the single goroutine that owns the editor and the annotation
// state. Other goroutines hand it work with Post; timers scheduled through
// AfterFunc fire on it as well, so Loop is the integration.Scheduler for the
// idle timer.
type Loop struct {
	tasks   chan func()
	done    chan struct{}
	stop    sync.Once
	now     func() time.Time
	onPanic func(error)
	metrics *Metrics
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithQueueSize sets the task buffer size.
func WithQueueSize(n int) LoopOption {
	return func(l *Loop) {
		l.tasks = make(chan func(), n)
	}
}

// WithPanicHandler receives panics recovered from posted work. The loop
// keeps running after a panic.
func WithPanicHandler(fn func(error)) LoopOption {
	return func(l *Loop) {
		l.onPanic = fn
	}
}

// WithMetrics records executed tasks and recovered panics in m.
func WithMetrics(m *Metrics) LoopOption {
	return func(l *Loop) {
		l.metrics = m
	}
}

// WithLoopClock overrides the clock reported by Now.
func WithLoopClock(now func() time.Time) LoopOption {
	return func(l *Loop) {
		l.now = now
	}
}

// NewLoop creates a loop. Work posted before Run is queued.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		tasks:   make(chan func(), DefaultQueueSize),
		done:    make(chan struct{}),
		now:     time.Now,
		onPanic: func(error) {},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Now implements integration.Scheduler.
func (l *Loop) Now() time.Time {
	return l.now()
}

// AfterFunc implements integration.Scheduler. fn runs on the loop.
func (l *Loop) AfterFunc(d time.Duration, fn func()) integration.Timer {
	return time.AfterFunc(d, func() { l.Post(fn) })
}

// Post queues fn to run on the loop. Work posted after the loop stopped is
// dropped.
func (l *Loop) Post(fn func()) {
	select {
	case <-l.done:
		return
	default:
	}
	select {
	case l.tasks <- fn:
	case <-l.done:
	}
}

// Call runs fn on the loop and waits for it to finish.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	select {
	case l.tasks <- func() { defer close(finished); fn() }:
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes posted work until ctx is done. A loop runs once.
func (l *Loop) Run(ctx context.Context) error {
	defer l.stop.Do(func() { close(l.done) })

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-l.tasks:
			l.exec(fn)
		}
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if l.metrics != nil {
				l.metrics.RecordPanic()
			}
			l.onPanic(NewRecoveredPanicError(r, string(debug.Stack())))
		}
	}()
	if l.metrics != nil {
		l.metrics.RecordTask()
	}
	fn()
}
