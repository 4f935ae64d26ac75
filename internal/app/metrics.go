package app

import (
	"sync/atomic"
	"time"
)

// Metrics tracks the live bridge's idle cycles and loop work.
type Metrics struct {
	idleCount   atomic.Uint64
	idleTotalNs atomic.Int64
	idleMaxNs   atomic.Int64

	taskCount  atomic.Uint64
	panicCount atomic.Uint64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordIdle records the duration of one poll-and-refresh cycle.
func (m *Metrics) RecordIdle(duration time.Duration) {
	ns := duration.Nanoseconds()
	m.idleCount.Add(1)
	m.idleTotalNs.Add(ns)

	for {
		old := m.idleMaxNs.Load()
		if ns <= old || m.idleMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordTask records one task executed on the loop.
func (m *Metrics) RecordTask() {
	m.taskCount.Add(1)
}

// RecordPanic records a panic recovered on the loop.
func (m *Metrics) RecordPanic() {
	m.panicCount.Add(1)
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	IdleCycles uint64
	AvgIdle    time.Duration
	MaxIdle    time.Duration
	Tasks      uint64
	Panics     uint64
	Uptime     time.Duration
}

// Snapshot returns the current values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		IdleCycles: m.idleCount.Load(),
		MaxIdle:    time.Duration(m.idleMaxNs.Load()),
		Tasks:      m.taskCount.Load(),
		Panics:     m.panicCount.Load(),
		Uptime:     time.Since(m.startTime),
	}
	if s.IdleCycles > 0 {
		s.AvgIdle = time.Duration(m.idleTotalNs.Load() / int64(s.IdleCycles))
	}
	return s
}
