package app

import (
	"sync"
	"testing"
	"time"
)

func TestMetrics_Idle(t *testing.T) {
	m := NewMetrics()
	if s := m.Snapshot(); s.IdleCycles != 0 || s.AvgIdle != 0 {
		t.Errorf("fresh snapshot = %+v", s)
	}

	m.RecordIdle(10 * time.Millisecond)
	m.RecordIdle(30 * time.Millisecond)
	m.RecordIdle(20 * time.Millisecond)

	s := m.Snapshot()
	if s.IdleCycles != 3 {
		t.Errorf("IdleCycles = %d", s.IdleCycles)
	}
	if s.AvgIdle != 20*time.Millisecond {
		t.Errorf("AvgIdle = %v", s.AvgIdle)
	}
	if s.MaxIdle != 30*time.Millisecond {
		t.Errorf("MaxIdle = %v", s.MaxIdle)
	}
}

func TestMetrics_Concurrent(t *testing.T) {
	m := NewMetrics()
	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(d time.Duration) {
			defer wg.Done()
			m.RecordIdle(d)
			m.RecordTask()
		}(time.Duration(i) * time.Millisecond)
	}
	wg.Wait()

	s := m.Snapshot()
	if s.IdleCycles != 50 || s.Tasks != 50 {
		t.Errorf("snapshot = %+v", s)
	}
	if s.MaxIdle != 50*time.Millisecond {
		t.Errorf("MaxIdle = %v, want 50ms", s.MaxIdle)
	}
}
