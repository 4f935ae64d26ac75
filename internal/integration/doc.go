// Package integration holds the pieces that tie coltlink to its host: the
// idle timer that turns bursts of editor events into periodic probes, and
// (in the process subpackage) supervision of the COLT process itself.
//
// # Idle Timer
//
// Editor callbacks (modification, selection change, activation) call
// IdleTimer.Notify. Once the editor has been quiet for the idle delay
// (800ms by default) the idle callback runs, then the timer re-arms so the
// probe repeats while the host stays open:
//
//	idle := integration.NewIdleTimer(loop, 800*time.Millisecond, func() {
//		poller.OnIdle(ctx)
//		counts.Refresh(ctx)
//	})
//	idle.Notify()
//
// # Threading
//
// The timer assumes a single-threaded host. The Scheduler it is given must
// run callbacks on the same goroutine that calls Notify; app.Loop does.
package integration
