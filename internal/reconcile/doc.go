// Package reconcile turns what COLT reports into editor annotations.
//
// On every idle tick the Poller reads the new log messages and the last
// runtime error, and keeps one error annotation per file and position.
// Annotations of files that are not open stay pending until a view of the
// file appears. Counts redraws the call-count markers from scratch, giving
// way to errors on the same row, and StatusProjector mirrors the error
// under the caret into the status bar.
//
// All types here are driven from the single event loop and share one
// State.
package reconcile
