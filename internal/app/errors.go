// Package app wires the coltlink components together and runs the live
// bridge on a single event loop.
package app

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyRunning  = errors.New("bridge already running")
	ErrNotConnected    = errors.New("not connected to COLT")
	ErrLoopStopped     = errors.New("event loop stopped")
	ErrShutdownTimeout = errors.New("shutdown timed out")
)

// OperationError is a failed editor-side operation such as an autosave.
// Target is usually a file path and may be empty.
type OperationError struct {
	Op     string
	Target string
	Err    error
}

func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{Op: op, Target: target, Err: err}
}

func (e *OperationError) Error() string {
	if e.Target == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// ComponentError is a failure inside one of the application's components
// ("colt", "config", "project"), reported as "component: action: err".
type ComponentError struct {
	Component string
	Action    string
	Err       error
}

func NewComponentError(component, action string, err error) *ComponentError {
	return &ComponentError{Component: component, Action: action, Err: err}
}

func (e *ComponentError) Error() string {
	msg := e.Component
	if e.Action != "" {
		msg += ": " + e.Action
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ComponentError) Unwrap() error { return e.Err }

// RecoveredPanicError is a panic caught on the event loop.
type RecoveredPanicError struct {
	Value any
	Stack string
}

func NewRecoveredPanicError(value any, stack string) *RecoveredPanicError {
	return &RecoveredPanicError{Value: value, Stack: stack}
}

func (e *RecoveredPanicError) Error() string {
	if e.Stack == "" {
		return fmt.Sprintf("panic on event loop: %v", e.Value)
	}
	return fmt.Sprintf("panic on event loop: %v\n%s", e.Value, e.Stack)
}

// ErrorList gathers the errors of a multi-step teardown. errors.Is and
// errors.As see every entry.
type ErrorList struct {
	errs []error
}

func NewErrorList() *ErrorList { return &ErrorList{} }

// Add ignores nil.
func (l *ErrorList) Add(err error) {
	if err != nil {
		l.errs = append(l.errs, err)
	}
}

func (l *ErrorList) Len() int { return len(l.errs) }

func (l *ErrorList) Error() string {
	switch len(l.errs) {
	case 0:
		return ""
	case 1:
		return l.errs[0].Error()
	}
	return fmt.Sprintf("%d errors: first: %v", len(l.errs), l.errs[0])
}

func (l *ErrorList) Unwrap() []error { return l.errs }

// AsError returns nil for an empty list.
func (l *ErrorList) AsError() error {
	if len(l.errs) == 0 {
		return nil
	}
	return l
}
