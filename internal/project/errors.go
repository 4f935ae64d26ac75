package project

import (
	"errors"
	"fmt"
)

// Standard errors returned by the project package.
var (
	// ErrProjectNotFound indicates no working-set project matches.
	ErrProjectNotFound = errors.New("project not found")

	// ErrNoProjectFile indicates neither the caller nor the main document
	// named a COLT project file.
	ErrNoProjectFile = errors.New("no COLT project file")
)

// PathError represents an error associated with a file path.
type PathError struct {
	Op   string // Operation that failed (read, parse, write)
	Path string // File path
	Err  error  // Underlying error
}

// Error implements the error interface.
func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *PathError) Unwrap() error {
	return e.Err
}

// NewPathError creates a new PathError.
func NewPathError(op, path string, err error) *PathError {
	return &PathError{Op: op, Path: path, Err: err}
}

// IsNotFound returns true if the error indicates no project matched.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProjectNotFound)
}
