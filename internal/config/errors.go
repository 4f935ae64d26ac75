package config

import (
	"errors"
	"fmt"
)

var (
	// ErrSettingNotFound is returned for a key coltlink does not know.
	ErrSettingNotFound = errors.New("unknown setting")

	// ErrTypeMismatch matches every *TypeError.
	ErrTypeMismatch = errors.New("type mismatch")
)

// TypeError records a setting whose value cannot be used. The default is
// used in its place and the error is reported by ConfigErrors.
type TypeError struct {
	Path     string
	Expected string
	Value    any
}

func (e *TypeError) Error() string {
	got := fmt.Sprintf("%T", e.Value)
	if s, ok := e.Value.(string); ok && e.Expected != "string" {
		got = fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%s: want %s, got %s", e.Path, e.Expected, got)
}

func (e *TypeError) Is(target error) bool {
	return target == ErrTypeMismatch
}
