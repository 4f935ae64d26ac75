package colt

import "errors"

var (
	// ErrNotAuthorized is returned when a call needs a security token and
	// none has been obtained.
	ErrNotAuthorized = errors.New("not authorized with COLT")

	// ErrNoSession is returned by operations that need a running live session.
	ErrNoSession = errors.New("no active COLT session")

	// ErrNoMethodID is returned when COLT cannot resolve a function ID.
	ErrNoMethodID = errors.New("can't figure out the function ID")

	// ErrPathNotSpecified is returned when the COLT executable path is unset.
	ErrPathNotSpecified = errors.New("COLT path is not specified")

	// ErrPathInvalid is returned when the COLT executable path does not exist.
	ErrPathInvalid = errors.New("COLT path specified is invalid")

	// ErrEmptyShortCode is returned when the user enters no short code.
	ErrEmptyShortCode = errors.New("empty short code")
)
