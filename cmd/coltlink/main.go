// Package main is the entry point for coltlink, the bridge between an
// editor and COLT live coding sessions.
package main

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	Execute()
}
