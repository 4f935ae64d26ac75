// Package colt is the typed client for a running COLT process.
//
// COLT exposes its live-coding runtime over JSON-RPC. Client wraps the raw
// calls: the short-code authorization handshake, live session control, and
// the inspection calls (logs, runtime errors, call counts, completions,
// declarations, expression values). Every call after authorization carries
// the security token as its first parameter.
//
// SessionTracker follows the live sessions COLT reports through
// notifications, and Launcher starts the COLT executable and connects to it.
package colt
