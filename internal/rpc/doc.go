// Package rpc implements the JSON-RPC 2.0 connection to a COLT process.
//
// Messages are framed the way the LSP base protocol frames them: a
// Content-Length header, a blank line, then the JSON body. The same
// Transport works over a TCP connection to COLT's RPC port or over the
// stdio pipes of a COLT process started by the supervisor.
//
// # Calls
//
// Call blocks until the matching response arrives, the context is done,
// the per-call timeout elapses, or the transport is closed:
//
//	conn, err := rpc.Dial(ctx, "127.0.0.1:8092", rpc.WithCallTimeout(5*time.Second))
//	if err != nil {
//	    return err
//	}
//	defer conn.Close()
//
//	var messages []colt.LogMessage
//	err = conn.Call(ctx, "getLastLogMessages", []any{token}, &messages)
//
// # Notifications
//
// COLT pushes session lifecycle notifications. Handlers registered with
// OnNotification run on their own goroutine so they never block the read
// loop; handlers that touch editor state must hand the work to the event
// loop themselves.
package rpc
