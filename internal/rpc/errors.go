package rpc

import (
	"errors"
	"fmt"
)

// Standard errors returned by the transport.
var (
	// ErrShutdown indicates the transport has been closed.
	ErrShutdown = errors.New("rpc transport shut down")

	// ErrTimeout indicates a call did not complete within the call timeout.
	ErrTimeout = errors.New("rpc call timed out")

	// ErrMissingContentLength indicates a frame without a usable Content-Length header.
	ErrMissingContentLength = errors.New("missing Content-Length header")

	// ErrNullResult indicates the remote answered with a null result where a value was required.
	ErrNullResult = errors.New("null result")
)

// RPCError represents a JSON-RPC error returned by COLT.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("rpc error %d: %s (data: %v)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Standard JSON-RPC error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603

	// CodeUnauthorized is what COLT answers when the security token is missing or stale.
	CodeUnauthorized = -32001
)

// IsUnauthorized reports whether err is a COLT authorization failure.
func IsUnauthorized(err error) bool {
	var rpcErr *RPCError
	return errors.As(err, &rpcErr) && rpcErr.Code == CodeUnauthorized
}
