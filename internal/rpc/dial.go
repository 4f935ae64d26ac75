package rpc

import (
	"context"
	"fmt"
	"net"
	"time"
)

// Dial connects to a COLT RPC port and starts the read loop. The returned
// transport owns the connection.
func Dial(ctx context.Context, addr string, opts ...Option) (*Transport, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	t := NewTransport(conn, conn, conn, opts...)
	// The read loop outlives the dial context.
	t.Start(context.WithoutCancel(ctx))
	return t, nil
}

// DialRetry keeps dialing until COLT accepts or ctx expires. A freshly
// launched COLT needs a moment before its port is open.
func DialRetry(ctx context.Context, addr string, interval time.Duration, opts ...Option) (*Transport, error) {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}

	var lastErr error
	for {
		t, err := Dial(ctx, addr, opts...)
		if err == nil {
			return t, nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w (last error: %v)", ctx.Err(), lastErr)
		case <-time.After(interval):
		}
	}
}
