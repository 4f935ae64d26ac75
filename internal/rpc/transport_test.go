package rpc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"testing"
	"time"
)

// fakeServer answers requests read from conn using handle.
func fakeServer(t *testing.T, conn net.Conn, handle func(req Request) *Response) {
	t.Helper()
	go func() {
		r := bufio.NewReader(conn)
		for {
			body, err := ReadFrame(r)
			if err != nil {
				return
			}
			var req Request
			if err := json.Unmarshal(body, &req); err != nil {
				return
			}
			resp := handle(req)
			if resp == nil {
				continue
			}
			resp.JSONRPC = "2.0"
			resp.ID = req.ID
			if err := WriteFrame(conn, resp); err != nil {
				return
			}
		}
	}()
}

func newPipeTransport(t *testing.T, opts ...Option) (*Transport, net.Conn) {
	t.Helper()
	client, server := net.Pipe()
	tr := NewTransport(client, client, client, opts...)
	tr.Start(context.Background())
	t.Cleanup(func() {
		tr.Close()
		server.Close()
	})
	return tr, server
}

func TestReadFrame(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{
			name:  "simple",
			input: "Content-Length: 2\r\n\r\n{}",
			want:  "{}",
		},
		{
			name:  "case insensitive with extra header",
			input: "content-length: 4\r\nContent-Type: application/json\r\n\r\nnull",
			want:  "null",
		},
		{
			name:  "leading blank lines",
			input: "\r\n\r\nContent-Length: 2\r\n\r\n[]",
			want:  "[]",
		},
		{
			name:    "zero length",
			input:   "Content-Length: 0\r\n\r\n",
			wantErr: ErrMissingContentLength,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadFrame(bufio.NewReader(strings.NewReader(tt.input)))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ReadFrame() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadFrame() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("ReadFrame() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteFrame(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, map[string]int{"a": 1}); err != nil {
		t.Fatalf("WriteFrame() error = %v", err)
	}
	want := "Content-Length: 7\r\n\r\n{\"a\":1}"
	if buf.String() != want {
		t.Errorf("WriteFrame() = %q, want %q", buf.String(), want)
	}
}

func TestTransport_Call(t *testing.T) {
	tr, server := newPipeTransport(t)
	fakeServer(t, server, func(req Request) *Response {
		if req.Method != "getMethodCounts" {
			return &Response{Error: &RPCError{Code: CodeMethodNotFound, Message: "no such method"}}
		}
		return &Response{Result: json.RawMessage(`[{"count":3,"position":10,"filePath":"/a.js"}]`)}
	})

	var result []struct {
		Count    int    `json:"count"`
		Position int    `json:"position"`
		FilePath string `json:"filePath"`
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := tr.Call(ctx, "getMethodCounts", []any{"token"}, &result); err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if len(result) != 1 || result[0].Count != 3 || result[0].FilePath != "/a.js" {
		t.Errorf("Call() result = %+v", result)
	}
}

func TestTransport_CallError(t *testing.T) {
	tr, server := newPipeTransport(t)
	fakeServer(t, server, func(req Request) *Response {
		return &Response{Error: &RPCError{Code: CodeUnauthorized, Message: "bad token"}}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := tr.Call(ctx, "reload", []any{"stale"}, nil)
	if err == nil {
		t.Fatal("Call() expected error")
	}
	if !IsUnauthorized(err) {
		t.Errorf("IsUnauthorized(%v) = false, want true", err)
	}
}

func TestTransport_CallNullResult(t *testing.T) {
	tr, server := newPipeTransport(t)
	fakeServer(t, server, func(req Request) *Response {
		return &Response{Result: json.RawMessage(`null`)}
	})

	result := []string{"stale"}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := tr.Call(ctx, "getLastLogMessages", nil, &result); err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if result != nil {
		t.Errorf("result = %v, want nil", result)
	}
}

func TestTransport_CallTimeout(t *testing.T) {
	tr, server := newPipeTransport(t, WithCallTimeout(50*time.Millisecond))
	// Server reads but never answers.
	fakeServer(t, server, func(req Request) *Response { return nil })

	err := tr.Call(context.Background(), "getLastRuntimeError", nil, nil)
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Call() error = %v, want ErrTimeout", err)
	}
}

func TestTransport_Notification(t *testing.T) {
	tr, server := newPipeTransport(t)

	got := make(chan string, 1)
	tr.OnNotification("colt.sessionStarted", func(method string, params json.RawMessage) {
		got <- method + " " + string(params)
	})

	go func() {
		_ = WriteFrame(server, map[string]any{
			"jsonrpc": "2.0",
			"method":  "colt.sessionStarted",
			"params":  []int{1},
		})
	}()

	select {
	case s := <-got:
		if s != "colt.sessionStarted [1]" {
			t.Errorf("notification = %q", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("notification not delivered")
	}
}

func TestTransport_WildcardNotification(t *testing.T) {
	tr, server := newPipeTransport(t)

	got := make(chan string, 1)
	tr.OnNotification("*", func(method string, params json.RawMessage) {
		got <- method
	})

	go func() {
		_ = WriteFrame(server, map[string]any{"jsonrpc": "2.0", "method": "colt.log"})
	}()

	select {
	case m := <-got:
		if m != "colt.log" {
			t.Errorf("method = %q, want colt.log", m)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("wildcard handler not called")
	}
}

func TestTransport_NotificationOrder(t *testing.T) {
	tr, server := newPipeTransport(t)

	const n = 50
	got := make(chan int, n)
	tr.OnNotification("*", func(method string, params json.RawMessage) {
		var seq []int
		_ = json.Unmarshal(params, &seq)
		got <- seq[0]
	})

	go func() {
		for i := 0; i < n; i++ {
			_ = WriteFrame(server, map[string]any{"jsonrpc": "2.0", "method": "colt.seq", "params": []int{i}})
		}
	}()

	for want := 0; want < n; want++ {
		select {
		case seq := <-got:
			if seq != want {
				t.Fatalf("notification %d handled at position %d", seq, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("notification %d not delivered", want)
		}
	}
}

func TestTransport_CloseUnblocksCall(t *testing.T) {
	tr, server := newPipeTransport(t)
	fakeServer(t, server, func(req Request) *Response { return nil })

	errCh := make(chan error, 1)
	go func() {
		errCh <- tr.Call(context.Background(), "startLive", nil, nil)
	}()

	time.Sleep(20 * time.Millisecond)
	tr.Close()

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrShutdown) {
			t.Errorf("Call() error = %v, want ErrShutdown", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Call did not return after Close")
	}

	if err := tr.Call(context.Background(), "reload", nil, nil); !errors.Is(err, ErrShutdown) {
		t.Errorf("Call() after close error = %v, want ErrShutdown", err)
	}
}

func TestTransport_RemoteHangup(t *testing.T) {
	tr, server := newPipeTransport(t)
	server.Close()

	select {
	case <-tr.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("transport not closed after remote hangup")
	}
	if !tr.IsClosed() {
		t.Error("IsClosed() = false after hangup")
	}
}

func TestRPCError(t *testing.T) {
	err := &RPCError{Code: CodeInternalError, Message: "boom"}
	if err.Error() != "rpc error -32603: boom" {
		t.Errorf("Error() = %q", err.Error())
	}
	withData := &RPCError{Code: 1, Message: "x", Data: "y"}
	if withData.Error() != "rpc error 1: x (data: y)" {
		t.Errorf("Error() = %q", withData.Error())
	}
	if IsUnauthorized(err) {
		t.Error("IsUnauthorized() = true for internal error")
	}
}
