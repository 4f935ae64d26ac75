package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"

	"github.com/dshills/coltlink/internal/app"
	"github.com/dshills/coltlink/internal/colt"
	"github.com/dshills/coltlink/internal/config"
	"github.com/dshills/coltlink/internal/rpc"
)

func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	return executeCommandWithInput(root, "", args...)
}

func executeCommandWithInput(root *cobra.Command, input string, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader(input))
	root.SetArgs(args)
	_, err = root.ExecuteC()
	return buf.String(), err
}

// resetFlags clears flag values left over from an earlier execution.
func resetFlags(t *testing.T) {
	t.Helper()
	configDir, projectDir, logLevel = "", "", ""
	projectFile, attach = "", false
	t.Cleanup(func() { dialer = nil })
}

// fakeColt is an in-memory COLT. Every dial returns a fresh connection so
// one command closing its connection does not affect the next.
type fakeColt struct {
	mu      sync.Mutex
	token   string
	results map[string]string
	params  map[string][]any
	calls   []string
}

func newFakeColt(token string) *fakeColt {
	return &fakeColt{
		token: token,
		results: map[string]string{
			colt.MethodObtainAuthToken:    `"` + token + `"`,
			colt.MethodActiveSessions:     `1`,
			colt.MethodGetMethodCounts:    `[]`,
			colt.MethodGetMethodID:        `"\"m1\""`,
			colt.MethodGetCallCount:       `3`,
			colt.MethodEvaluateExpression: `null`,
		},
		params: make(map[string][]any),
	}
}

func (f *fakeColt) dial(ctx context.Context) (app.Conn, error) {
	return &fakeConn{colt: f, done: make(chan struct{})}, nil
}

func (f *fakeColt) set(method, result string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[method] = result
}

func (f *fakeColt) called(method string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.calls {
		if m == method {
			return true
		}
	}
	return false
}

func (f *fakeColt) lastParams(method string) []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.params[method]
}

func (f *fakeColt) call(method string, params any, result any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, method)
	p, _ := params.([]any)
	f.params[method] = p
	if method != colt.MethodRequestShortCode && method != colt.MethodObtainAuthToken {
		if len(p) == 0 || p[0] != f.token {
			return &rpc.RPCError{Code: rpc.CodeUnauthorized, Message: "bad token"}
		}
	}
	raw, ok := f.results[method]
	if !ok || result == nil {
		return nil
	}
	return json.Unmarshal([]byte(raw), result)
}

type fakeConn struct {
	colt      *fakeColt
	done      chan struct{}
	closeOnce sync.Once
}

func (c *fakeConn) Call(ctx context.Context, method string, params any, result any) error {
	return c.colt.call(method, params, result)
}

func (c *fakeConn) Notify(ctx context.Context, method string, params any) error {
	return nil
}

func (c *fakeConn) OnNotification(method string, handler rpc.NotificationHandler) {}

func (c *fakeConn) Done() <-chan struct{} { return c.done }

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

// fixture is a config directory plus a COLT project on disk.
type fixture struct {
	colt      *fakeColt
	configDir string
	root      string
	main      string
	project   string
}

func newFixture(t *testing.T, userConfig string) *fixture {
	t.Helper()
	resetFlags(t)

	f := &fixture{
		colt:      newFakeColt("tok"),
		configDir: t.TempDir(),
		root:      t.TempDir(),
	}
	dialer = f.colt.dial

	if userConfig != "" {
		writeFile(t, filepath.Join(f.configDir, config.UserConfigFile), userConfig)
	}
	f.main = filepath.Join(f.root, "index.html")
	f.project = filepath.Join(f.root, "site.colt")
	writeFile(t, f.main, "<html><script src=\"app.js\"></script></html>")
	writeFile(t, f.project, "<xml/>")
	return f
}

// args prefixes the fixture's config directory.
func (f *fixture) args(args ...string) []string {
	return append([]string{"--config-dir", f.configDir}, args...)
}

// open registers the fixture project without launching COLT.
func (f *fixture) open(t *testing.T) {
	t.Helper()
	out, err := executeCommand(rootCmd, f.args("open", f.main, "--project", f.project, "--attach")...)
	if err != nil {
		t.Fatalf("open error = %v\n%s", err, out)
	}
	attach, projectFile = false, ""
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func bufioReader(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}
