package colt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/dshills/coltlink/internal/rpc"
)

// RPC method names.
const (
	MethodRequestShortCode       = "requestShortCode"
	MethodObtainAuthToken        = "obtainAuthToken"
	MethodStartLive              = "startLive"
	MethodReload                 = "reload"
	MethodClearLog               = "clearLog"
	MethodResetCallCounts        = "resetCallCounts"
	MethodActiveSessions         = "getActiveSessionsCount"
	MethodGetLastLogMessages     = "getLastLogMessages"
	MethodGetLastRuntimeError    = "getLastRuntimeError"
	MethodGetMethodCounts        = "getMethodCounts"
	MethodGetContextForPosition  = "getContextForPosition"
	MethodGetDeclarationPosition = "getDeclarationPosition"
	MethodGetMethodID            = "getMethodId"
	MethodRunMethod              = "runMethod"
	MethodGetCallCount           = "getCallCount"
	MethodEvaluateExpression     = "evaluateExpression"
)

// CodePrompter asks the user for the short code COLT displays during
// authorization.
type CodePrompter interface {
	PromptShortCode(ctx context.Context) (string, error)
}

// CodePrompterFunc adapts a function to CodePrompter.
type CodePrompterFunc func(ctx context.Context) (string, error)

// PromptShortCode implements CodePrompter.
func (f CodePrompterFunc) PromptShortCode(ctx context.Context) (string, error) {
	return f(ctx)
}

// Client is a typed COLT client. It is safe for concurrent use.
type Client struct {
	caller rpc.Caller

	mu    sync.RWMutex
	token string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithToken starts the client with a previously obtained security token.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// NewClient creates a client calling through caller.
func NewClient(caller rpc.Caller, opts ...ClientOption) *Client {
	c := &Client{caller: caller}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the security token, or "" before authorization.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Authorized reports whether a security token is held.
func (c *Client) Authorized() bool {
	return c.Token() != ""
}

// RequestShortCode asks COLT to display a short code for appName.
func (c *Client) RequestShortCode(ctx context.Context, appName string) error {
	return c.caller.Call(ctx, MethodRequestShortCode, []any{appName}, nil)
}

// ObtainAuthToken trades the short code for a security token and keeps it.
func (c *Client) ObtainAuthToken(ctx context.Context, shortCode string) (string, error) {
	var token *string
	if err := c.caller.Call(ctx, MethodObtainAuthToken, []any{shortCode}, &token); err != nil {
		return "", err
	}
	if token == nil || *token == "" {
		return "", fmt.Errorf("%s: %w", MethodObtainAuthToken, rpc.ErrNullResult)
	}

	c.mu.Lock()
	c.token = *token
	c.mu.Unlock()
	return *token, nil
}

// Authorize runs the short-code handshake, asking prompter for the code.
func (c *Client) Authorize(ctx context.Context, appName string, prompter CodePrompter) (string, error) {
	if err := c.RequestShortCode(ctx, appName); err != nil {
		return "", fmt.Errorf("request short code: %w", err)
	}
	code, err := prompter.PromptShortCode(ctx)
	if err != nil {
		return "", err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return "", ErrEmptyShortCode
	}
	return c.ObtainAuthToken(ctx, code)
}

// call invokes method with the security token prepended to args.
func (c *Client) call(ctx context.Context, method string, result any, args ...any) error {
	token := c.Token()
	if token == "" {
		return ErrNotAuthorized
	}
	params := append([]any{token}, args...)
	return c.caller.Call(ctx, method, params, result)
}

// StartLive starts a live session of the connected project.
func (c *Client) StartLive(ctx context.Context) error {
	return c.call(ctx, MethodStartLive, nil)
}

// Reload reloads the live page.
func (c *Client) Reload(ctx context.Context) error {
	return c.call(ctx, MethodReload, nil)
}

// ClearLog clears COLT's log.
func (c *Client) ClearLog(ctx context.Context) error {
	return c.call(ctx, MethodClearLog, nil)
}

// ResetCallCounts zeroes every method call count.
func (c *Client) ResetCallCounts(ctx context.Context) error {
	return c.call(ctx, MethodResetCallCounts, nil)
}

// ActiveSessions returns how many live sessions COLT is running.
func (c *Client) ActiveSessions(ctx context.Context) (int, error) {
	var n *int
	if err := c.call(ctx, MethodActiveSessions, &n); err != nil {
		return 0, err
	}
	if n == nil {
		return 0, nil
	}
	return *n, nil
}

// GetLastLogMessages returns the log lines written since the last call.
// A null result is reported as rpc.ErrNullResult.
func (c *Client) GetLastLogMessages(ctx context.Context) ([]LogMessage, error) {
	var msgs *[]LogMessage
	if err := c.call(ctx, MethodGetLastLogMessages, &msgs); err != nil {
		return nil, err
	}
	if msgs == nil {
		return nil, fmt.Errorf("%s: %w", MethodGetLastLogMessages, rpc.ErrNullResult)
	}
	return *msgs, nil
}

// GetLastRuntimeError returns the last runtime error, or nil when the page
// has none.
func (c *Client) GetLastRuntimeError(ctx context.Context) (*RuntimeError, error) {
	var rerr *RuntimeError
	if err := c.call(ctx, MethodGetLastRuntimeError, &rerr); err != nil {
		return nil, err
	}
	return rerr, nil
}

// GetMethodCounts returns the call count of every instrumented function.
// A null result is reported as rpc.ErrNullResult.
func (c *Client) GetMethodCounts(ctx context.Context) ([]MethodCount, error) {
	var counts *[]MethodCount
	if err := c.call(ctx, MethodGetMethodCounts, &counts); err != nil {
		return nil, err
	}
	if counts == nil {
		return nil, fmt.Errorf("%s: %w", MethodGetMethodCounts, rpc.ErrNullResult)
	}
	return *counts, nil
}

// GetContextForPosition returns completions for the expression ending at
// position. COLT answers with a JSON-encoded array of strings.
func (c *Client) GetContextForPosition(ctx context.Context, filePath string, position int, content string, kind ContextKind) ([]Completion, error) {
	var encoded *string
	if err := c.call(ctx, MethodGetContextForPosition, &encoded, filePath, position, content, string(kind)); err != nil {
		return nil, err
	}
	if encoded == nil {
		return nil, nil
	}
	return ParseCompletions(*encoded)
}

// GetDeclarationPosition returns where the symbol at position is declared,
// or nil when COLT does not know.
func (c *Client) GetDeclarationPosition(ctx context.Context, filePath string, position int, content string) (*Declaration, error) {
	var raw json.RawMessage
	if err := c.call(ctx, MethodGetDeclarationPosition, &raw, filePath, position, content); err != nil {
		return nil, err
	}
	result := gjson.ParseBytes(raw)
	if !result.IsObject() {
		return nil, nil
	}
	filePathResult := result.Get("filePath")
	if !filePathResult.Exists() {
		return nil, nil
	}
	return &Declaration{
		FilePath: filePathResult.String(),
		Position: int(result.Get("position").Int()),
	}, nil
}

// GetMethodID returns the ID of the function at position. Surrounding
// quotes are stripped.
func (c *Client) GetMethodID(ctx context.Context, filePath string, position int, content string) (string, error) {
	var id *string
	if err := c.call(ctx, MethodGetMethodID, &id, filePath, position, content); err != nil {
		return "", err
	}
	if id == nil || *id == "" {
		return "", ErrNoMethodID
	}
	return unquote(*id), nil
}

// RunMethod calls the function with the given ID in the live page.
func (c *Client) RunMethod(ctx context.Context, methodID string) error {
	return c.call(ctx, MethodRunMethod, nil, methodID)
}

// GetCallCount returns the call count of the function at position. The
// boolean is false when COLT has no count for it.
func (c *Client) GetCallCount(ctx context.Context, filePath string, position int, content string) (string, bool, error) {
	var raw json.RawMessage
	if err := c.call(ctx, MethodGetCallCount, &raw, filePath, position, content); err != nil {
		return "", false, err
	}
	return scalar(raw)
}

// EvaluateExpression evaluates expression in the scope at position. The
// boolean is false when the value is unknown.
func (c *Client) EvaluateExpression(ctx context.Context, filePath, expression string, position int, content string) (string, bool, error) {
	var raw json.RawMessage
	if err := c.call(ctx, MethodEvaluateExpression, &raw, filePath, expression, position, content); err != nil {
		return "", false, err
	}
	return scalar(raw)
}

// scalar renders a JSON result as display text.
func scalar(raw json.RawMessage) (string, bool, error) {
	if len(raw) == 0 {
		return "", false, nil
	}
	if !gjson.ValidBytes(raw) {
		return "", false, fmt.Errorf("invalid result %q", raw)
	}
	result := gjson.ParseBytes(raw)
	switch result.Type {
	case gjson.Null:
		return "", false, nil
	case gjson.JSON:
		return result.Raw, true, nil
	default:
		return result.String(), true, nil
	}
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
