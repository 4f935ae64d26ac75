package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/dshills/coltlink/internal/colt"
	"github.com/dshills/coltlink/internal/config"
	"github.com/dshills/coltlink/internal/project"
)

const tokenConfig = "[colt]\ntoken = \"tok\"\n"

func TestStart_PathValidation(t *testing.T) {
	tests := []struct {
		name   string
		config string
		want   error
	}{
		{"not specified", "", colt.ErrPathNotSpecified},
		{"invalid", "[colt]\npath = \"/nonexistent/colt\"\n", colt.ErrPathInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.config)
			_, err := executeCommand(rootCmd, f.args("start")...)
			if !errors.Is(err, tt.want) {
				t.Errorf("start error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestOpen_RejectsNonHTML(t *testing.T) {
	f := newFixture(t, tokenConfig)
	_, err := executeCommand(rootCmd, f.args("open", f.project, "--attach")...)
	if !errors.Is(err, errNotHTML) {
		t.Errorf("open error = %v, want errNotHTML", err)
	}
}

func TestOpen_LaunchValidatesPath(t *testing.T) {
	f := newFixture(t, tokenConfig)
	_, err := executeCommand(rootCmd, f.args("open", f.main, "--project", f.project)...)
	if !errors.Is(err, colt.ErrPathNotSpecified) {
		t.Errorf("open error = %v, want ErrPathNotSpecified", err)
	}
}

func TestOpen_AuthorizesFromStdin(t *testing.T) {
	f := newFixture(t, "")

	out, err := executeCommandWithInput(rootCmd, "1234\n",
		f.args("open", f.main, "--project", f.project, "--attach")...)
	if err != nil {
		t.Fatalf("open error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Enter the short code") {
		t.Errorf("no prompt in output: %q", out)
	}
	if p := f.colt.lastParams(colt.MethodObtainAuthToken); len(p) != 1 || p[0] != "1234" {
		t.Errorf("obtainAuthToken params = %v", p)
	}

	cfg, err := config.Load(config.WithUserConfigDir(f.configDir))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Colt().Token != "tok" {
		t.Errorf("persisted token = %q", cfg.Colt().Token)
	}
	ws, err := project.LoadWorkingSet(cfg.Project().WorkingSet)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ws.Find(filepath.Join(f.root, "app.js")); !ok {
		t.Error("project missing from working set")
	}
}

func TestOpen_NoShortCode(t *testing.T) {
	f := newFixture(t, "")
	_, err := executeCommand(rootCmd, f.args("open", f.main, "--project", f.project, "--attach")...)
	if err == nil {
		t.Fatal("open without a short code succeeded")
	}
	if f.colt.called(colt.MethodObtainAuthToken) {
		t.Error("obtainAuthToken called without a code")
	}
}

func TestRun_StartsLive(t *testing.T) {
	f := newFixture(t, tokenConfig)
	out, err := executeCommand(rootCmd, f.args("run", f.main, "--project", f.project, "--attach")...)
	if err != nil {
		t.Fatalf("run error = %v\n%s", err, out)
	}
	if !f.colt.called(colt.MethodStartLive) {
		t.Error("startLive not called")
	}
	if !strings.Contains(out, "Live session started") {
		t.Errorf("output = %q", out)
	}
}

func TestSessionCommands_NoSession(t *testing.T) {
	for _, name := range []string{"reload", "clear-log", "reset-counts", "counts"} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, tokenConfig)
			f.colt.set(colt.MethodActiveSessions, `0`)

			_, err := executeCommand(rootCmd, f.args(name)...)
			if !errors.Is(err, colt.ErrNoSession) {
				t.Fatalf("%s error = %v, want ErrNoSession", name, err)
			}
			if err.Error() != "no active COLT session" {
				t.Errorf("message = %q", err.Error())
			}
		})
	}
}

func TestSessionCommands_CallCOLT(t *testing.T) {
	tests := map[string]string{
		"reload":       colt.MethodReload,
		"clear-log":    colt.MethodClearLog,
		"reset-counts": colt.MethodResetCallCounts,
	}
	for name, method := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, tokenConfig)
			if _, err := executeCommand(rootCmd, f.args(name)...); err != nil {
				t.Fatalf("%s error = %v", name, err)
			}
			p := f.colt.lastParams(method)
			if !f.colt.called(method) || len(p) == 0 || p[0] != "tok" {
				t.Errorf("%s params = %v", method, p)
			}
		})
	}
}

func TestCounts(t *testing.T) {
	f := newFixture(t, tokenConfig)
	js := filepath.Join(f.root, "app.js")
	writeFile(t, js, "function a() {}\nfunction b() {}\nfunction c() {}\n")
	f.colt.set(colt.MethodGetMethodCounts, fmt.Sprintf(
		`[{"count":12,"position":32,"filePath":%q},{"count":0,"position":16,"filePath":%q},{"count":2,"position":0,"filePath":%q}]`,
		js, js, js))

	out, err := executeCommand(rootCmd, f.args("counts")...)
	if err != nil {
		t.Fatalf("counts error = %v", err)
	}
	want := js + ":1\t2\n" + js + ":3\tmany\n"
	if !strings.HasSuffix(out, want) {
		t.Errorf("output = %q, want suffix %q", out, want)
	}
}

func TestPositionCommands(t *testing.T) {
	const src = "var total = sum(1, 2);\ntotal.toFi\n"

	tests := []struct {
		name   string
		args   func(js string) []string
		setup  func(c *fakeColt)
		want   string
		method string
		check  func(t *testing.T, params []any)
	}{
		{
			name:   "call count",
			args:   func(js string) []string { return []string{"call-count", js, "13"} },
			want:   "Call count: 3",
			method: colt.MethodGetCallCount,
			check: func(t *testing.T, p []any) {
				// The caret sits inside "sum"; COLT gets the word end.
				if p[2] != 15 {
					t.Errorf("position = %v, want 15", p[2])
				}
			},
		},
		{
			name:  "call count unknown",
			args:  func(js string) []string { return []string{"call-count", js, "13"} },
			setup: func(c *fakeColt) { c.set(colt.MethodGetCallCount, `null`) },
			want:  "Call count is not available",
		},
		{
			name:   "eval word",
			args:   func(js string) []string { return []string{"eval", js, "6"} },
			want:   "total value: unknown",
			method: colt.MethodEvaluateExpression,
			check: func(t *testing.T, p []any) {
				if p[2] != "total" || p[3] != 9 {
					t.Errorf("params = %v", p)
				}
			},
		},
		{
			name:   "eval expression",
			args:   func(js string) []string { return []string{"eval", js, "6", "total * 2"} },
			setup:  func(c *fakeColt) { c.set(colt.MethodEvaluateExpression, `6`) },
			want:   "6",
			method: colt.MethodEvaluateExpression,
			check: func(t *testing.T, p []any) {
				if p[2] != "total * 2" {
					t.Errorf("expression = %v", p[2])
				}
			},
		},
		{
			name:   "run function",
			args:   func(js string) []string { return []string{"run-function", js, "13"} },
			method: colt.MethodRunMethod,
			check: func(t *testing.T, p []any) {
				if p[1] != "m1" {
					t.Errorf("method id = %v, want unquoted m1", p[1])
				}
			},
		},
		{
			name:   "complete",
			args:   func(js string) []string { return []string{"complete", js, "33"} },
			setup:  func(c *fakeColt) { c.set(colt.MethodGetContextForPosition, `"[\"toFixed(digits)\",\"length\"]"`) },
			want:   "toFixed\ttoFixed(digits)[COLT]",
			method: colt.MethodGetContextForPosition,
			check: func(t *testing.T, p []any) {
				if p[2] != 28 || p[4] != string(colt.ContextProperties) {
					t.Errorf("params = %v", p)
				}
			},
		},
		{
			name: "declaration",
			args: func(js string) []string { return []string{"declaration", js, "23"} },
			setup: func(c *fakeColt) {
				c.set(colt.MethodGetDeclarationPosition, `{"filePath":"/nowhere/lib.js","position":4}`)
			},
			want: "/nowhere/lib.js:0\t4",
		},
		{
			name:  "declaration not found",
			args:  func(js string) []string { return []string{"declaration", js, "23"} },
			setup: func(c *fakeColt) { c.set(colt.MethodGetDeclarationPosition, `null`) },
			want:  "Declaration not found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tokenConfig)
			f.open(t)
			js := filepath.Join(f.root, "app.js")
			writeFile(t, js, src)
			if tt.setup != nil {
				tt.setup(f.colt)
			}

			out, err := executeCommand(rootCmd, f.args(tt.args(js)...)...)
			if err != nil {
				t.Fatalf("error = %v\n%s", err, out)
			}
			if tt.want != "" && !strings.Contains(out, tt.want) {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
			if tt.method != "" {
				p := f.colt.lastParams(tt.method)
				if p == nil {
					t.Fatalf("%s not called", tt.method)
				}
				if tt.check != nil {
					tt.check(t, p)
				}
			}
		})
	}
}

func TestPositionCommands_Validation(t *testing.T) {
	f := newFixture(t, tokenConfig)
	f.open(t)
	outside := filepath.Join(t.TempDir(), "other.js")
	writeFile(t, outside, "foo()")
	inside := filepath.Join(f.root, "app.js")
	writeFile(t, inside, "foo()")

	if _, err := executeCommand(rootCmd, f.args("call-count", outside, "1")...); !errors.Is(err, errNotColtFile) {
		t.Errorf("outside project error = %v, want errNotColtFile", err)
	}
	if _, err := executeCommand(rootCmd, f.args("call-count", inside, "x")...); err == nil {
		t.Error("non-numeric offset accepted")
	}
	if _, err := executeCommand(rootCmd, f.args("call-count", inside, "99")...); err == nil {
		t.Error("offset past the end accepted")
	}

	f.colt.set(colt.MethodActiveSessions, `0`)
	if _, err := executeCommand(rootCmd, f.args("call-count", inside, "1")...); !errors.Is(err, colt.ErrNoSession) {
		t.Errorf("no session error = %v", err)
	}
}

func TestAutosave(t *testing.T) {
	f := newFixture(t, "")

	steps := []struct {
		args []string
		want string
	}{
		{nil, "Autosave: off"},
		{[]string{"on"}, "Autosave: on"},
		{nil, "Autosave: on"},
		{[]string{"toggle"}, "Autosave: off"},
		{[]string{"toggle"}, "Autosave: on"},
		{[]string{"off"}, "Autosave: off"},
	}
	for _, step := range steps {
		out, err := executeCommand(rootCmd, f.args(append([]string{"autosave"}, step.args...)...)...)
		if err != nil {
			t.Fatalf("autosave %v error = %v", step.args, err)
		}
		if strings.TrimSpace(out) != step.want {
			t.Errorf("autosave %v = %q, want %q", step.args, out, step.want)
		}
	}

	if _, err := executeCommand(rootCmd, f.args("autosave", "sometimes")...); err == nil {
		t.Error("invalid argument accepted")
	}
}

func TestLinePrompter(t *testing.T) {
	var out strings.Builder
	p := newLinePrompter(bufioReader(" 42 \nnext\n"), &out)

	code, err := p.PromptShortCode(context.Background())
	if err != nil || code != "42" {
		t.Errorf("PromptShortCode() = %q, %v", code, err)
	}
	code, err = p.PromptShortCode(context.Background())
	if err != nil || code != "next" {
		t.Errorf("second PromptShortCode() = %q, %v", code, err)
	}
	if _, err := p.PromptShortCode(context.Background()); err == nil {
		t.Error("PromptShortCode() at EOF returned no error")
	}
	if strings.Count(out.String(), "short code") != 3 {
		t.Errorf("prompt output = %q", out.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	blocked := newLinePrompter(bufioReader(""), &out)
	if _, err := blocked.PromptShortCode(ctx); err == nil {
		t.Error("canceled PromptShortCode() returned no error")
	}
}

func TestLineCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.js")
	if err := os.WriteFile(path, []byte("a();\nb();\nc();"), 0o644); err != nil {
		t.Fatal(err)
	}
	lc := newLineCache()
	tests := map[int]int{-1: 1, 0: 1, 5: 2, 10: 3, 500: 3}
	for pos, want := range tests {
		if got := lc.line(path, pos); got != want {
			t.Errorf("line(%d) = %d, want %d", pos, got, want)
		}
	}
	if got := lc.line(filepath.Join(t.TempDir(), "missing.js"), 3); got != 0 {
		t.Errorf("line(missing) = %d, want 0", got)
	}
}

func TestTarget_WordEnd(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		content := rapid.StringOfN(rapid.SampledFrom([]rune("ab_$1 .(\n")), 0, 40, -1).Draw(rt, "content")
		offset := rapid.IntRange(0, len(content)).Draw(rt, "offset")
		tg := target{content: []byte(content), offset: offset}

		end := tg.wordEnd()
		if end < offset || end > len(content) {
			rt.Fatalf("wordEnd() = %d for offset %d", end, offset)
		}
		if w := tg.word(); strings.ContainsAny(w, " .(\n") {
			rt.Fatalf("word() = %q spans a separator", w)
		}
	})
}
