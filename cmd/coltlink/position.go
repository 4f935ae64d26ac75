package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dshills/coltlink/internal/colt"
	"github.com/dshills/coltlink/internal/editor"
	"github.com/dshills/coltlink/internal/project"
)

// errNotColtFile is returned for files outside every working-set project.
var errNotColtFile = errors.New("not a file of a COLT project")

// target is the file and caret a position command works on.
type target struct {
	path    string
	content []byte
	offset  int
}

// word returns the word touching the caret.
func (t target) word() string {
	start, end := editor.WordAt(t.content, t.offset)
	return string(t.content[start:end])
}

// wordEnd is the position COLT expects for the symbol under the caret.
func (t target) wordEnd() int {
	_, end := editor.WordAt(t.content, t.offset)
	return end
}

// parseTarget reads FILE OFFSET arguments.
func parseTarget(args []string) (target, error) {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return target{}, err
	}
	offset, err := strconv.Atoi(args[1])
	if err != nil || offset < 0 {
		return target{}, fmt.Errorf("invalid offset %q", args[1])
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return target{}, err
	}
	if offset > len(content) {
		return target{}, fmt.Errorf("offset %d past end of %s (%d bytes)", offset, path, len(content))
	}
	return target{path: path, content: content, offset: offset}, nil
}

// withTarget connects, requires a live session and a COLT file, then runs
// fn on the target.
func withTarget(cmd *cobra.Command, args []string, fn func(ctx context.Context, c *colt.Client, t target) error) error {
	t, err := parseTarget(args)
	if err != nil {
		return err
	}
	return withClient(cmd, true, func(ctx context.Context, s *session, c *colt.Client) error {
		if !project.IsColtFile(s.WorkingSet(), t.path) {
			return fmt.Errorf("%s: %w", t.path, errNotColtFile)
		}
		return fn(ctx, c, t)
	})
}

var runFunctionCmd = &cobra.Command{
	Use:   "run-function FILE OFFSET",
	Short: "Call the function under the caret in the live page",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTarget(cmd, args, func(ctx context.Context, c *colt.Client, t target) error {
			id, err := c.GetMethodID(ctx, t.path, t.wordEnd(), string(t.content))
			if err != nil {
				return err
			}
			if err := c.RunMethod(ctx, id); err != nil {
				return err
			}
			return printCounts(ctx, cmd, c)
		})
	},
}

var callCountCmd = &cobra.Command{
	Use:   "call-count FILE OFFSET",
	Short: "Print how often the function under the caret was called",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTarget(cmd, args, func(ctx context.Context, c *colt.Client, t target) error {
			count, ok, err := c.GetCallCount(ctx, t.path, t.wordEnd(), string(t.content))
			if err != nil {
				return err
			}
			if !ok {
				cmd.Println("Call count is not available")
				return nil
			}
			cmd.Println("Call count: " + count)
			return nil
		})
	},
}

var evalCmd = &cobra.Command{
	Use:   "eval FILE OFFSET [EXPR]",
	Short: "Evaluate an expression in the scope of the caret",
	Long: "Evaluate an expression in the scope of the caret. Without EXPR the\n" +
		"word under the caret is evaluated.",
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTarget(cmd, args[:2], func(ctx context.Context, c *colt.Client, t target) error {
			expr := t.word()
			if len(args) == 3 {
				expr = args[2]
			}
			value, ok, err := c.EvaluateExpression(ctx, t.path, expr, t.wordEnd(), string(t.content))
			if err != nil {
				return err
			}
			if !ok {
				cmd.Println(t.word() + " value: unknown")
				return nil
			}
			cmd.Println(value)
			return nil
		})
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete FILE OFFSET",
	Short: "List COLT completions for the property access at the caret",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTarget(cmd, args, func(ctx context.Context, c *colt.Client, t target) error {
			pos, ok := colt.CompletionPosition(t.content, t.offset)
			if !ok {
				return nil
			}
			items, err := c.GetContextForPosition(ctx, t.path, pos, string(t.content), colt.ContextProperties)
			if err != nil {
				return err
			}
			for _, item := range items {
				cmd.Println(item.Label())
			}
			return nil
		})
	},
}

var declarationCmd = &cobra.Command{
	Use:   "declaration FILE OFFSET",
	Short: "Print where the symbol under the caret is declared",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTarget(cmd, args, func(ctx context.Context, c *colt.Client, t target) error {
			decl, err := c.GetDeclarationPosition(ctx, t.path, t.wordEnd(), string(t.content))
			if err != nil {
				return err
			}
			if decl == nil {
				cmd.Println("Declaration not found")
				return nil
			}
			cmd.Printf("%s:%d\t%d\n", decl.FilePath, newLineCache().line(decl.FilePath, decl.Position), decl.Position)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(runFunctionCmd, callCountCmd, evalCmd, completeCmd, declarationCmd)
}

// lineCache maps byte offsets to 1-based line numbers, reading each file
// once.
type lineCache map[string][]byte

func newLineCache() lineCache {
	return make(lineCache)
}

// line returns the line of position in path, or 0 when the file cannot be
// read.
func (lc lineCache) line(path string, position int) int {
	content, ok := lc[path]
	if !ok {
		data, err := os.ReadFile(path)
		if err != nil {
			data = nil
		}
		lc[path] = data
		content = data
	}
	if content == nil {
		return 0
	}
	return editor.RowAt(content, position) + 1
}
