package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/coltlink/internal/app"
	"github.com/dshills/coltlink/internal/colt"
	"github.com/dshills/coltlink/internal/config"
)

// shutdownTimeout bounds how long watch waits for COLT to stop.
const shutdownTimeout = 5 * time.Second

var (
	configDir  string
	projectDir string
	logLevel   string
)

// dialer replaces the launcher's connect when set.
var dialer app.Dialer

var rootCmd = &cobra.Command{
	Use:           "coltlink",
	Short:         "Drive COLT live coding sessions from the terminal",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("coltlink %s (commit %s, built %s)\n", version, commit, date))

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configDir, "config-dir", "", "user configuration directory")
	pf.StringVar(&projectDir, "project-dir", "", "directory searched for "+config.ProjectConfigFile)
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// session is an application plus the reader shared by the short-code
// prompt and the host command stream.
type session struct {
	*app.Application
	in *bufio.Reader
}

// newSession builds the application from the persistent flags.
func newSession(cmd *cobra.Command) (*session, error) {
	in := bufio.NewReader(cmd.InOrStdin())
	a, err := app.New(app.Options{
		UserConfigDir: configDir,
		ProjectDir:    projectDir,
		LogLevel:      logLevel,
		LogOutput:     cmd.ErrOrStderr(),
		Output:        cmd.OutOrStdout(),
		Prompter:      newLinePrompter(in, cmd.ErrOrStderr()),
		Dial:          dialer,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize: %w", err)
	}
	return &session{Application: a, in: in}, nil
}

// withClient connects to COLT and runs fn. When live is set fn only runs
// while a live session is active.
func withClient(cmd *cobra.Command, live bool, fn func(ctx context.Context, s *session, c *colt.Client) error) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	c, err := s.Connect(ctx)
	if err != nil {
		return err
	}
	if live {
		if c, err = s.RequireSession(); err != nil {
			return err
		}
	}
	return fn(ctx, s, c)
}
