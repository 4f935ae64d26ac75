package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the live bridge, reading editor events from stdin",
	Long: "Run the live bridge. Editor events are read from stdin, one per line:\n\n" +
		"  open PATH\n" +
		"  close PATH\n" +
		"  activate PATH\n" +
		"  modified PATH\n" +
		"  select PATH OFFSET\n\n" +
		"Errors, log messages and call counts reported by COLT are printed as\n" +
		"they change. Files of working-set projects are also watched on disk.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer s.Shutdown(shutdownTimeout)

		if _, err := s.Connect(ctx); err != nil {
			return err
		}
		err = s.Run(ctx, s.in)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
