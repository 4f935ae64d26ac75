package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dshills/coltlink/internal/colt"
	"github.com/dshills/coltlink/internal/reconcile"
)

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Reload the live page",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, true, func(ctx context.Context, _ *session, c *colt.Client) error {
			return c.Reload(ctx)
		})
	},
}

var clearLogCmd = &cobra.Command{
	Use:   "clear-log",
	Short: "Clear the COLT log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, true, func(ctx context.Context, _ *session, c *colt.Client) error {
			return c.ClearLog(ctx)
		})
	},
}

var resetCountsCmd = &cobra.Command{
	Use:   "reset-counts",
	Short: "Reset every function call count",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, true, func(ctx context.Context, _ *session, c *colt.Client) error {
			if err := c.ResetCallCounts(ctx); err != nil {
				return err
			}
			return printCounts(ctx, cmd, c)
		})
	},
}

var countsCmd = &cobra.Command{
	Use:   "counts",
	Short: "Print the call count of every called function",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, true, func(ctx context.Context, _ *session, c *colt.Client) error {
			return printCounts(ctx, cmd, c)
		})
	},
}

func init() {
	rootCmd.AddCommand(reloadCmd, clearLogCmd, resetCountsCmd, countsCmd)
}

// printCounts lists called functions by file and position.
func printCounts(ctx context.Context, cmd *cobra.Command, c *colt.Client) error {
	counts, err := c.GetMethodCounts(ctx)
	if err != nil {
		return fmt.Errorf("read method counts: %w", err)
	}
	sort.SliceStable(counts, func(i, j int) bool {
		if counts[i].FilePath != counts[j].FilePath {
			return counts[i].FilePath < counts[j].FilePath
		}
		return counts[i].Position < counts[j].Position
	})

	lines := newLineCache()
	for _, mc := range counts {
		if mc.Count <= 0 {
			continue
		}
		cmd.Printf("%s:%d\t%s\n", mc.FilePath, lines.line(mc.FilePath, mc.Position), reconcile.CountLabel(mc.Count))
	}
	return nil
}
