package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/coltlink/internal/colt"
	"github.com/dshills/coltlink/internal/project"
)

// errNotHTML is returned when open or run is given anything but the main
// HTML document of a project.
var errNotHTML = errors.New("not an HTML file; pass the project's main HTML document")

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Launch COLT",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		p, err := s.StartColt(project.Project{})
		if err != nil {
			return err
		}
		cmd.Printf("COLT started (pid %d)\n", p.PID)
		return nil
	},
}

var (
	projectFile string
	attach      bool
)

var openCmd = &cobra.Command{
	Use:   "open <main.html>",
	Short: "Register a project, open it in COLT and authorize",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return openProject(cmd, args[0], false)
	},
}

var runCmd = &cobra.Command{
	Use:   "run <main.html>",
	Short: "Open a project in COLT and start a live session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return openProject(cmd, args[0], true)
	},
}

func init() {
	for _, c := range []*cobra.Command{openCmd, runCmd} {
		c.Flags().StringVarP(&projectFile, "project", "p", "", "COLT project file (overridden by a colt:project meta tag)")
		c.Flags().BoolVar(&attach, "attach", false, "connect to a running COLT instead of launching it")
	}
	rootCmd.AddCommand(startCmd, openCmd, runCmd)
}

// openProject registers the project of mainDocument, launches COLT on it
// unless attaching, then connects and authorizes. With live set it also
// starts a live session.
func openProject(cmd *cobra.Command, mainDocument string, live bool) error {
	if !project.IsHTML(mainDocument) {
		return fmt.Errorf("%s: %w", mainDocument, errNotHTML)
	}
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	p, err := s.RegisterProject(mainDocument, projectFile)
	if err != nil {
		return err
	}
	cmd.Printf("Project %s (root %s)\n", p.Name, p.Root)

	if !attach {
		if _, err := s.StartColt(p); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	c, err := s.Connect(ctx)
	if err != nil {
		return err
	}
	cmd.Println("Connected to COLT")

	if !live {
		return nil
	}
	if err := c.StartLive(ctx); err != nil {
		return fmt.Errorf("%s: %w", colt.MethodStartLive, err)
	}
	cmd.Println("Live session started")
	return nil
}
