package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/coltlink/internal/config"
)

var autosaveCmd = &cobra.Command{
	Use:       "autosave [on|off|toggle]",
	Short:     "Show or change whether COLT files are saved on every edit",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"on", "off", "toggle"},
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		enabled := s.Config().Editor().Autosave
		if len(args) == 1 {
			switch args[0] {
			case "on":
				enabled = true
			case "off":
				enabled = false
			case "toggle":
				enabled = !enabled
			}
			if err := s.Config().SetUserValue(config.KeyEditorAutosave, enabled); err != nil {
				return fmt.Errorf("save autosave setting: %w", err)
			}
		}

		if enabled {
			cmd.Println("Autosave: on")
		} else {
			cmd.Println("Autosave: off")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(autosaveCmd)
}
