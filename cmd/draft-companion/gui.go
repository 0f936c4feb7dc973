package main

import (
	"github.com/spf13/cobra"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/gui"
)

var guiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Open the desktop draft picker",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), appOptions{}, func(app *application) error {
			app.watchPatterns(cmd.Context())
			gui.NewApp(app.services).Run()
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(guiCmd)
}
