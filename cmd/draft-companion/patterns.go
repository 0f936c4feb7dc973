package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/display"
)

var patternsLimit int

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Inspect, import and export the active pattern set",
}

var patternsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the highest-support patterns",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), appOptions{}, func(app *application) error {
			// Names need the catalog; a failed load still lists raw ids.
			_, _ = app.facades.Hero.GetCatalog(cmd.Context())

			list, err := app.facades.Pattern.ListPatterns(cmd.Context(), patternsLimit)
			if err != nil {
				return err
			}
			display.NewDisplayer(cmd.OutOrStdout()).DisplayPatterns(list)
			return nil
		})
	},
}

var patternsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the active set with an SPMF pattern file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), appOptions{}, func(app *application) error {
			set, err := app.services.Refresh.Import(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			cmd.Printf("Imported %d patterns from %s\n", set.Len(), args[0])
			return nil
		})
	},
}

var patternsExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the active set as an SPMF pattern file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), appOptions{}, func(app *application) error {
			n, err := app.services.Refresh.Export(args[0])
			if err != nil {
				return fmt.Errorf("exporting patterns: %w", err)
			}
			cmd.Printf("Exported %d patterns to %s\n", n, args[0])
			return nil
		})
	},
}

func init() {
	patternsListCmd.Flags().IntVar(&patternsLimit, "limit", 20, "maximum number of patterns to list")
	patternsCmd.AddCommand(patternsListCmd, patternsImportCmd, patternsExportCmd)
	rootCmd.AddCommand(patternsCmd)
}
