package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/charts"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/logging"
)

var (
	reportDir  string
	reportTop  int
	reportOpen bool
)

var reportCmd = &cobra.Command{
	Use:   "report [pick...]",
	Short: "Render HTML charts of the active patterns",
	Long: `Render an interactive HTML chart of the highest-support pick patterns.
When picks are given, a second chart shows every candidate hero the matching
patterns voted for.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.MkdirAll(reportDir, 0o755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}

		return withApp(cmd.Context(), appOptions{}, func(app *application) error {
			catalog, err := app.facades.Hero.GetCatalog(cmd.Context())
			if err != nil {
				logging.Warn().Err(err).Msg("Charting without hero names")
				catalog = app.services.Recommender.Catalog().Load()
			}

			set := app.patterns.Load()
			if set.Len() == 0 {
				return fmt.Errorf("no patterns loaded; run refresh first")
			}

			written := []string{}
			patternPath := filepath.Join(reportDir, "patterns.html")
			if err := charts.RenderPatternSupportChart(set, catalog, reportTop, patternPath); err != nil {
				return err
			}
			written = append(written, patternPath)

			if len(args) > 0 {
				tally, err := app.facades.Draft.Tally(cmd.Context(), args)
				if err != nil {
					return err
				}
				if len(tally) == 0 {
					cmd.Println("No pattern extends this draft; skipping candidate chart.")
				} else {
					candidatePath := filepath.Join(reportDir, "candidates.html")
					if err := charts.RenderCandidateChart(tally, catalog, candidatePath); err != nil {
						return err
					}
					written = append(written, candidatePath)
				}
			}

			for _, path := range written {
				cmd.Printf("Wrote %s\n", path)
				if reportOpen {
					if err := charts.OpenInBrowser(path); err != nil {
						logging.Warn().Err(err).Str("path", path).Msg("Could not open browser")
					}
				}
			}
			return nil
		})
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportDir, "out", "reports", "directory for the HTML files")
	reportCmd.Flags().IntVar(&reportTop, "top", charts.DefaultTopPatterns, "number of patterns to chart")
	reportCmd.Flags().BoolVar(&reportOpen, "open", false, "open the charts in the default browser")
	rootCmd.AddCommand(reportCmd)
}
