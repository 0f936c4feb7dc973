package main

import (
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/display"
)

var (
	recommendJSON  bool
	recommendTally bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <pick> <pick> [pick] [pick]",
	Short: "Suggest the next hero for a draft",
	Long: `Suggest the next hero given the heroes picked so far, in pick order.

Picks may be hero ids or names ("Anti-Mage", "antimage" and "1" all work).
Unknown names are passed through as raw ids.`,
	Example: `  draft-companion recommend "Anti-Mage" Axe
  draft-companion recommend 1 2 14 --tally`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), appOptions{}, func(app *application) error {
			resp, err := app.facades.Draft.Recommend(cmd.Context(), args)
			if err != nil {
				return err
			}

			if recommendJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(resp)
			}

			out := display.NewDisplayer(cmd.OutOrStdout())
			out.DisplayRecommendation(resp)

			if recommendTally {
				tally, err := app.facades.Draft.Tally(cmd.Context(), args)
				if err != nil {
					return err
				}
				cmd.Println()
				out.DisplayTally(tally, app.services.Recommender.Catalog().Load())
			}
			return nil
		})
	},
}

func init() {
	recommendCmd.Flags().BoolVar(&recommendJSON, "json", false, "print the response as JSON")
	recommendCmd.Flags().BoolVar(&recommendTally, "tally", false, "also list every candidate with its pattern votes")
	rootCmd.AddCommand(recommendCmd)
}
