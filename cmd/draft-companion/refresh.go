package main

import (
	"github.com/spf13/cobra"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/display"
)

var (
	refreshOffline    bool
	refreshFromCSV    string
	refreshMatches    int
	refreshMinSupport float64
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch recent matches and mine new pick patterns",
	Long: `Fetch the pick order of recent public matches from OpenDota, mine
sequential pick patterns from them and make the result the active pattern set.

With --offline, previously stored matches are mined instead. With --from-csv,
the matches come from a CSV written by [opendota] write_csv. A failed fetch or
mining run leaves an empty pattern set; suggestions then use hero similarity.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Flags().Changed("matches") {
			cfg.OpenDota.MatchCount = refreshMatches
		}
		if cmd.Flags().Changed("min-support") {
			cfg.Mining.MinSupport = refreshMinSupport
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		return withApp(cmd.Context(), appOptions{offline: refreshOffline, csvPath: refreshFromCSV}, func(app *application) error {
			report, err := app.facades.Pattern.RefreshPatterns(cmd.Context())
			if err != nil {
				return err
			}
			display.NewDisplayer(cmd.OutOrStdout()).DisplayRefreshReport(*report)
			return nil
		})
	},
}

func init() {
	refreshCmd.Flags().BoolVar(&refreshOffline, "offline", false, "mine stored matches without contacting OpenDota")
	refreshCmd.Flags().StringVar(&refreshFromCSV, "from-csv", "", "mine matches from a match_id,hero_pick_sequence CSV file")
	refreshCmd.MarkFlagsMutuallyExclusive("offline", "from-csv")
	refreshCmd.Flags().IntVar(&refreshMatches, "matches", 0, "number of recent matches to mine (default from config)")
	refreshCmd.Flags().Float64Var(&refreshMinSupport, "min-support", 0, "minimum pattern support fraction (default from config)")
	rootCmd.AddCommand(refreshCmd)
}
