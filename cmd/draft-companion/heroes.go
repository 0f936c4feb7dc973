package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/display"
)

var heroesLimit int

var heroesCmd = &cobra.Command{
	Use:   "heroes",
	Short: "Look up heroes in the catalog",
}

var heroesSearchCmd = &cobra.Command{
	Use:   "search <name>",
	Short: "Fuzzy-search heroes by name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), appOptions{}, func(app *application) error {
			results, err := app.facades.Hero.SearchHeroes(cmd.Context(), strings.Join(args, " "), heroesLimit)
			if err != nil {
				return err
			}
			display.NewDisplayer(cmd.OutOrStdout()).DisplayHeroSearch(results)
			return nil
		})
	},
}

var heroesRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Reload hero data from OpenDota",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), appOptions{}, func(app *application) error {
			n, err := app.facades.Hero.RefreshHeroes(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Printf("Loaded %d heroes\n", n)
			return nil
		})
	},
}

func init() {
	heroesSearchCmd.Flags().IntVar(&heroesLimit, "limit", 10, "maximum number of results")
	heroesCmd.AddCommand(heroesSearchCmd, heroesRefreshCmd)
	rootCmd.AddCommand(heroesCmd)
}
