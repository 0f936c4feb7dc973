package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/api"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/logging"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API and WebSocket event server",
	Long: `Serve recommendations, hero search and pattern management over HTTP.
Refresh progress and pattern reloads are pushed to WebSocket clients on /ws.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		return withApp(ctx, appOptions{}, func(app *application) error {
			apiCfg := &api.Config{
				Port:           cfg.API.Port,
				AllowedOrigins: cfg.API.AllowedOrigins,
			}
			if cmd.Flags().Changed("port") {
				apiCfg.Port = servePort
			}

			server := api.NewServer(apiCfg, app.services, app.facades)
			if err := server.Start(); err != nil {
				return err
			}
			app.watchPatterns(ctx)

			cmd.Printf("API server running at http://localhost:%d (Ctrl+C to stop)\n", server.Port())
			<-ctx.Done()

			logging.Info().Msg("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "API server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
