package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/config"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/logging"
)

var (
	configPath string
	debug      bool

	// cfg is loaded once by the root command before any subcommand runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "draft-companion",
	Short: "Dota 2 draft companion - next-pick hero suggestions",
	Long: `Dota Draft Companion suggests the next hero to pick from the heroes
already drafted.

Suggestions come from sequential pick patterns mined from recent public
matches on OpenDota. When no pattern extends the draft, a hero sharing the
last pick's attack type, primary attribute and main role is suggested.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ~/.dota-draft-companion/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	var err error
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Log.Level
	logCfg.Format = cfg.Log.Format
	if debug {
		logCfg.Level = "debug"
		logCfg.Caller = true
	}
	logCfg.Output = os.Stderr
	logging.Init(logCfg)

	logging.Debug().Str("command", cmd.CommandPath()).Str("db", cfg.Storage.DBPath).
		Str("miner", strings.ToLower(cfg.Mining.Miner)).Msg("Configuration loaded")
	return nil
}
