package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/storage"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withMigrations(func(mm *storage.MigrationManager) error {
			if err := mm.Up(); err != nil {
				return err
			}
			return printVersion(cmd, mm)
		})
	},
}

var migrateDownAll bool

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	Long: `Roll back the most recent migration only. Run it again to step further
back, or pass --all to roll back every migration and leave an empty schema.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withMigrations(func(mm *storage.MigrationManager) error {
			rollback := func() error { return mm.Steps(-1) }
			if migrateDownAll {
				rollback = mm.Down
			}
			if err := rollback(); err != nil {
				return err
			}
			return printVersion(cmd, mm)
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withMigrations(func(mm *storage.MigrationManager) error {
			return printVersion(cmd, mm)
		})
	},
}

func withMigrations(fn func(*storage.MigrationManager) error) error {
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DBPath), 0o755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}
	mm, err := storage.NewMigrationManager(cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = mm.Close() }()
	return fn(mm)
}

func printVersion(cmd *cobra.Command, mm *storage.MigrationManager) error {
	version, dirty, err := mm.Version()
	if err != nil {
		return err
	}
	state := "clean"
	if dirty {
		state = "dirty"
	}
	cmd.Printf("Schema version %d (%s)\n", version, state)
	return nil
}

func init() {
	migrateDownCmd.Flags().BoolVar(&migrateDownAll, "all", false, "roll back every migration")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
	rootCmd.AddCommand(migrateCmd)
}
