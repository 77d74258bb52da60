package cmd

import (
	"context"
	"database/sql"

	"github.com/vibast-solutions/ms-go-sessionauth/config"
	"github.com/vibast-solutions/ms-go-sessionauth/migrations"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withDB(migrations.Up)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the latest migration",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withDB(migrations.Down)
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the migration status",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withDB(migrations.Status)
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
}

// withDB loads the configuration, opens the database and runs fn against it.
func withDB(fn func(ctx context.Context, db *sql.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(context.Background(), db)
}
