package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"github.com/vidstream/vidstream-api/internal/repository/postgres"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	cmd.Println("Connecting to database...")
	// NewConnection migrates once connected.
	db, err := postgres.NewConnection(cmd.Context(), cfg.DatabaseURL, cfg.DBConnectAttempts, log)
	if err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "migrate database").Wrap(err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	cmd.Println("Migrations completed successfully")
	return nil
}
