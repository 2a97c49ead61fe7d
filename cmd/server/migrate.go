package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yukikurage/taskboard-api/internal/config"
	"github.com/yukikurage/taskboard-api/internal/database"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the SQL tables for users and tasks",
		Long: `Create or update the users and tasks tables in the database selected by
DB_DRIVER. Existing rows are kept; missing columns are added as nullable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger := newLogger(cfg)

			db, err := database.Connect(cfg)
			if err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			defer sqlDB.Close()

			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			logger.Info("migrations applied", "driver", cfg.DBDriver)
			return nil
		},
	}
}
