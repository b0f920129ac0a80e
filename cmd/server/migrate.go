package main

import (
	"github.com/spf13/cobra"
	"github.com/yoj3289/WeNectProject/internal/database"
	"github.com/yoj3289/WeNectProject/internal/logger"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			defer logger.Sync()

			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			logger.Info("Database migrated")
			return nil
		},
	}
}
