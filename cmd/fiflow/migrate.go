package main

import (
	"log/slog"
	"os"

	"fiflow_backend/internal/app/di"
	"fiflow_backend/internal/platform/config"
	"fiflow_backend/internal/platform/logging"

	"github.com/spf13/cobra"
)

var migrateCMD = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logging.Setup(os.Stdout, cfg.LogLevel, cfg.LogFormat)

		if err := di.MigrateDatabase(cfg); err != nil {
			return err
		}
		slog.Info("migration complete", "driver", cfg.DB.Driver)
		return nil
	},
}
