package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	configpkg "github.com/stormhead-org/backoffice/internal/config"
)

var migrateCommand = &cobra.Command{
	Use:   "migrate",
	Short: "create or update the database schema",
	Long:  "",
	RunE: func(cmd *cobra.Command, args []string) error {
		return migrateCommandImpl(cmd.Context())
	},
}

func migrateCommandImpl(ctx context.Context) error {
	config, err := configpkg.Load()
	if err != nil {
		return err
	}

	logger, err := newLogger(config)
	if err != nil {
		return err
	}
	defer logger.Sync()

	database, err := openPostgres(config)
	if err != nil {
		return err
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	start := time.Now()
	if err := database.Migrate(ctx); err != nil {
		logger.Error("migration failed", zap.Error(err))
		return err
	}
	logger.Info("migration finished", zap.Duration("took", time.Since(start)))
	return nil
}

func init() {
	rootCommand.AddCommand(migrateCommand)
}
