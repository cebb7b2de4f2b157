package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	configpkg "github.com/stormhead-org/backoffice/internal/config"
	eventpkg "github.com/stormhead-org/backoffice/internal/event"
	ormpkg "github.com/stormhead-org/backoffice/internal/orm"
	workerpkg "github.com/stormhead-org/backoffice/internal/worker"
)

var workerCommand = &cobra.Command{
	Use:   "worker",
	Short: "consume comment events and refresh author reputation",
	Long:  "",
	RunE: func(cmd *cobra.Command, args []string) error {
		return workerCommandImpl()
	},
}

func workerCommandImpl() error {
	config, err := configpkg.Load()
	if err != nil {
		return err
	}
	if !config.Kafka.Enabled() {
		return errors.New("worker requires KAFKA_HOST")
	}

	// Application
	application := fx.New(
		commonOptions(config),
		fx.Provide(
			newKafkaClient,

			func(
				lifecycle fx.Lifecycle,
				logger *zap.Logger,
				kafkaClient *eventpkg.KafkaClient,
				databaseClient *ormpkg.PostgresClient,
			) *workerpkg.Worker {
				worker := workerpkg.NewWorker(logger, kafkaClient, databaseClient)

				lifecycle.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return worker.Start()
					},
					OnStop: func(ctx context.Context) error {
						return worker.Stop()
					},
				})

				return worker
			},
		),
		fx.Invoke(
			func(*workerpkg.Worker) {},
		),
	)
	application.Run()

	err = application.Err()
	if err != nil {
		os.Exit(1)
	}

	return nil
}

func init() {
	rootCommand.AddCommand(workerCommand)
}
