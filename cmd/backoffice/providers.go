package main

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	clientpkg "github.com/stormhead-org/backoffice/internal/client"
	configpkg "github.com/stormhead-org/backoffice/internal/config"
	eventpkg "github.com/stormhead-org/backoffice/internal/event"
	metricspkg "github.com/stormhead-org/backoffice/internal/metrics"
	ormpkg "github.com/stormhead-org/backoffice/internal/orm"
)

// commonOptions are shared by every command that runs an fx application.
func commonOptions(config *configpkg.Config) fx.Option {
	return fx.Options(
		fx.Supply(config),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),
		fx.Provide(
			newLogger,
			newPostgresClient,
		),
	)
}

func newLogger(config *configpkg.Config) (*zap.Logger, error) {
	if config.Debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func openPostgres(config *configpkg.Config) (*ormpkg.PostgresClient, error) {
	return ormpkg.NewPostgresClient(
		config.Postgres.Host,
		config.Postgres.Port,
		config.Postgres.User,
		config.Postgres.Password,
		config.Postgres.Database,
	)
}

func newPostgresClient(lifecycle fx.Lifecycle, config *configpkg.Config) (*ormpkg.PostgresClient, error) {
	client, err := openPostgres(config)
	if err != nil {
		return nil, err
	}

	lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return client, nil
}

func newKafkaClient(lifecycle fx.Lifecycle, config *configpkg.Config) (*eventpkg.KafkaClient, error) {
	client, err := eventpkg.NewKafkaClient(
		config.Kafka.Host,
		config.Kafka.Port,
		config.Kafka.Topic,
		config.Kafka.Group,
	)
	if err != nil {
		return nil, err
	}

	lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return client, nil
}

// newPublisher returns a nil Publisher when Kafka is not configured; the
// comment services then skip publishing.
func newPublisher(lifecycle fx.Lifecycle, logger *zap.Logger, config *configpkg.Config) (eventpkg.Publisher, error) {
	if !config.Kafka.Enabled() {
		logger.Info("kafka is not configured, comment events are disabled")
		return nil, nil
	}
	client, err := newKafkaClient(lifecycle, config)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func newFileStore(logger *zap.Logger, config *configpkg.Config) (clientpkg.FileStore, error) {
	if !config.S3.Enabled() {
		logger.Info("s3 is not configured, post attachments stay in storage")
		return nil, nil
	}
	client, err := clientpkg.NewS3Client(context.Background(), config.S3.Bucket, config.S3.Endpoint)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func newRegistry() (*prometheus.Registry, error) {
	registry := prometheus.NewRegistry()
	err := errors.Join(
		registry.Register(collectors.NewGoCollector()),
		registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})),
	)
	if err != nil {
		return nil, err
	}
	return registry, nil
}

func newMetrics(registry *prometheus.Registry) (*metricspkg.Metrics, error) {
	return metricspkg.NewMetrics(registry)
}
