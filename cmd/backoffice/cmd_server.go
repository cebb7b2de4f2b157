package main

import (
	"context"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	configpkg "github.com/stormhead-org/backoffice/internal/config"
	eventpkg "github.com/stormhead-org/backoffice/internal/event"
	grpcpkg "github.com/stormhead-org/backoffice/internal/grpc"
	httppkg "github.com/stormhead-org/backoffice/internal/http"
	handlerpkg "github.com/stormhead-org/backoffice/internal/http/handler"
	jwtpkg "github.com/stormhead-org/backoffice/internal/jwt"
	metricspkg "github.com/stormhead-org/backoffice/internal/metrics"
	middlewarepkg "github.com/stormhead-org/backoffice/internal/middleware"
	ormpkg "github.com/stormhead-org/backoffice/internal/orm"
	"github.com/stormhead-org/backoffice/internal/services"
	boardpkg "github.com/stormhead-org/backoffice/internal/services/board"
	commentpkg "github.com/stormhead-org/backoffice/internal/services/comment"
	postpkg "github.com/stormhead-org/backoffice/internal/services/post"
	shoppkg "github.com/stormhead-org/backoffice/internal/services/shop"
	todopkg "github.com/stormhead-org/backoffice/internal/services/todo"
	tokenpkg "github.com/stormhead-org/backoffice/internal/services/token"
)

var serverCommand = &cobra.Command{
	Use:   "server",
	Short: "serve the back-office HTTP API",
	Long:  "",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serverCommandImpl()
	},
}

func serverCommandImpl() error {
	config, err := configpkg.Load()
	if err != nil {
		return err
	}

	// Application
	application := fx.New(
		commonOptions(config),
		fx.Provide(
			newPublisher,
			newFileStore,
			newRegistry,
			newMetrics,

			// Secrets
			func() *jwtpkg.JWT {
				return jwtpkg.NewJWT(config.JWTSecret())
			},

			// Services
			boardpkg.NewBoardService,
			todopkg.NewTodoService,
			shoppkg.NewShopService,
			tokenpkg.NewTokenService,
			postpkg.NewPostService,

			// Handlers
			func(
				log *zap.Logger,
				db *ormpkg.PostgresClient,
				publisher eventpkg.Publisher,
				m *metricspkg.Metrics,
				boards services.BoardService,
				posts services.PostService,
				todos services.TodoService,
				shop services.ShopService,
				tokens services.TokenService,
			) *handlerpkg.Handlers {
				return handlerpkg.New(
					log,
					boards,
					posts,
					todos,
					shop,
					tokens,
					commentpkg.NewCommentService(db, log, ormpkg.PostThread, publisher, m),
					commentpkg.NewCommentService(db, log, ormpkg.TodoThread, publisher, m),
				)
			},

			// Main HTTP Server
			func(
				lifecycle fx.Lifecycle,
				log *zap.Logger,
				handlers *handlerpkg.Handlers,
				jwt *jwtpkg.JWT,
				tokens services.TokenService,
				registry *prometheus.Registry,
			) *httppkg.HTTP {
				router := httppkg.NewRouter(handlers, httppkg.Options{
					Logger:   log,
					Timeout:  config.HTTP.Timeout,
					Limiter:  middlewarepkg.NewRateLimiter(config.RateLimit.RPS, config.RateLimit.Burst),
					Parser:   jwt,
					Tokens:   tokens,
					Gatherer: registry,
				})
				httpServer := httppkg.NewHTTP(log, config.HTTP.Addr(), router)
				lifecycle.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return httpServer.Start()
					},
					OnStop: func(ctx context.Context) error {
						return httpServer.Stop(ctx)
					},
				})
				return httpServer
			},

			// Health gRPC Server
			func(lifecycle fx.Lifecycle, log *zap.Logger, db *ormpkg.PostgresClient) *grpcpkg.GRPC {
				grpcServer := grpcpkg.NewGRPC(log, db, config.GRPC.Host, config.GRPC.Port)
				if config.GRPC.Port == "" {
					return grpcServer
				}
				lifecycle.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return grpcServer.Start()
					},
					OnStop: func(ctx context.Context) error {
						return grpcServer.Stop()
					},
				})
				return grpcServer
			},
		),
		fx.Invoke(
			func(*httppkg.HTTP) {},
			func(*grpcpkg.GRPC) {},
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
	rootCommand.AddCommand(serverCommand)
}
