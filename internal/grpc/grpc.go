package grpc

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const (
	probeInterval = 10 * time.Second
	probeTimeout  = 2 * time.Second
)

// Pinger reports whether a dependency is reachable. PostgresClient
// implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// GRPC serves the standard health API. The overall status follows the
// database: NOT_SERVING while a ping fails.
type GRPC struct {
	logger    *zap.Logger
	host      string
	port      string
	server    *grpc.Server
	health    *health.Server
	database  Pinger
	cancel    func()
	waitGroup sync.WaitGroup
}

func NewGRPC(logger *zap.Logger, database Pinger, host string, port string) *GRPC {
	grpcServer := grpc.NewServer()

	// Health API
	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	// Reflection API
	reflection.Register(grpcServer)

	return &GRPC{
		logger:   logger,
		host:     host,
		port:     port,
		server:   grpcServer,
		health:   healthServer,
		database: database,
	}
}

// Probe pings the database once and publishes the result.
func (this *GRPC) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := this.database.Ping(ctx); err != nil {
		this.logger.Warn("database ping failed", zap.Error(err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	this.health.SetServingStatus("", status)
	return status
}

func (this *GRPC) Start() error {
	listener, err := net.Listen("tcp", net.JoinHostPort(this.host, this.port))
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	this.cancel = cancel

	this.waitGroup.Add(1)
	go func() {
		defer this.waitGroup.Done()

		ticker := time.NewTicker(probeInterval)
		defer ticker.Stop()

		this.Probe(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				this.Probe(ctx)
			}
		}
	}()

	go func() {
		this.logger.Info("GRPC server started", zap.String("addr", listener.Addr().String()))
		err := this.server.Serve(listener)
		if err != nil {
			this.logger.Error("GRPC server stopped", zap.Error(err))
		}
	}()

	return nil
}

func (this *GRPC) Stop() error {
	if this.cancel != nil {
		this.cancel()
		this.waitGroup.Wait()
	}
	this.health.Shutdown()
	this.server.GracefulStop()
	this.logger.Info("GRPC server stopped gracefully")
	return nil
}
