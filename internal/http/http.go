package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type HTTP struct {
	logger *zap.Logger
	addr   string
	server *http.Server
}

func NewHTTP(logger *zap.Logger, addr string, handler http.Handler) *HTTP {
	return &HTTP{
		logger: logger,
		addr:   addr,
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (this *HTTP) Start() error {
	listener, err := net.Listen("tcp", this.addr)
	if err != nil {
		return err
	}

	go func() {
		this.logger.Info("HTTP server started", zap.String("addr", listener.Addr().String()))
		err := this.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			this.logger.Error("HTTP server stopped", zap.Error(err))
		}
	}()

	return nil
}

func (this *HTTP) Stop(ctx context.Context) error {
	err := this.server.Shutdown(ctx)
	this.logger.Info("HTTP server stopped gracefully")
	return err
}
