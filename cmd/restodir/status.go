package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	chiTransport "github.com/restodir/restodir/internal/transport/chi"
	healthuc "github.com/restodir/restodir/internal/usecase/health"
)

// startStatusServer serves /health, /metrics and /import/progress while a
// command runs. It returns a stop function; with no address configured it
// does nothing.
func (a *app) startStatusServer() func() {
	if a.cfg.Status.Addr == "" {
		return func() {}
	}

	server := chiTransport.NewServer(healthuc.New(a.dir), a.dir, a.logger)
	srv := &http.Server{
		Addr: a.cfg.Status.Addr,
		Handler: server.Router(chiTransport.Options{
			CORSOrigins: a.cfg.Status.CORSOrigins,
			APIKeys:     a.cfg.Status.APIKeys,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.logger.Info("Starting status server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Status server error", zap.Error(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(),
			time.Duration(a.cfg.Status.ShutdownTimeout)*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			a.logger.Error("Error during status server shutdown", zap.Error(err))
		}
	}
}
