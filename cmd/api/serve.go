package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"docvault/internal/otel"
)

const shutdownTimeout = 10 * time.Second

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		return err
	}

	app, err := newApplication(ctx, cfg, logger, newRegistry())
	if err != nil {
		return err
	}
	defer app.close()

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Infow("server starting", "event", "server_start", "addr", addr,
			"db_driver", cfg.Database.Driver, "storage_driver", cfg.Storage.Driver)
		errCh <- app.http.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Errorw("server failed", "event", "server_failed", "error", err)
		}
		return err
	case <-ctx.Done():
	}

	logger.Infow("shutting down", "event", "server_shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := app.http.ShutdownWithContext(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
