// Package server runs the turnos HTTP API until it is told to stop.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/turnosapp/turnos/config"
	"github.com/turnosapp/turnos/database/seeders"
	"github.com/turnosapp/turnos/internal/kernel"
	"github.com/turnosapp/turnos/pkg/auth"
	"github.com/turnosapp/turnos/pkg/cache"
	"github.com/turnosapp/turnos/pkg/database"
	"github.com/turnosapp/turnos/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// Start connects MongoDB and the cache, makes sure the indexes and the order
// counter are in shape and serves on APP_PORT until ctx is cancelled, then
// drains in-flight requests.
func Start(ctx context.Context) error {
	if err := config.Load(); err != nil {
		return err
	}
	if err := auth.CheckSecret(); err != nil {
		return err
	}

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := database.Connect(connectCtx); err != nil {
		return err
	}
	defer func() {
		if err := database.Disconnect(context.Background()); err != nil {
			logger.Error("database disconnect failed", "error", err)
		}
	}()

	// Deferred after Disconnect so queued records are flushed while the
	// client is still connected.
	if config.LogMongo() {
		logs := logger.NewMongoHandler(connectCtx, database.DB.Collection(config.LogCollection()), slog.LevelInfo)
		logger.Attach(logs)
		defer logs.Close()
	}

	if err := database.EnsureIndexes(connectCtx, database.DB); err != nil {
		return err
	}
	if err := seeders.SyncOrderCounter(connectCtx, database.DB); err != nil {
		return err
	}

	store := cache.Connect(connectCtx)
	defer func() {
		if err := cache.Close(store); err != nil {
			logger.Error("cache close failed", "error", err)
		}
	}()

	app, err := NewApp(database.DB, store)
	if err != nil {
		return err
	}
	go app.LoginLimiter.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           kernel.NewHTTPKernel(app.Routes).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return Serve(ctx, srv)
}

// Serve runs srv until ctx is done and then shuts it down gracefully.
func Serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("turnos listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", shutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
