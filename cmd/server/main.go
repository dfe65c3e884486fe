package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mcoot/gameofchests/internal/api"
	"github.com/mcoot/gameofchests/internal/factory"
)

// How often rooms without SSE clients stop being followed
const sseCleanupInterval = time.Minute

func main() {
	cfg, err := loadConfig(os.Getenv)
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	cfg.Factory.Logger = logger

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := factory.New(ctx, cfg.Factory)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	go app.Broadcaster.RunCleanup(ctx, sseCleanupInterval)

	server := api.NewServer(app.Router(), cfg.Server, logger)
	// Streams end with the app, or Shutdown would wait on them
	server.OnShutdown(app.Broadcaster.Close)
	server.OnShutdown(app.Bots.Close)
	if err := server.Listen(); err != nil {
		logger.Error("failed to listen", slog.String("error", err.Error()))
		os.Exit(1)
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", app.StorageType),
	)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
		}
	}

	logger.Info("server stopped")
}
