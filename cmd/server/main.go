package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/sizetable/internal/config"
	"github.com/JonMunkholm/sizetable/internal/core"
	"github.com/JonMunkholm/sizetable/internal/logging"
	"github.com/JonMunkholm/sizetable/internal/metrics"
	"github.com/JonMunkholm/sizetable/internal/service"
	"github.com/JonMunkholm/sizetable/internal/web"
)

func main() {
	// Load .env file if it exists; real environment variables win
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()

	deps, closeDeps, err := service.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to connect backends", "error", err)
		os.Exit(1)
	}
	defer closeDeps()

	m := metrics.New(nil)
	deps.Metrics = m

	svc, err := service.Build(ctx, cfg, deps)
	if err != nil {
		logger.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	info := svc.Glossary()
	logger.Info("service ready",
		"glossary_origin", info.Origin,
		"glossary_terms", info.Terms,
		"remote", info.Remote,
		"label_sets", core.LabelSetNames(),
	)

	server := web.NewServer(svc, cfg, m)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := svc.Limiter().Status(); status.Active > 0 {
			logger.Info("waiting for runs to complete", "active", status.Active)
			if err := svc.Limiter().WaitForDrain(shutdownCtx); err != nil {
				logger.Warn("runs did not complete in time", "error", err)
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
