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
	"github.com/prometheus/client_golang/prometheus"

	"github.com/JonMunkholm/autoprep/internal/backend"
	"github.com/JonMunkholm/autoprep/internal/config"
	"github.com/JonMunkholm/autoprep/internal/logging"
	"github.com/JonMunkholm/autoprep/internal/persist"
	"github.com/JonMunkholm/autoprep/internal/telemetry"
	"github.com/JonMunkholm/autoprep/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"backend", cfg.Backend.Enabled(),
		"store_driver", cfg.Store.Driver,
		"max_concurrent", cfg.Processing.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("configuration", "config", cfg.String())

	tracing, err := telemetry.Setup(cfg.Telemetry, os.Stdout)
	if err != nil {
		slog.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()

	ctx := context.Background()
	svc, closeStore, err := persist.Open(ctx, cfg, logger,
		backend.WithTracerProvider(tracing.Provider),
		backend.WithMetrics(backend.NewMetrics(registry)),
	)
	if err != nil {
		slog.Error("failed to open persistence", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := closeStore(); err != nil {
			slog.Error("close store", "error", err)
		}
	}()

	server := web.NewServer(cfg, svc, registry)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
		if err := tracing.Shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		return
	}
	<-done
	slog.Info("server stopped")
}
