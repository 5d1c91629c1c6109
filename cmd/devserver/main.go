package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oraxus/sports-gateway/internal/api/handlers"
	"github.com/oraxus/sports-gateway/internal/api/router"
	envconfig "github.com/oraxus/sports-gateway/internal/common/config"
	authfactory "github.com/oraxus/sports-gateway/internal/platform/auth"
	"github.com/oraxus/sports-gateway/internal/platform/otel"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	config, err := envconfig.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load Env config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTraces, _, err := otel.Setup(ctx, otel.Settings{
		ServiceName: "sports-gateway-dev",
		Environment: config.Environment,
		Endpoint:    config.OTelEndpoint,
		Enabled:     config.OTelEnabled,
	})
	if err != nil {
		log.Fatalf("Failed to set up tracing: %v", err)
	}

	components, err := authfactory.NewService(ctx, config, logger)
	if err != nil {
		log.Fatalf("Failed to initialize auth service: %v", err)
	}

	gatewayRouter := router.New(handlers.NewAuthHandler(components.Service), logger, !config.IsProd())

	srv := &http.Server{
		Addr:              config.DevServerAddr,
		Handler:           newMux(gatewayRouter, components.Audit, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Dev server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Dev server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down dev server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Dev server shutdown failed", "error", err)
	}
	if err := components.Close(); err != nil {
		logger.Error("Failed to release resources", "error", err)
	}
	if err := shutdownTraces(shutdownCtx); err != nil {
		logger.Error("Failed to shut down tracing", "error", err)
	}
}
