package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	envconfig "github.com/oraxus/sports-gateway/internal/common/config"
	authfactory "github.com/oraxus/sports-gateway/internal/platform/auth"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	config, err := envconfig.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load Env config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker, rdb, err := authfactory.NewQueueWorker(ctx, config, logger)
	if err != nil {
		log.Fatalf("Failed to initialize queue worker: %v", err)
	}
	defer rdb.Close()

	logger.Info("Notification worker started", "userServiceUrl", config.UserServiceURL)
	worker.StartWorker(ctx)
	logger.Info("Notification worker stopped")
}
