package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/oraxus/sports-gateway/internal/api/handlers"
	"github.com/oraxus/sports-gateway/internal/api/router"
	envconfig "github.com/oraxus/sports-gateway/internal/common/config"
	authfactory "github.com/oraxus/sports-gateway/internal/platform/auth"
	"github.com/oraxus/sports-gateway/internal/platform/otel"
)

var (
	gatewayRouter *router.Router
	components    *authfactory.Components
	flushTraces   func(context.Context) error
	logger        *slog.Logger
	config        *envconfig.Config
)

func init() {
	logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	var err error
	config, err = envconfig.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load Env config: %v", err)
	}

	ctx := context.Background()

	_, flushTraces, err = otel.Setup(ctx, otel.Settings{
		ServiceName: "sports-gateway",
		Environment: config.Environment,
		Endpoint:    config.OTelEndpoint,
		Enabled:     config.OTelEnabled,
	})
	if err != nil {
		log.Fatalf("Failed to set up tracing: %v", err)
	}

	components, err = authfactory.NewService(ctx, config, logger)
	if err != nil {
		log.Fatalf("Failed to initialize auth service: %v", err)
	}

	gatewayRouter = router.New(handlers.NewAuthHandler(components.Service), logger, !config.IsProd())
}

func handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	resp, err := gatewayRouter.Handle(ctx, request)

	// The execution environment freezes once we return
	components.Drain()

	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if ferr := flushTraces(flushCtx); ferr != nil {
		logger.Warn("Failed to flush traces", "error", ferr)
	}

	return resp, err
}

func main() {
	lambda.Start(handler)
}
