package router

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/oraxus/sports-gateway/internal/api/handlers"
	"github.com/oraxus/sports-gateway/internal/api/middleware"
	"github.com/oraxus/sports-gateway/internal/api/response"
)

// Route paths
const (
	PathStart    = "/auth/start"
	PathVerify   = "/auth/verify"
	PathRegister = "/auth/register"
	PathLogin    = "/auth/login"
)

// Router dispatches API Gateway requests to the auth handlers
type Router struct {
	logger  *slog.Logger
	routes  map[string]middleware.APIGatewayHandler
	handler middleware.APIGatewayHandler
}

// New creates a router. Request and response bodies are logged (masked) when
// logBodies is set.
func New(authHandler *handlers.AuthHandler, logger *slog.Logger, logBodies bool) *Router {
	r := &Router{
		logger: logger,
		routes: map[string]middleware.APIGatewayHandler{
			PathStart:    authHandler.Start,
			PathVerify:   authHandler.Verify,
			PathRegister: authHandler.Register,
			PathLogin:    authHandler.Login,
		},
	}

	r.handler = middleware.Chain(r.route,
		middleware.NewRequestContextMiddleware(),
		middleware.NewLoggingMiddleware(logBodies),
		middleware.NewRecoveryMiddleware(),
	)

	return r
}

// Handle is the API Gateway proxy entrypoint
func (r *Router) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	// Handle CORS preflight
	if request.HTTPMethod == http.MethodOptions {
		return response.Preflight(), nil
	}

	return r.handler(ctx, r.logger, request)
}

func (r *Router) route(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	path := strings.TrimSuffix(request.Path, "/")

	h, ok := r.routes[path]
	if !ok {
		return response.NotFound("Endpoint not found", middleware.RequestID(ctx, request)), nil
	}
	if request.HTTPMethod != http.MethodPost {
		return response.MethodNotAllowed("Method not allowed", middleware.RequestID(ctx, request)), nil
	}

	return h(ctx, logger, request)
}
