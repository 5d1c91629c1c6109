package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/oraxus/sports-gateway/internal/api/middleware"
	"github.com/oraxus/sports-gateway/internal/api/response"
	"github.com/oraxus/sports-gateway/internal/domain/auth"
)

// AuthHandler handles the /auth endpoints
type AuthHandler struct {
	service auth.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service auth.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

// Start handles POST /auth/start
func (h *AuthHandler) Start(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var input auth.StartInput
	if err := decodeBody(request, &input); err != nil {
		logger.Warn("Invalid start request body", "error", err)
		return response.BadRequest("Invalid JSON body", middleware.RequestID(ctx, request)), nil
	}

	result, err := h.service.Start(ctx, input)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	return response.RawOK(result, middleware.RequestID(ctx, request)), nil
}

// Verify handles POST /auth/verify
func (h *AuthHandler) Verify(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var input auth.VerifyInput
	if err := decodeBody(request, &input); err != nil {
		logger.Warn("Invalid verify request body", "error", err)
		return response.BadRequest("Invalid JSON body", middleware.RequestID(ctx, request)), nil
	}

	result, err := h.service.Verify(ctx, input)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	return response.RawOK(result, middleware.RequestID(ctx, request)), nil
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var input auth.RegisterInput
	if err := decodeBody(request, &input); err != nil {
		logger.Warn("Invalid register request body", "error", err)
		return response.BadRequest("Invalid JSON body", middleware.RequestID(ctx, request)), nil
	}

	result, err := h.service.Register(ctx, input)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	return response.RawOK(result, middleware.RequestID(ctx, request)), nil
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var input auth.LoginInput
	if err := decodeBody(request, &input); err != nil {
		logger.Warn("Invalid login request body", "error", err)
		return response.BadRequest("Invalid JSON body", middleware.RequestID(ctx, request)), nil
	}

	result, err := h.service.Login(ctx, input)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	return response.RawOK(result, middleware.RequestID(ctx, request)), nil
}

// decodeBody unmarshals a JSON request body, decoding base64 first when
// API Gateway flagged it. An empty body decodes to the zero value so that
// field validation reports what is missing.
func decodeBody(request events.APIGatewayProxyRequest, v interface{}) error {
	body := request.Body
	if request.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return err
		}
		body = string(decoded)
	}

	if strings.TrimSpace(body) == "" {
		return nil
	}
	return json.Unmarshal([]byte(body), v)
}
