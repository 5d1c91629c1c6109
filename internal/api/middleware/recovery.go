package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/aws/aws-lambda-go/events"

	"github.com/oraxus/sports-gateway/internal/api/response"
	"github.com/oraxus/sports-gateway/internal/domain/errors"
)

// RecoveryMiddleware turns panics and returned errors into error responses
type RecoveryMiddleware struct{}

// NewRecoveryMiddleware creates a new recovery middleware
func NewRecoveryMiddleware() RecoveryMiddleware {
	return RecoveryMiddleware{}
}

// Handle handles the recovery middleware
func (m RecoveryMiddleware) Handle(next APIGatewayHandler) APIGatewayHandler {
	return func(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest) (resp events.APIGatewayProxyResponse, err error) {
		requestID := RequestID(ctx, request)

		defer func() {
			if r := recover(); r != nil {
				logger.Error("PANIC", "panic", fmt.Sprint(r), "stack", string(debug.Stack()), "requestId", requestID)
				resp = response.InternalError(requestID)
				err = nil
			}
		}()

		resp, err = next(ctx, logger, request)
		if err != nil {
			appErr := errors.Translate(err)

			// Full detail stays in the log; the body carries code and message only
			if appErr.StatusCode >= 500 {
				logger.Error("Request failed", "code", appErr.Code, "error", err, "requestId", requestID)
			} else {
				logger.Warn("Request rejected", "code", appErr.Code, "error", err, "requestId", requestID)
			}

			return response.Error(appErr, requestID), nil
		}

		return resp, nil
	}
}
