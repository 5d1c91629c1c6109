package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/aws/aws-lambda-go/events"
)

// LoggingMiddleware is a middleware for logging requests and responses
type LoggingMiddleware struct {
	// LogBodies adds masked request and response bodies to the log
	LogBodies bool
}

// NewLoggingMiddleware creates a new logging middleware
func NewLoggingMiddleware(logBodies bool) LoggingMiddleware {
	return LoggingMiddleware{LogBodies: logBodies}
}

// Handle handles the logging middleware
func (m LoggingMiddleware) Handle(next APIGatewayHandler) APIGatewayHandler {
	return func(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		startTime := time.Now()

		m.logRequest(request, logger)

		response, err := next(ctx, logger, request)

		m.logResponse(response, err, time.Since(startTime), logger)

		return response, err
	}
}

// logRequest logs the request
func (m LoggingMiddleware) logRequest(request events.APIGatewayProxyRequest, logger *slog.Logger) {
	logger.Info("REQUEST",
		"method", request.HTTPMethod,
		"path", request.Path,
		"requestId", request.RequestContext.RequestID,
		"sourceIp", request.RequestContext.Identity.SourceIP,
		"headers", maskSensitiveHeaders(request.Headers))

	if m.LogBodies && request.Body != "" {
		logger.Info("REQUEST", "body", maskSensitiveBody(request.Body))
	}
}

// logResponse logs the response
func (m LoggingMiddleware) logResponse(response events.APIGatewayProxyResponse, err error, duration time.Duration, logger *slog.Logger) {
	if err != nil {
		logger.Error("ERROR", "error", err)
	}

	logger.Info("RESPONSE",
		"status", response.StatusCode,
		"duration", duration,
	)

	if m.LogBodies && response.Body != "" {
		logger.Info("RESPONSE", "body", maskSensitiveBody(response.Body))
	}
}

// maskSensitiveHeaders masks sensitive headers
func maskSensitiveHeaders(headers map[string]string) map[string]string {
	maskedHeaders := make(map[string]string, len(headers))
	for k, v := range headers {
		maskedHeaders[k] = v
	}

	sensitiveHeaders := []string{
		"Authorization",
		"authorization",
		"X-Api-Key",
		"x-api-key",
		"Cookie",
		"cookie",
	}
	for _, header := range sensitiveHeaders {
		if _, ok := maskedHeaders[header]; ok {
			maskedHeaders[header] = "***"
		}
	}

	return maskedHeaders
}

// sensitiveFields never reach the log
var sensitiveFields = map[string]struct{}{
	"password":     {},
	"code":         {},
	"session":      {},
	"accessToken":  {},
	"idToken":      {},
	"refreshToken": {},
}

// maskSensitiveBody masks credential and token fields of a JSON object body.
// Anything that is not a JSON object is replaced entirely.
func maskSensitiveBody(body string) string {
	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return "<non-json body omitted>"
	}

	for k := range fields {
		if _, ok := sensitiveFields[k]; ok {
			fields[k] = "***"
		}
	}

	masked, err := json.Marshal(fields)
	if err != nil {
		return "<unprintable body omitted>"
	}
	return string(masked)
}
