package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"github.com/oraxus/sports-gateway/internal/api/response"
	"github.com/oraxus/sports-gateway/internal/domain/auth"
	domainErrors "github.com/oraxus/sports-gateway/internal/domain/errors"
)

const (
	maxBodyBytes = 1 << 20
	attemptsPath = "/dev/attempts"
	defaultLimit = 20
	maxListLimit = 100
)

// proxyHandler is what the Lambda runtime would invoke
type proxyHandler interface {
	Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)
}

// attemptLister reads recorded auth attempts
type attemptLister interface {
	ListAttempts(ctx context.Context, username string, limit int32) ([]auth.AuthAttempt, error)
}

func newMux(h proxyHandler, attempts attemptLister, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	if attempts != nil {
		mux.HandleFunc("GET "+attemptsPath, listAttemptsHandler(attempts, logger))
	}
	mux.Handle("/", gatewayHandler(h, logger))
	return mux
}

func gatewayHandler(h proxyHandler, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		request, err := toProxyRequest(r)
		if err != nil {
			response.WriteProxyResponse(w, response.BadRequest(err.Error(), ""))
			return
		}

		resp, err := h.Handle(r.Context(), request)
		if err != nil {
			// The router converts errors itself; this only fires if it did not
			logger.Error("Unhandled gateway error", "error", err)
			resp = response.InternalError(request.RequestContext.RequestID)
		}
		response.WriteProxyResponse(w, resp)
	}
}

// toProxyRequest converts an incoming HTTP request into the event API Gateway
// would deliver for it.
func toProxyRequest(r *http.Request) (events.APIGatewayProxyRequest, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return events.APIGatewayProxyRequest{}, fmt.Errorf("failed to read body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return events.APIGatewayProxyRequest{}, fmt.Errorf("request body exceeds %d bytes", maxBodyBytes)
	}

	headers := make(map[string]string, len(r.Header))
	for key, values := range r.Header {
		if len(values) > 0 {
			headers[key] = values[0]
		}
	}

	query := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			query[key] = values[0]
		}
	}

	request := events.APIGatewayProxyRequest{
		HTTPMethod:            r.Method,
		Path:                  r.URL.Path,
		Headers:               headers,
		MultiValueHeaders:     r.Header,
		QueryStringParameters: query,
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID: uuid.NewString(),
			Identity: events.APIGatewayRequestIdentity{
				SourceIP:  sourceIP(r),
				UserAgent: r.UserAgent(),
			},
		},
	}

	if utf8.Valid(body) {
		request.Body = string(body)
	} else {
		request.Body = base64.StdEncoding.EncodeToString(body)
		request.IsBase64Encoded = true
	}

	return request, nil
}

func sourceIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// listAttemptsHandler serves the newest audit records for one username
func listAttemptsHandler(attempts attemptLister, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()

		username := strings.TrimSpace(r.URL.Query().Get("username"))
		if username == "" {
			response.WriteProxyResponse(w, response.BadRequest("username is required", requestID))
			return
		}

		limit := defaultLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				response.WriteProxyResponse(w, response.BadRequest("limit must be a positive integer", requestID))
				return
			}
			limit = min(n, maxListLimit)
		}

		items, err := attempts.ListAttempts(r.Context(), username, int32(limit))
		if err != nil {
			logger.Error("Failed to list auth attempts", "error", err, "username", username)
			response.WriteProxyResponse(w, response.Error(domainErrors.Translate(err), requestID))
			return
		}

		response.WriteProxyResponse(w, response.RawOK(map[string]interface{}{
			"username": username,
			"attempts": items,
		}, requestID))
	}
}
