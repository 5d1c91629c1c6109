package middleware

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// RequestContextKey is the key for request metadata in the request context
type RequestContextKey string

const (
	// RequestContextKeyValue is the context key for request metadata
	RequestContextKeyValue RequestContextKey = "request"
)

// RequestContext carries per-request metadata for downstream logging
type RequestContext struct {
	RequestID string
	SourceIP  string
	UserAgent string
}

// RequestContextMiddleware stores request metadata in the context, scopes the
// logger to the request and continues any incoming trace. Direct invocations
// without an API Gateway request id get a generated one.
type RequestContextMiddleware struct {
	tracer trace.Tracer
}

// NewRequestContextMiddleware creates a new request context middleware
func NewRequestContextMiddleware() RequestContextMiddleware {
	return RequestContextMiddleware{tracer: otel.Tracer("github.com/oraxus/sports-gateway/internal/api/middleware")}
}

// Handle handles the request context middleware
func (m RequestContextMiddleware) Handle(next APIGatewayHandler) APIGatewayHandler {
	return func(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		reqCtx := &RequestContext{
			RequestID: request.RequestContext.RequestID,
			SourceIP:  request.RequestContext.Identity.SourceIP,
			UserAgent: request.RequestContext.Identity.UserAgent,
		}
		if reqCtx.RequestID == "" {
			reqCtx.RequestID = uuid.NewString()
		}
		ctx = context.WithValue(ctx, RequestContextKeyValue, reqCtx)

		ctx = otel.GetTextMapPropagator().Extract(ctx, traceCarrier(request))
		ctx, span := m.tracer.Start(ctx, request.HTTPMethod+" "+request.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", request.HTTPMethod),
				attribute.String("url.path", request.Path),
				attribute.String("aws.request_id", reqCtx.RequestID),
			),
		)
		defer span.End()

		logger = logger.With("requestId", reqCtx.RequestID)

		resp, err := next(ctx, logger, request)
		span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
		return resp, err
	}
}

// GetRequestID gets the request ID from the request context
func GetRequestID(ctx context.Context) string {
	reqCtx, ok := ctx.Value(RequestContextKeyValue).(*RequestContext)
	if !ok {
		return ""
	}
	return reqCtx.RequestID
}

// RequestID returns the id stored by the request context middleware, falling
// back to the API Gateway id when the middleware did not run
func RequestID(ctx context.Context, request events.APIGatewayProxyRequest) string {
	if id := GetRequestID(ctx); id != "" {
		return id
	}
	return request.RequestContext.RequestID
}

// traceCarrier lower-cases header names. API Gateway REST APIs keep the
// client's casing while the propagators look up "traceparent".
func traceCarrier(request events.APIGatewayProxyRequest) propagation.MapCarrier {
	carrier := make(propagation.MapCarrier, len(request.Headers)+len(request.MultiValueHeaders))
	for key, values := range request.MultiValueHeaders {
		if len(values) > 0 {
			carrier[strings.ToLower(key)] = values[0]
		}
	}
	for key, value := range request.Headers {
		carrier[strings.ToLower(key)] = value
	}
	return carrier
}
