package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Settings controls trace export
type Settings struct {
	ServiceName string
	Environment string
	Endpoint    string // OTLP/HTTP endpoint URL; empty disables tracing
	Enabled     bool
}

// Setup registers a global tracer provider exporting over OTLP/HTTP.
//
// When tracing is disabled or no endpoint is set, Setup returns a no-op
// shutdown and leaves the global no-op provider in place. shutdown flushes
// and stops the exporter; flush only exports pending spans, for Lambda where
// the process is frozen between invocations.
func Setup(ctx context.Context, s Settings) (shutdown func(context.Context) error, flush func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	if !s.Enabled || s.Endpoint == "" {
		return noop, noop, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(s.Endpoint),
	)
	if err != nil {
		return noop, noop, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(s.ServiceName),
			semconv.DeploymentEnvironment(s.Environment),
		),
	)
	if err != nil {
		return noop, noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, tp.ForceFlush, nil
}
