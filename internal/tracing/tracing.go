// Package tracing sets up OpenTelemetry export over OTLP/HTTP and
// hands out spans for the expensive paths: provider queries on cache
// misses and history database round trips.
package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
)

// Config carries the tracing settings out of the service config so
// this package never reads the environment itself.
type Config struct {
	Enabled    bool
	Endpoint   string  // collector host:port, plain HTTP
	SampleRate float64 // fraction of traces to keep, 0 disables sampling config
	Service    string
	Version    string
}

var tracer trace.Tracer

// Init configures the global tracer provider and returns a shutdown
// function that flushes pending spans. When tracing is disabled the
// returned shutdown is a no-op and the global provider is untouched.
func Init(cfg Config) (func(context.Context) error, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4318"
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	if cfg.SampleRate <= 0 || cfg.SampleRate > 1 {
		cfg.SampleRate = 0.1
	}

	ctx := context.Background()

	// WithEndpoint wants a bare host:port; WithInsecure selects plain
	// HTTP, which is what a local collector sidecar speaks.
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.Endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.Service),
			semconv.ServiceVersionKey.String(cfg.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("building service resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRate)),
	)

	otel.SetTracerProvider(tp)
	tracer = tp.Tracer(cfg.Service)

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}, nil
}

// GetTracer returns the service tracer, or a no-op tracer before Init
// has run. Spans started off the no-op tracer cost nothing.
func GetTracer() trace.Tracer {
	if tracer == nil {
		return otel.Tracer("hwscope")
	}
	return tracer
}

// StartSpan opens a span on the service tracer.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, name, opts...)
}
