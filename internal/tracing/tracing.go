// Package tracing wires OpenTelemetry for sink calls.
package tracing

import (
	"context"
	"fmt"

	"companion-cli/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "companion-cli"

// Provider bundles a tracer with its shutdown hook.
type Provider struct {
	Tracer   trace.Tracer
	Shutdown func(context.Context) error
}

// Init returns a no-op provider unless tracing is enabled. When enabled, spans are
// exported over OTLP/HTTP in batches.
func Init(ctx context.Context, cfg config.TracingConfig) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{
			Tracer:   noop.NewTracerProvider().Tracer(instrumentationName),
			Shutdown: func(context.Context) error { return nil },
		}, nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create OTLP exporter: %w", err)
	}
	return NewProvider(sdktrace.WithBatcher(exporter), cfg.ServiceName), nil
}

// NewProvider builds an SDK provider around the given span processor option and
// installs it globally.
func NewProvider(processor sdktrace.TracerProviderOption, serviceName string) *Provider {
	if serviceName == "" {
		serviceName = "companion"
	}
	tp := sdktrace.NewTracerProvider(
		processor,
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		)),
	)
	otel.SetTracerProvider(tp)
	return &Provider{
		Tracer:   tp.Tracer(instrumentationName),
		Shutdown: tp.Shutdown,
	}
}
