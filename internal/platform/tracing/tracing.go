package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// NewProvider batches spans for serviceName into exporter.
func NewProvider(exporter sdktrace.SpanExporter, serviceName string) *sdktrace.TracerProvider {
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
}

// Setup exports spans over OTLP/gRPC and installs the provider globally.
// The endpoint is read from the standard OTEL_EXPORTER_OTLP_* variables.
// Callers flush it with Shutdown.
func Setup(ctx context.Context, serviceName string) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracegrpc.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("tracing: create otlp exporter: %w", err)
	}
	tp := NewProvider(exporter, serviceName)
	otel.SetTracerProvider(tp)
	return tp, nil
}
