// Package telemetry wires OpenTelemetry tracing for the service.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/JonMunkholm/autoprep/internal/config"
)

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(context.Context) error

// Tracing is the result of Setup.
type Tracing struct {
	Provider trace.TracerProvider
	Shutdown ShutdownFunc
}

// Setup installs the global tracer provider and propagator. With tracing
// disabled a no-op provider is installed and Shutdown does nothing.
// Spans are written to w, or stdout when w is nil.
func Setup(cfg config.TelemetryConfig, w io.Writer) (*Tracing, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if !cfg.TracingEnabled {
		tp := noop.NewTracerProvider()
		otel.SetTracerProvider(tp)
		return &Tracing{
			Provider: tp,
			Shutdown: func(context.Context) error { return nil },
		}, nil
	}

	if w == nil {
		w = os.Stdout
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	name := cfg.ServiceName
	if name == "" {
		name = "autoprep"
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", name),
		)),
	)
	otel.SetTracerProvider(tp)

	return &Tracing{
		Provider: tp,
		Shutdown: tp.Shutdown,
	}, nil
}
