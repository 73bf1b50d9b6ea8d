package respira

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/honeycombio/otel-config-go/otelconfig"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const serviceName = "respira"

// InitOTelHNY uses the Honeycomb library to interface with OTel,
// endpoint and API key come from the usual OTEL_* / HONEYCOMB_* env vars
func InitOTelHNY() (func(), error) {
	otelShutdown, err := otelconfig.ConfigureOpenTelemetry(
		otelconfig.WithServiceName(serviceName),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to configure OpenTelemetry: %w", err)
	}
	return func() { otelShutdown() }, nil
}

// InitOTelGRF uses the Grafana recommended configuration including Baggage for propagation
func InitOTelGRF() (*sdktrace.TracerProvider, error) {
	exporter, err := otlptrace.New(context.Background(), otlptracehttp.NewClient())
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))
	return tp, err
}

// InitOTel picks a setup by name: "honeycomb", "otlp", anything else is a no-op.
// The returned func flushes and stops tracing and is always safe to call.
func InitOTel(mode string) func() {
	switch mode {
	case "honeycomb":
		shutdown, err := InitOTelHNY()
		if err != nil {
			slog.Error("Could not start Honeycomb tracing", slog.Any("Error", err))
			return func() {}
		}
		slog.Info("Tracing enabled", slog.String("mode", mode))
		return shutdown
	case "otlp":
		tp, err := InitOTelGRF()
		if err != nil {
			slog.Error("Could not start OTLP tracing", slog.Any("Error", err))
			return func() {}
		}
		slog.Info("Tracing enabled", slog.String("mode", mode))
		return func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				slog.Error("Tracer shutdown failed", slog.Any("Error", err))
			}
		}
	default:
		return func() {}
	}
}
