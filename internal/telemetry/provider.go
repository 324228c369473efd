package telemetry

import (
	"context"

	"github.com/jrsteele09/go-auth-frontdoor/internal/config"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ShutdownFunc flushes pending spans.
type ShutdownFunc func(context.Context) error

// Setup initialises OpenTelemetry tracing for the service.
//
// Tracing is opt-in: without an OTLP endpoint, or when disabled, Setup
// returns a no-op shutdown function and leaves the global provider alone.
// The returned shutdown function should be deferred by the caller.
func Setup(ctx context.Context, cfg config.TelemetryConfig, serviceName string) (ShutdownFunc, error) {
	noop := func(context.Context) error { return nil }

	endpoint := cfg.GetOtelEndpoint()
	if !cfg.GetOtelEnabled() || endpoint == "" {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	if err != nil {
		return noop, errors.Wrap(err, "[telemetry.Setup] create exporter")
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return noop, errors.Wrap(err, "[telemetry.Setup] create resource")
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}
