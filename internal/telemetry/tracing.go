package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Togather-Foundation/refunds/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// Shutdown flushes pending spans and releases the exporter.
type Shutdown func(context.Context) error

// InitTracing installs a global tracer provider for batch runs.
//
// When tracing is disabled the global no-op provider is left in place. The
// stdout exporter writes to stderr so it never mixes with the JSON report.
//
//	shutdown, err := telemetry.InitTracing(ctx, cfg.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer shutdown(ctx)
func InitTracing(ctx context.Context, cfg config.TracingConfig, serviceVersion string) (Shutdown, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	sampler, err := newSampler(cfg.SampleRate)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := newExporter(ctx, cfg, os.Stderr)
	if err != nil {
		return nil, err
	}

	tp := newProvider(res, sampler, sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}

func newExporter(ctx context.Context, cfg config.TracingConfig, w io.Writer) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case "stdout":
		exporter, err := stdouttrace.New(
			stdouttrace.WithWriter(w),
			stdouttrace.WithPrettyPrint(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		return exporter, nil
	case "otlp":
		exporter, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		return exporter, nil
	case "none":
		// spans are sampled and ended but dropped
		return noopExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported exporter: %s (must be 'stdout', 'otlp', or 'none')", cfg.Exporter)
	}
}

func newSampler(rate float64) (sdktrace.Sampler, error) {
	switch {
	case rate < 0.0 || rate > 1.0:
		return nil, fmt.Errorf("invalid sample rate %f: must be between 0.0 and 1.0", rate)
	case rate == 1.0:
		return sdktrace.AlwaysSample(), nil
	case rate == 0.0:
		return sdktrace.NeverSample(), nil
	default:
		return sdktrace.TraceIDRatioBased(rate), nil
	}
}

func newProvider(res *resource.Resource, sampler sdktrace.Sampler, processor sdktrace.TracerProviderOption) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
		processor,
	)
}

// GetTracer returns a tracer from the global provider.
func GetTracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

type noopExporter struct{}

func (noopExporter) ExportSpans(context.Context, []sdktrace.ReadOnlySpan) error { return nil }

func (noopExporter) Shutdown(context.Context) error { return nil }
