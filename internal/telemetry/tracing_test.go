package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/Togather-Foundation/refunds/internal/config"
	"github.com/Togather-Foundation/refunds/internal/domain/refunds"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitTracingDisabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), config.TracingConfig{Enabled: false}, "test")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestInitTracingRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.TracingConfig
		want string
	}{
		{
			name: "sample rate above one",
			cfg:  config.TracingConfig{Enabled: true, Exporter: "none", SampleRate: 1.5},
			want: "invalid sample rate",
		},
		{
			name: "unknown exporter",
			cfg:  config.TracingConfig{Enabled: true, Exporter: "jaeger", SampleRate: 1},
			want: "unsupported exporter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := InitTracing(context.Background(), tt.cfg, "test")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestInitTracingNoneExporter(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	cfg := config.TracingConfig{Enabled: true, Exporter: "none", ServiceName: "refunds", SampleRate: 1}
	shutdown, err := InitTracing(context.Background(), cfg, "test")
	require.NoError(t, err)

	_, span := GetTracer("test").Start(context.Background(), "probe")
	assert.True(t, span.SpanContext().IsSampled())
	span.End()

	require.NoError(t, shutdown(context.Background()))
}

func TestNewSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{rate: 1, want: "AlwaysOnSampler"},
		{rate: 0, want: "AlwaysOffSampler"},
		{rate: 0.25, want: "TraceIDRatioBased{0.25}"},
	}
	for _, tt := range tests {
		sampler, err := newSampler(tt.rate)
		require.NoError(t, err)
		assert.Equal(t, tt.want, sampler.Description())
	}
}

func TestStdoutExporterWritesSpans(t *testing.T) {
	var buf bytes.Buffer
	exporter, err := newExporter(context.Background(), config.TracingConfig{Exporter: "stdout"}, &buf)
	require.NoError(t, err)

	tp := newProvider(resource.Empty(), sdktrace.AlwaysSample(), sdktrace.WithSyncer(exporter))
	_, span := tp.Tracer("test").Start(context.Background(), "stdout-probe")
	span.End()
	require.NoError(t, tp.Shutdown(context.Background()))

	assert.Contains(t, buf.String(), "stdout-probe")
}

func TestProcessorEmitsBatchSpan(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(tp)

	policy, err := config.LoadPolicy("")
	require.NoError(t, err)

	report, err := refunds.NewProcessor(policy).Process(context.Background(), []refunds.RawRequest{{
		Name:              "Emma Wilson",
		CustomerLocation:  "Europe (GMT)",
		Channel:           "phone",
		SignUpDate:        "15/03/2021",
		InvestmentDate:    "20/04/2021",
		InvestmentTime:    "14:45",
		RefundRequestDate: "10/05/2021",
		RefundRequestTime: "09:30",
	}})
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "refunds.Process", spans[0].Name())

	attrs := map[string]any{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, report.ID, attrs["batch.id"])
	assert.Equal(t, int64(1), attrs["batch.size"])
}
