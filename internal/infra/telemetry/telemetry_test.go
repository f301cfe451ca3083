package telemetry

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"

	"github.com/Emmakaranja1/Finance-Tracker/internal/infra/config"
)

func TestAuthMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewAuthMetrics(reg)

	metrics.Observe(EventLogin, OutcomeSuccess)
	metrics.Observe(EventLogin, OutcomeRejected)
	metrics.Observe(EventLogin, OutcomeRejected)

	if got := testutil.ToFloat64(metrics.Counter().WithLabelValues(EventLogin, OutcomeRejected)); got != 2 {
		t.Fatalf("expected 2 rejected logins, got %v", got)
	}

	again := NewAuthMetrics(reg)
	again.Observe(EventLogin, OutcomeSuccess)
	if got := testutil.ToFloat64(metrics.Counter().WithLabelValues(EventLogin, OutcomeSuccess)); got != 2 {
		t.Fatalf("expected shared collector after re-registration, got %v", got)
	}

	var nilMetrics *AuthMetrics
	nilMetrics.Observe(EventSignup, OutcomeError)
}

func TestTracerProviderRecordsSpans(t *testing.T) {
	t.Cleanup(func() { otel.SetTracerProvider(sdktrace.NewTracerProvider()) })

	exporter := tracetest.NewInMemoryExporter()
	tp, err := newTracerProvider(context.Background(), config.TelemetrySettings{
		ServiceName:  "finance-tracker-test",
		SamplingRate: 1,
	}, zaptest.NewLogger(t), sdktrace.WithSyncer(exporter))
	if err != nil {
		t.Fatalf("newTracerProvider returned error: %v", err)
	}

	_, span := otel.Tracer("test").Start(context.Background(), "op")
	span.End()

	if err := tp.provider.ForceFlush(context.Background()); err != nil {
		t.Fatalf("ForceFlush returned error: %v", err)
	}
	// The in-memory exporter drops its spans on shutdown, so read them first.
	spans := exporter.GetSpans()
	if err := tp.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}
	if len(spans) != 1 || spans[0].Name != "op" {
		t.Fatalf("expected one recorded span, got %v", spans)
	}
}
