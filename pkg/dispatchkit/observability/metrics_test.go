package observability

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestNewMetricsRecorderRecordsThroughOTel(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)
	defer provider.Shutdown(context.Background())

	rec := NewMetricsRecorder()
	ctx := context.Background()
	rec.RecordDispatch(ctx, "user.create", "success", 25*time.Millisecond)
	rec.RecordFailure(ctx, "payment.process", "dependency_unavailable", true)
	rec.RecordDuplicate(ctx, "user.create")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	got := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			got[m.Name] = true
		}
	}
	for _, name := range []string{
		"dispatchkit.dispatches",
		"dispatchkit.dispatch.latency_ms",
		"dispatchkit.dispatch.failures",
		"dispatchkit.dispatch.duplicates",
	} {
		if !got[name] {
			t.Errorf("metric %q not collected; got %v", name, got)
		}
	}
}

func TestNoopMetrics(t *testing.T) {
	// Must be callable without any provider configured.
	var rec MetricsRecorder = NoopMetrics{}
	ctx := context.Background()
	rec.RecordDispatch(ctx, "user.create", "success", time.Millisecond)
	rec.RecordFailure(ctx, "user.create", "handler_error", false)
	rec.RecordDuplicate(ctx, "user.create")
}
