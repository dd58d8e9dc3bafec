package telemetry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/domain/reconcile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*ReconcileMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := NewReconcileMetrics(provider.Meter(MeterName))
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

// sumByAttr returns counter values keyed by the value of attribute key
func sumByAttr(t *testing.T, m metricdata.Metrics, key attribute.Key) map[string]int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)

	out := make(map[string]int64)
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value(key)
		out[v.AsString()] += dp.Value
	}
	return out
}

func TestReconcileMetrics_RecordResults(t *testing.T) {
	m, reader := newTestMetrics(t)

	results := []reconcile.ReconciliationResult{
		{
			Identifier: "1000000001",
			Order:      reconcile.OrderSide{HasOrderRef: true, Detail: reconcile.DetailRecord{Outcome: reconcile.OutcomeOK}},
			Trace:      reconcile.TraceSide{Attempted: true},
		},
		{
			Identifier: "1000000002",
			Order:      reconcile.OrderSide{HasOrderRef: true, Detail: reconcile.DetailRecord{Outcome: reconcile.OutcomeNetworkError}},
			Trace:      reconcile.TraceSide{Attempted: true, NotFound: true},
		},
		{Identifier: "1000000003"},
	}
	m.RecordResults(context.Background(), reconcile.ModeTracking, results)

	metrics := collect(t, reader)
	assert.Equal(t, map[string]int64{"ok": 1, "network_error": 1, "unresolved": 1},
		sumByAttr(t, metrics["checkstatus.reconcile.detail_outcomes"], AttrOutcome))
	assert.Equal(t, map[string]int64{"found": 1, "not_found": 1, "skipped": 1},
		sumByAttr(t, metrics["checkstatus.reconcile.trace_lookups"], AttrTraceState))
}

func TestReconcileMetrics_RecordBatch(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordBatch(ctx, reconcile.ModePickup, 10, time.Second, nil)
	m.RecordBatch(ctx, reconcile.ModePickup, 3, time.Second, &reconcile.AuthError{Backend: reconcile.BackendOrderSystem, Err: errors.New("denied")})
	m.RecordBatch(ctx, reconcile.ModePickup, 3, time.Second, &reconcile.ConfigError{Backend: reconcile.BackendOrderSystem})

	metrics := collect(t, reader)
	assert.Equal(t, map[string]int64{"ok": 1, "auth_error": 1, "config_error": 1},
		sumByAttr(t, metrics["checkstatus.reconcile.batches"], AttrResult))

	hist, ok := metrics["checkstatus.reconcile.batch.size"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(3), hist.DataPoints[0].Count)
	assert.Equal(t, float64(16), hist.DataPoints[0].Sum)
}

func TestReconcileMetrics_ObserveCall(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.ObserveCall(ctx, reconcile.BackendOrderSystem, "search", 100*time.Millisecond, nil)
	m.ObserveCall(ctx, reconcile.BackendOrderSystem, "basic", time.Second, fmt.Errorf("x: %w", reconcile.ErrUnreachable))
	m.ObserveCall(ctx, reconcile.BackendTraceSystem, "query", time.Second, fmt.Errorf("x: %w", reconcile.ErrMalformed))
	m.ObserveCall(ctx, reconcile.BackendTraceSystem, "login", time.Second, reconcile.ErrRejected)

	metrics := collect(t, reader)
	assert.Equal(t, map[string]int64{"ok": 1, "unreachable": 1, "malformed": 1, "rejected": 1},
		sumByAttr(t, metrics["checkstatus.upstream.calls"], AttrResult))
	assert.Equal(t, map[string]int64{reconcile.BackendOrderSystem: 2, reconcile.BackendTraceSystem: 2},
		sumByAttr(t, metrics["checkstatus.upstream.calls"], AttrBackend))

	_, ok := metrics["checkstatus.upstream.duration"].Data.(metricdata.Histogram[float64])
	assert.True(t, ok)
}
