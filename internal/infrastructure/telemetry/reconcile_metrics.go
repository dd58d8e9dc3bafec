package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/domain/reconcile"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope of the reconciliation metrics
const MeterName = "github.com/cmosqueda1/FMS-TMS-Checkstatus/reconcile"

// Metric attribute keys.
var (
	AttrMode       = attribute.Key("reconcile.mode")
	AttrResult     = attribute.Key("result")
	AttrOutcome    = attribute.Key("reconcile.outcome")
	AttrTraceState = attribute.Key("reconcile.trace_state")
	AttrBackend    = attribute.Key("upstream.backend")
	AttrOperation  = attribute.Key("upstream.operation")
)

// ReconcileMetrics records batch, per-identifier and upstream-call metrics.
// It satisfies both the engine's recorder and the upstream call observer.
type ReconcileMetrics struct {
	batches          *Counter
	batchDuration    *Histogram
	batchSize        *Histogram
	outcomes         *Counter
	traceLookups     *Counter
	upstreamCalls    *Counter
	upstreamDuration *Histogram
}

// NewReconcileMetrics registers the instruments on meter
func NewReconcileMetrics(meter metric.Meter) (*ReconcileMetrics, error) {
	m := &ReconcileMetrics{}
	var err error

	if m.batches, err = NewCounter(meter, "checkstatus.reconcile.batches", "Reconciliation batches by result", "{batch}"); err != nil {
		return nil, err
	}
	if m.batchDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "checkstatus.reconcile.batch.duration",
		Description: "Wall time of one reconciliation batch",
		Unit:        "s",
		Boundaries:  BatchDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.batchSize, err = NewHistogram(meter, HistogramOpts{
		Name:        "checkstatus.reconcile.batch.size",
		Description: "Identifiers per batch",
		Unit:        "{identifier}",
		Boundaries:  BatchSizeBuckets,
	}); err != nil {
		return nil, err
	}
	if m.outcomes, err = NewCounter(meter, "checkstatus.reconcile.detail_outcomes", "Order-System detail outcomes per identifier", "{identifier}"); err != nil {
		return nil, err
	}
	if m.traceLookups, err = NewCounter(meter, "checkstatus.reconcile.trace_lookups", "Trace-System lookups per identifier", "{identifier}"); err != nil {
		return nil, err
	}
	if m.upstreamCalls, err = NewCounter(meter, "checkstatus.upstream.calls", "Upstream HTTP calls by backend and result", "{call}"); err != nil {
		return nil, err
	}
	if m.upstreamDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "checkstatus.upstream.duration",
		Description: "Latency of upstream HTTP calls",
		Unit:        "s",
		Boundaries:  UpstreamDurationBuckets,
	}); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordBatch counts a finished batch
func (m *ReconcileMetrics) RecordBatch(ctx context.Context, mode reconcile.Mode, size int, elapsed time.Duration, err error) {
	attrs := []attribute.KeyValue{AttrMode.String(mode.String()), AttrResult.String(batchResult(err))}
	m.batches.Inc(ctx, attrs...)
	m.batchDuration.RecordDuration(ctx, elapsed, attrs...)
	m.batchSize.Record(ctx, float64(size), AttrMode.String(mode.String()))
}

// RecordResults counts detail outcomes and trace lookups per identifier
func (m *ReconcileMetrics) RecordResults(ctx context.Context, mode reconcile.Mode, results []reconcile.ReconciliationResult) {
	outcomes := make(map[string]int64)
	traces := make(map[string]int64)
	for _, r := range results {
		outcome := "unresolved"
		if r.Order.HasOrderRef {
			outcome = r.Order.Detail.Outcome.String()
		}
		outcomes[outcome]++

		switch {
		case !r.Trace.Attempted:
			traces["skipped"]++
		case r.Trace.NotFound:
			traces["not_found"]++
		default:
			traces["found"]++
		}
	}

	modeAttr := AttrMode.String(mode.String())
	for outcome, n := range outcomes {
		m.outcomes.Add(ctx, n, modeAttr, AttrOutcome.String(outcome))
	}
	for state, n := range traces {
		m.traceLookups.Add(ctx, n, modeAttr, AttrTraceState.String(state))
	}
}

// ObserveCall records one upstream HTTP call
func (m *ReconcileMetrics) ObserveCall(ctx context.Context, backend, op string, elapsed time.Duration, err error) {
	attrs := []attribute.KeyValue{
		AttrBackend.String(backend),
		AttrOperation.String(op),
		AttrResult.String(callResult(err)),
	}
	m.upstreamCalls.Inc(ctx, attrs...)
	m.upstreamDuration.RecordDuration(ctx, elapsed, attrs...)
}

func batchResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, reconcile.ErrConfig):
		return "config_error"
	case errors.Is(err, reconcile.ErrAuth):
		return "auth_error"
	case errors.Is(err, reconcile.ErrUpstream):
		return "upstream_error"
	default:
		return "rejected"
	}
}

func callResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case reconcile.IsUnreachable(err):
		return "unreachable"
	case errors.Is(err, reconcile.ErrMalformed):
		return "malformed"
	default:
		return "rejected"
	}
}
