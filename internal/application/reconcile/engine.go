// Package reconcile orchestrates one reconciliation batch: authenticate,
// resolve identifiers, gather detail and trace data, and merge the results.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/domain/reconcile"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/infrastructure/concurrency"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/application/reconcile"

// Recorder receives batch-level measurements
type Recorder interface {
	RecordBatch(ctx context.Context, mode reconcile.Mode, size int, elapsed time.Duration, err error)
	RecordResults(ctx context.Context, mode reconcile.Mode, results []reconcile.ReconciliationResult)
}

type noopRecorder struct{}

func (noopRecorder) RecordBatch(context.Context, reconcile.Mode, int, time.Duration, error) {}
func (noopRecorder) RecordResults(context.Context, reconcile.Mode, []reconcile.ReconciliationResult) {
}

// EngineConfig holds batch behaviour settings
type EngineConfig struct {
	// Concurrency is the ceiling on in-flight detail fetches. A fetch issues
	// its location and status calls together, so up to 2*Concurrency
	// Order-System calls can be open at once.
	Concurrency int
	// MaxBatch rejects larger batches; values outside [1, MaxBatchSize] mean MaxBatchSize
	MaxBatch int
	// RefreshPerBatch logs in to Order-System at the start of every batch
	RefreshPerBatch bool
	// BatchTimeout caps a whole Reconcile call; zero means the caller's
	// context alone decides
	BatchTimeout time.Duration
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithRecorder attaches a metrics recorder
func WithRecorder(r Recorder) EngineOption {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithSessionOptions passes options to the engine's SessionStore
func WithSessionOptions(opts ...SessionOption) EngineOption {
	return func(e *Engine) {
		e.sessionOpts = append(e.sessionOpts, opts...)
	}
}

// Engine runs reconciliation batches
type Engine struct {
	sessions *SessionStore
	resolver *IdentifierResolver
	details  *DetailGatherer
	traces   *TraceGatherer
	recorder Recorder
	tracer   trace.Tracer

	maxBatch        int
	refreshPerBatch bool
	batchTimeout    time.Duration
	sessionOpts     []SessionOption
}

// NewEngine wires an Engine over the two backends and a token store
func NewEngine(orders reconcile.OrderSystem, traces reconcile.TraceSystem, tokens reconcile.TokenStore, cfg EngineConfig, opts ...EngineOption) *Engine {
	e := &Engine{
		resolver:        NewIdentifierResolver(orders),
		details:         NewDetailGatherer(orders, concurrency.NewLimiter(cfg.Concurrency)),
		traces:          NewTraceGatherer(traces),
		recorder:        noopRecorder{},
		tracer:          otel.Tracer(tracerName),
		maxBatch:        cfg.MaxBatch,
		refreshPerBatch: cfg.RefreshPerBatch,
		batchTimeout:    cfg.BatchTimeout,
	}
	if e.maxBatch < 1 || e.maxBatch > reconcile.MaxBatchSize {
		e.maxBatch = reconcile.MaxBatchSize
	}
	for _, opt := range opts {
		opt(e)
	}
	e.sessions = NewSessionStore(orders, traces, tokens, e.sessionOpts...)
	return e
}

// Sessions exposes the session store for token invalidation
func (e *Engine) Sessions() *SessionStore {
	return e.sessions
}

// MaxBatch returns the largest batch Reconcile accepts
func (e *Engine) MaxBatch() int {
	return e.maxBatch
}

type reconcileOptions struct {
	forceRefresh bool
}

// ReconcileOption tunes a single Reconcile call
type ReconcileOption func(*reconcileOptions)

// WithForceRefresh discards the cached Order-System token before the batch
func WithForceRefresh() ReconcileOption {
	return func(o *reconcileOptions) {
		o.forceRefresh = true
	}
}

// Reconcile returns one result per identifier, in input order.
//
// Only three failures abort the batch: missing Order-System configuration
// (*ConfigError), a failed Order-System login (*AuthError) and a failed
// search (*UpstreamError). Trace-System problems leave Trace.Attempted false,
// and per-identifier detail failures are recorded in each result.
func (e *Engine) Reconcile(ctx context.Context, mode reconcile.Mode, identifiers []string, opts ...ReconcileOption) (results []reconcile.ReconciliationResult, err error) {
	if !mode.IsValid() {
		return nil, fmt.Errorf("%w: %q", reconcile.ErrInvalidMode, mode)
	}
	if len(identifiers) > e.maxBatch {
		return nil, fmt.Errorf("%w: %d identifiers, max %d", reconcile.ErrBatchTooLarge, len(identifiers), e.maxBatch)
	}
	if len(identifiers) == 0 {
		return []reconcile.ReconciliationResult{}, nil
	}

	var o reconcileOptions
	for _, opt := range opts {
		opt(&o)
	}

	if e.batchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.batchTimeout)
		defer cancel()
	}

	batchID := uuid.New().String()
	ctx, _ = logger.WithBatchID(ctx, logger.FromContext(ctx), batchID)
	ctx, span := e.tracer.Start(ctx, "reconcile.batch", trace.WithAttributes(
		attribute.String("reconcile.batch_id", batchID),
		attribute.String("reconcile.mode", mode.String()),
		attribute.Int("reconcile.size", len(identifiers)),
	))
	start := time.Now()
	defer func() {
		e.recorder.RecordBatch(ctx, mode, len(identifiers), time.Since(start), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	log := logger.L(ctx)
	log.Info("reconciling batch", zap.String("mode", mode.String()), zap.Int("size", len(identifiers)))

	token, err := e.sessions.OrderSystemToken(ctx, o.forceRefresh || e.refreshPerBatch)
	if err != nil {
		return nil, err
	}

	refs, err := e.resolver.Resolve(ctx, token, mode, identifiers)
	if err != nil {
		return nil, err
	}

	traceDone := make(chan struct{})
	var (
		traceRecords   map[string]reconcile.TraceRecord
		traceAttempted bool
	)
	go func() {
		defer close(traceDone)
		traceRecords, traceAttempted = e.gatherTraces(ctx, mode, identifiers)
	}()

	uniqueRefs := uniqueReferences(identifiers, refs)
	records := e.details.FetchAll(ctx, token, uniqueRefs)
	details := make(map[reconcile.OrderReference]reconcile.DetailRecord, len(uniqueRefs))
	for i, ref := range uniqueRefs {
		details[ref] = records[i]
	}

	<-traceDone

	results = Merge(identifiers, refs, details, traceRecords, traceAttempted)
	e.recorder.RecordResults(ctx, mode, results)

	log.Info("batch reconciled",
		zap.Int("resolved", len(refs)),
		zap.Int("detail_fetches", len(uniqueRefs)),
		zap.Bool("trace_attempted", traceAttempted),
		zap.Int("trace_records", len(traceRecords)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return results, nil
}

// gatherTraces logs in to Trace-System and queries the whole batch. Any
// failure is logged and reported as not attempted.
func (e *Engine) gatherTraces(ctx context.Context, mode reconcile.Mode, identifiers []string) (map[string]reconcile.TraceRecord, bool) {
	session, err := e.sessions.LoginTraceSystem(ctx)
	if err != nil {
		logger.L(ctx).Warn("Trace-System unavailable, skipping trace lookup", zap.Error(err))
		return nil, false
	}

	records, err := e.traces.TraceBatch(ctx, session, mode, identifiers)
	if err != nil {
		logger.L(ctx).Warn("Trace-System query failed", zap.Error(err))
		return nil, false
	}
	return records, true
}

// uniqueReferences lists each resolved reference once, in first-seen input order
func uniqueReferences(identifiers []string, refs map[string]reconcile.OrderReference) []reconcile.OrderReference {
	seen := make(map[reconcile.OrderReference]struct{}, len(refs))
	out := make([]reconcile.OrderReference, 0, len(refs))
	for _, id := range identifiers {
		ref, ok := refs[id]
		if !ok {
			continue
		}
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}
	return out
}
