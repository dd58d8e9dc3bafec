package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext_ReturnsNopWhenMissing(t *testing.T) {
	l := FromContext(context.Background())
	require.NotNil(t, l)
}

func TestWithRequestAndBatchID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx, _ := WithRequestID(context.Background(), base, "req-1")
	ctx, _ = WithBatchID(ctx, FromContext(ctx), "batch-1")
	ctx, _ = WithCaller(ctx, FromContext(ctx), "ops-dashboard")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "batch-1", GetBatchID(ctx))
	assert.Equal(t, "ops-dashboard", GetCaller(ctx))

	L(ctx).Info("reconciled")

	entries := recorded.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "batch-1", fields["batch_id"])
	assert.Equal(t, "ops-dashboard", fields["caller"])
}

func TestContextLogger_AddsTraceFields(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	base := zap.New(core)

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	WithLogger(ctx, base).With(zap.String("mode", "tracking")).Debug("resolved")

	entries := recorded.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, traceID.String(), fields["trace_id"])
	assert.Equal(t, spanID.String(), fields["span_id"])
	assert.Equal(t, "tracking", fields["mode"])
	assert.Equal(t, traceID.String(), GetTraceID(ctx))
}

func TestContextLogger_NoSpan(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	WithLogger(context.Background(), zap.New(core)).Warn("no span")

	entries := recorded.All()
	require.Len(t, entries, 1)
	_, hasTrace := entries[0].ContextMap()["trace_id"]
	assert.False(t, hasTrace)
	assert.Empty(t, GetTraceID(context.Background()))
}
