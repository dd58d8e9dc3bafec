package reconcile

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/domain/reconcile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func unreachable() error {
	return fmt.Errorf("dial tcp: %w", reconcile.ErrUnreachable)
}

func rejected() error {
	return fmt.Errorf("status 500: %w", reconcile.ErrRejected)
}

func TestEngine_Reconcile_MixedBatch(t *testing.T) {
	orders := newFakeOrderSystem()
	orders.addOrder("1000000001", "DO100001", "LAX", "IN_TRANSIT", "DEPARTED")
	orders.addOrder("1000000002", "DO100002", "", "", "")
	orders.headErrs["DO100002"] = unreachable()

	traces := healthyTraceSystem([]reconcile.TraceRow{{
		TrackingNumber: "1000000001",
		Record:         reconcile.TraceRecord{ExternalOrderID: "T-1", Location: "LAX", Status: "IN_TRANSIT"},
	}})
	rec := &recordingRecorder{}
	engine := NewEngine(orders, traces, newMapTokenStore(), EngineConfig{}, WithRecorder(rec))

	ids := []string{"1000000001", "1000000002", "1000000003"}
	results, err := engine.Reconcile(context.Background(), reconcile.ModeTracking, ids)
	require.NoError(t, err)
	require.Len(t, results, 3)

	ok := results[0]
	assert.Equal(t, "1000000001", ok.Identifier)
	assert.True(t, ok.Order.HasOrderRef)
	assert.Equal(t, reconcile.OrderReference("DO100001"), ok.Order.OrderRef)
	assert.True(t, ok.Order.Detail.OK())
	assert.Equal(t, "LAX", ok.Order.Detail.Location)
	assert.Equal(t, "DEPARTED", ok.Order.Detail.SubStatus)
	assert.True(t, ok.Trace.OK())
	assert.Equal(t, "T-1", ok.Trace.Record.ExternalOrderID)

	netErr := results[1]
	assert.True(t, netErr.Order.HasOrderRef)
	assert.True(t, netErr.Order.Detail.NetworkError())
	assert.Empty(t, netErr.Order.Detail.Location)
	assert.True(t, netErr.Trace.Attempted)
	assert.True(t, netErr.Trace.NotFound)

	missing := results[2]
	assert.Equal(t, "1000000003", missing.Identifier)
	assert.False(t, missing.Order.HasOrderRef)
	assert.True(t, missing.Trace.NotFound)

	assert.Equal(t, 1, orders.searches)
	assert.Equal(t, int32(2), orders.basicCalls.Load())
	assert.Equal(t, int32(2), orders.headCalls.Load())
	assert.Equal(t, 1, rec.batches)
	assert.NoError(t, rec.lastErr)
	assert.Len(t, rec.results, 3)
	traces.AssertNumberOfCalls(t, "Query", 1)
}

func TestEngine_Reconcile_TraceLoginFailure(t *testing.T) {
	orders := newFakeOrderSystem()
	orders.addOrder("1000000001", "DO100001", "LAX", "DELIVERED", "")

	traces := new(mockTraceSystem)
	traces.On("MissingCredentials").Return(nil)
	traces.On("Login", mock.Anything).Return(reconcile.TraceSession{}, rejected())

	engine := NewEngine(orders, traces, newMapTokenStore(), EngineConfig{})
	results, err := engine.Reconcile(context.Background(), reconcile.ModeTracking, []string{"1000000001"})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.True(t, results[0].Order.OK())
	assert.False(t, results[0].Trace.Attempted)
	assert.False(t, results[0].Trace.NotFound)
	traces.AssertNotCalled(t, "Query", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEngine_Reconcile_TraceMissingCredentials(t *testing.T) {
	orders := newFakeOrderSystem()
	traces := new(mockTraceSystem)
	traces.On("MissingCredentials").Return([]string{"password"})

	engine := NewEngine(orders, traces, newMapTokenStore(), EngineConfig{})
	results, err := engine.Reconcile(context.Background(), reconcile.ModeTracking, []string{"1000000001"})
	require.NoError(t, err)
	assert.False(t, results[0].Trace.Attempted)
	traces.AssertNotCalled(t, "Login", mock.Anything)
}

func TestEngine_Reconcile_TraceQueryFailure(t *testing.T) {
	orders := newFakeOrderSystem()
	traces := new(mockTraceSystem)
	traces.On("MissingCredentials").Return(nil)
	traces.On("Login", mock.Anything).Return(testSession, nil)
	traces.On("SetActiveGroup", mock.Anything, testSession).Return(errors.New("group denied"))
	traces.On("Query", mock.Anything, testSession, reconcile.ModePickup, []string{"PU-0001"}).Return(nil, unreachable())

	engine := NewEngine(orders, traces, newMapTokenStore(), EngineConfig{})
	results, err := engine.Reconcile(context.Background(), reconcile.ModePickup, []string{"PU-0001"})
	require.NoError(t, err)
	assert.False(t, results[0].Trace.Attempted)
	traces.AssertExpectations(t)
}

func TestEngine_Reconcile_NoRowsSkipsDetail(t *testing.T) {
	orders := newFakeOrderSystem()
	traces := healthyTraceSystem(nil)
	engine := NewEngine(orders, traces, newMapTokenStore(), EngineConfig{})

	results, err := engine.Reconcile(context.Background(), reconcile.ModeTracking, []string{"1000000001", "1000000002"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.False(t, r.Order.HasOrderRef)
		assert.True(t, r.Trace.NotFound)
	}
	assert.Zero(t, orders.basicCalls.Load())
	assert.Zero(t, orders.headCalls.Load())
}

func TestEngine_Reconcile_FatalErrors(t *testing.T) {
	t.Run("missing order-system credentials", func(t *testing.T) {
		orders := newFakeOrderSystem()
		orders.missing = []string{"account", "password"}
		traces := new(mockTraceSystem)
		rec := &recordingRecorder{}

		engine := NewEngine(orders, traces, newMapTokenStore(), EngineConfig{}, WithRecorder(rec))
		_, err := engine.Reconcile(context.Background(), reconcile.ModeTracking, []string{"1000000001"})

		var cfgErr *reconcile.ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, []string{"account", "password"}, cfgErr.Missing)
		assert.Zero(t, orders.logins)
		assert.Zero(t, orders.searches)
		assert.ErrorIs(t, rec.lastErr, reconcile.ErrConfig)
	})

	t.Run("login failure", func(t *testing.T) {
		orders := newFakeOrderSystem()
		orders.loginErr = rejected()

		engine := NewEngine(orders, new(mockTraceSystem), newMapTokenStore(), EngineConfig{})
		_, err := engine.Reconcile(context.Background(), reconcile.ModeTracking, []string{"1000000001"})

		assert.ErrorIs(t, err, reconcile.ErrAuth)
		assert.ErrorIs(t, err, reconcile.ErrRejected)
		assert.Zero(t, orders.searches)
	})

	t.Run("search failure", func(t *testing.T) {
		orders := newFakeOrderSystem()
		orders.searchErr = unreachable()

		engine := NewEngine(orders, new(mockTraceSystem), newMapTokenStore(), EngineConfig{})
		_, err := engine.Reconcile(context.Background(), reconcile.ModeTracking, []string{"1000000001"})

		var upErr *reconcile.UpstreamError
		require.ErrorAs(t, err, &upErr)
		assert.Equal(t, reconcile.BackendOrderSystem, upErr.Backend)
		assert.ErrorIs(t, err, reconcile.ErrUpstream)
		assert.Zero(t, orders.basicCalls.Load())
	})
}

func TestEngine_Reconcile_InputValidation(t *testing.T) {
	orders := newFakeOrderSystem()
	engine := NewEngine(orders, new(mockTraceSystem), newMapTokenStore(), EngineConfig{})

	_, err := engine.Reconcile(context.Background(), reconcile.Mode("bogus"), []string{"1000000001"})
	assert.ErrorIs(t, err, reconcile.ErrInvalidMode)

	tooMany := make([]string, reconcile.MaxBatchSize+1)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("%010d", i)
	}
	_, err = engine.Reconcile(context.Background(), reconcile.ModeTracking, tooMany)
	assert.ErrorIs(t, err, reconcile.ErrBatchTooLarge)

	results, err := engine.Reconcile(context.Background(), reconcile.ModeTracking, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, orders.logins)
}

func TestEngine_Reconcile_CustomMaxBatch(t *testing.T) {
	engine := NewEngine(newFakeOrderSystem(), new(mockTraceSystem), newMapTokenStore(), EngineConfig{MaxBatch: 2})
	assert.Equal(t, 2, engine.MaxBatch())

	_, err := engine.Reconcile(context.Background(), reconcile.ModeTracking, []string{"1000000001", "1000000002", "1000000003"})
	assert.ErrorIs(t, err, reconcile.ErrBatchTooLarge)

	assert.Equal(t, reconcile.MaxBatchSize, NewEngine(nil, nil, nil, EngineConfig{MaxBatch: 500}).MaxBatch())
}

func TestEngine_Reconcile_BoundedConcurrency(t *testing.T) {
	orders := newFakeOrderSystem()
	orders.callDelay = 20 * time.Millisecond
	ids := make([]string, 20)
	for i := range ids {
		ids[i] = fmt.Sprintf("20000000%02d", i)
		orders.addOrder(ids[i], reconcile.OrderReference(fmt.Sprintf("DO2000%02d", i)), "LOC", "ST", "")
	}

	engine := NewEngine(orders, healthyTraceSystem(nil), newMapTokenStore(), EngineConfig{Concurrency: 5})
	results, err := engine.Reconcile(context.Background(), reconcile.ModeTracking, ids)
	require.NoError(t, err)

	// five fetches, each with its location and status call open together
	assert.LessOrEqual(t, orders.maxInFlight.Load(), int32(10))
	assert.Greater(t, orders.maxInFlight.Load(), int32(1))
	assert.Equal(t, int32(20), orders.basicCalls.Load())
	assert.Equal(t, int32(20), orders.headCalls.Load())
	for i, r := range results {
		assert.Equal(t, ids[i], r.Identifier)
		assert.Equal(t, reconcile.OrderReference(fmt.Sprintf("DO2000%02d", i)), r.Order.OrderRef)
		assert.True(t, r.Order.Detail.OK())
	}
}

func TestEngine_Reconcile_BatchTimeout(t *testing.T) {
	orders := newFakeOrderSystem()
	orders.hang = true
	orders.addOrder("3000000001", "DO400001", "LAX", "ST", "")
	orders.addOrder("3000000002", "DO400002", "LAX", "ST", "")

	engine := NewEngine(orders, healthyTraceSystem(nil), newMapTokenStore(), EngineConfig{
		Concurrency:  5,
		BatchTimeout: 50 * time.Millisecond,
	})

	start := time.Now()
	results, err := engine.Reconcile(context.Background(), reconcile.ModeTracking, []string{"3000000001", "3000000002"})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)

	require.Len(t, results, 2)
	for _, r := range results {
		assert.True(t, r.Order.HasOrderRef)
		assert.True(t, r.Order.Detail.NetworkError(), r.Identifier)
	}
}

func TestEngine_Reconcile_SharedReferenceFetchedOnce(t *testing.T) {
	orders := newFakeOrderSystem()
	orders.addOrder("1000000001", "DO300001", "SFO", "HOLD", "")
	orders.addOrder("1000000002", "DO300001", "SFO", "HOLD", "")

	engine := NewEngine(orders, healthyTraceSystem(nil), newMapTokenStore(), EngineConfig{})
	results, err := engine.Reconcile(context.Background(), reconcile.ModeTracking, []string{"1000000001", "1000000002"})
	require.NoError(t, err)

	assert.Equal(t, int32(1), orders.basicCalls.Load())
	assert.Equal(t, results[0].Order.Detail, results[1].Order.Detail)
	assert.Equal(t, "SFO", results[1].Order.Detail.Location)
}

func TestEngine_Reconcile_TokenReuseAndRefresh(t *testing.T) {
	orders := newFakeOrderSystem()
	tokens := newMapTokenStore()
	engine := NewEngine(orders, healthyTraceSystem(nil), tokens, EngineConfig{})
	ctx := context.Background()
	ids := []string{"1000000001"}

	_, err := engine.Reconcile(ctx, reconcile.ModeTracking, ids)
	require.NoError(t, err)
	_, err = engine.Reconcile(ctx, reconcile.ModeTracking, ids)
	require.NoError(t, err)
	assert.Equal(t, 1, orders.logins)
	assert.Equal(t, "fms-token-1", orders.lastToken)

	_, err = engine.Reconcile(ctx, reconcile.ModeTracking, ids, WithForceRefresh())
	require.NoError(t, err)
	assert.Equal(t, 2, orders.logins)
	assert.Equal(t, "fms-token-2", orders.lastToken)

	perBatch := NewEngine(orders, healthyTraceSystem(nil), tokens, EngineConfig{RefreshPerBatch: true})
	_, err = perBatch.Reconcile(ctx, reconcile.ModeTracking, ids)
	require.NoError(t, err)
	assert.Equal(t, 3, orders.logins)
}
