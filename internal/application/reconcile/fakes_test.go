package reconcile

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/domain/reconcile"
	"github.com/stretchr/testify/mock"
)

// fakeOrderSystem is an in-memory Order-System with call accounting
type fakeOrderSystem struct {
	mu sync.Mutex

	missing    []string
	token      string
	loginErr   error
	rows       []reconcile.OrderRow
	searchErr  error
	locations  map[reconcile.OrderReference]string
	basicErrs  map[reconcile.OrderReference]error
	statuses   map[reconcile.OrderReference][2]string
	headErrs   map[reconcile.OrderReference]error
	callDelay  time.Duration
	// hang makes detail calls block until ctx is done
	hang bool

	logins      int
	searches    int
	lastToken   string
	basicCalls  atomic.Int32
	headCalls   atomic.Int32
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func newFakeOrderSystem() *fakeOrderSystem {
	return &fakeOrderSystem{
		token:     "fms-token",
		locations: make(map[reconcile.OrderReference]string),
		basicErrs: make(map[reconcile.OrderReference]error),
		statuses:  make(map[reconcile.OrderReference][2]string),
		headErrs:  make(map[reconcile.OrderReference]error),
	}
}

func (f *fakeOrderSystem) addOrder(id string, ref reconcile.OrderReference, location, status, subStatus string) {
	f.rows = append(f.rows, reconcile.OrderRow{TrackingNumber: id, OrderRef: ref})
	f.locations[ref] = location
	f.statuses[ref] = [2]string{status, subStatus}
}

func (f *fakeOrderSystem) MissingCredentials() []string { return f.missing }

func (f *fakeOrderSystem) Login(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins++
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return fmt.Sprintf("%s-%d", f.token, f.logins), nil
}

func (f *fakeOrderSystem) Search(ctx context.Context, token string, mode reconcile.Mode, ids []string) ([]reconcile.OrderRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches++
	f.lastToken = token
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.rows, nil
}

// detailCall tracks one in-flight location or status call
func (f *fakeOrderSystem) detailCall(ctx context.Context) error {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.maxInFlight.Load()
		if n <= peak || f.maxInFlight.CompareAndSwap(peak, n) {
			break
		}
	}
	if f.hang {
		<-ctx.Done()
		return fmt.Errorf("%w: %v", reconcile.ErrUnreachable, ctx.Err())
	}
	if f.callDelay > 0 {
		time.Sleep(f.callDelay)
	}
	return nil
}

func (f *fakeOrderSystem) Location(ctx context.Context, token string, ref reconcile.OrderReference) (string, error) {
	f.basicCalls.Add(1)
	if err := f.detailCall(ctx); err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.basicErrs[ref]; err != nil {
		return "", err
	}
	return f.locations[ref], nil
}

func (f *fakeOrderSystem) Status(ctx context.Context, token string, ref reconcile.OrderReference) (string, string, error) {
	f.headCalls.Add(1)
	if err := f.detailCall(ctx); err != nil {
		return "", "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.headErrs[ref]; err != nil {
		return "", "", err
	}
	s := f.statuses[ref]
	return s[0], s[1], nil
}

// mockTraceSystem is a testify mock of the Trace-System port
type mockTraceSystem struct {
	mock.Mock
}

func (m *mockTraceSystem) MissingCredentials() []string {
	args := m.Called()
	missing, _ := args.Get(0).([]string)
	return missing
}

func (m *mockTraceSystem) Login(ctx context.Context) (reconcile.TraceSession, error) {
	args := m.Called(ctx)
	return args.Get(0).(reconcile.TraceSession), args.Error(1)
}

func (m *mockTraceSystem) SetActiveGroup(ctx context.Context, session reconcile.TraceSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockTraceSystem) Query(ctx context.Context, session reconcile.TraceSession, mode reconcile.Mode, ids []string) ([]reconcile.TraceRow, error) {
	args := m.Called(ctx, session, mode, ids)
	rows, _ := args.Get(0).([]reconcile.TraceRow)
	return rows, args.Error(1)
}

var testSession = reconcile.TraceSession{UserRef: "u-1", SessionToken: "s-1"}

// healthyTraceSystem returns a mock that logs in and answers Query with rows
func healthyTraceSystem(rows []reconcile.TraceRow) *mockTraceSystem {
	m := new(mockTraceSystem)
	m.On("MissingCredentials").Return(nil)
	m.On("Login", mock.Anything).Return(testSession, nil)
	m.On("SetActiveGroup", mock.Anything, testSession).Return(nil)
	m.On("Query", mock.Anything, testSession, mock.Anything, mock.Anything).Return(rows, nil)
	return m
}

// mapTokenStore is a minimal TokenStore
type mapTokenStore struct {
	mu     sync.Mutex
	tokens map[string]string
	getErr error
}

func newMapTokenStore() *mapTokenStore {
	return &mapTokenStore{tokens: make(map[string]string)}
}

func (s *mapTokenStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", false, s.getErr
	}
	t, ok := s.tokens[key]
	return t, ok, nil
}

func (s *mapTokenStore) Set(_ context.Context, key, token string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[key] = token
	return nil
}

func (s *mapTokenStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, key)
	return nil
}

func (s *mapTokenStore) Close() error { return nil }

// recordingRecorder captures Recorder calls
type recordingRecorder struct {
	mu      sync.Mutex
	batches int
	lastErr error
	results []reconcile.ReconciliationResult
}

func (r *recordingRecorder) RecordBatch(_ context.Context, _ reconcile.Mode, _ int, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches++
	r.lastErr = err
}

func (r *recordingRecorder) RecordResults(_ context.Context, _ reconcile.Mode, results []reconcile.ReconciliationResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = results
}
