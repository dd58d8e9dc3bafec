package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	appreconcile "github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/application/reconcile"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/domain/reconcile"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/interfaces/http/dto"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

type stubEngine struct {
	maxBatch int
	results  []reconcile.ReconciliationResult
	err      error

	calls     int
	gotMode   reconcile.Mode
	gotIDs    []string
	gotForced bool
}

func (s *stubEngine) Reconcile(_ context.Context, mode reconcile.Mode, ids []string, opts ...appreconcile.ReconcileOption) ([]reconcile.ReconciliationResult, error) {
	s.calls++
	s.gotMode = mode
	s.gotIDs = ids
	s.gotForced = len(opts) > 0
	return s.results, s.err
}

func (s *stubEngine) MaxBatch() int { return s.maxBatch }

type stubSessions struct {
	invalidated int
	err         error
}

func (s *stubSessions) Invalidate(context.Context) error {
	s.invalidated++
	return s.err
}

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Meta    dto.ReconcileMeta `json:"meta"`
	Error   *dto.ErrorInfo    `json:"error"`
}

func setupReconcileRouter(engine *stubEngine, sessions *stubSessions) *gin.Engine {
	h := NewReconcileHandler(engine, sessions)
	r := gin.New()
	r.Use(middleware.RequestID())
	r.POST("/reconcile", h.Reconcile)
	r.POST("/session/invalidate", h.InvalidateSession)
	return r
}

func postJSON(t *testing.T, r http.Handler, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestReconcileHandler_Success(t *testing.T) {
	engine := &stubEngine{
		maxBatch: 150,
		results: []reconcile.ReconciliationResult{
			{
				Identifier: "1234567890",
				Order: reconcile.OrderSide{
					HasOrderRef: true,
					OrderRef:    "DO123456",
					Detail:      reconcile.NewDetailRecord("LAX", nil, "In Transit", "Departed", nil),
				},
				Trace: reconcile.TraceSide{
					Attempted: true,
					Record:    reconcile.TraceRecord{ExternalOrderID: "1234567890", Status: "In Transit"},
				},
			},
			{
				Identifier: "9999999999",
				Trace:      reconcile.TraceSide{Attempted: true, NotFound: true},
			},
		},
	}
	r := setupReconcileRouter(engine, &stubSessions{})

	w, env := postJSON(t, r, "/reconcile", gin.H{
		"mode":        "tracking",
		"identifiers": []string{" 1234567890 ", "9999999999", "1234567890", ""},
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, reconcile.ModeTracking, engine.gotMode)
	assert.Equal(t, []string{"1234567890", "9999999999"}, engine.gotIDs)
	assert.False(t, engine.gotForced)

	var data dto.ReconcileResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Results, 2)

	first := data.Results[0]
	assert.Equal(t, "DO123456", first.OrderRef)
	assert.True(t, first.Order.Found)
	assert.True(t, first.Order.OK)
	assert.Equal(t, "LAX", first.Order.Location)
	assert.Equal(t, "Departed", first.Order.SubStatus)
	assert.True(t, first.Trace.Found)

	second := data.Results[1]
	assert.False(t, second.Order.Found)
	assert.True(t, second.Trace.Attempted)
	assert.True(t, second.Trace.NotFound)

	assert.Equal(t, dto.ReconcileMeta{Mode: "tracking", Requested: 4, Processed: 2, BatchMax: 150}, env.Meta)
}

func TestReconcileHandler_TruncatesToMaxBatch(t *testing.T) {
	engine := &stubEngine{maxBatch: 2}
	r := setupReconcileRouter(engine, &stubSessions{})

	w, env := postJSON(t, r, "/reconcile", gin.H{
		"mode":          "pickup",
		"identifiers":   []string{"PU-0001", "PU-0002", "PU-0003"},
		"force_refresh": true,
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"PU-0001", "PU-0002"}, engine.gotIDs)
	assert.True(t, engine.gotForced)
	assert.Equal(t, 1, env.Meta.Truncated)
	assert.Equal(t, 2, env.Meta.Processed)
}

func TestReconcileHandler_BadRequests(t *testing.T) {
	tests := []struct {
		name     string
		body     any
		wantCode string
	}{
		{name: "malformed json", body: `{"mode":`, wantCode: dto.ErrCodeInvalidJSON},
		{name: "missing mode", body: gin.H{"identifiers": []string{"1234567890"}}, wantCode: dto.ErrCodeValidation},
		{name: "unknown mode", body: gin.H{"mode": "bogus", "identifiers": []string{"1234567890"}}, wantCode: dto.ErrCodeValidation},
		{name: "empty identifiers", body: gin.H{"mode": "tracking", "identifiers": []string{}}, wantCode: dto.ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &stubEngine{maxBatch: 150}
			r := setupReconcileRouter(engine, &stubSessions{})

			w, env := postJSON(t, r, "/reconcile", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
			assert.NotEmpty(t, env.Error.RequestID)
			assert.Zero(t, engine.calls)
		})
	}
}

func TestReconcileHandler_EngineErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing credentials",
			err:        &reconcile.ConfigError{Backend: reconcile.BackendOrderSystem, Missing: []string{"password"}},
			wantStatus: http.StatusInternalServerError,
			wantCode:   dto.ErrCodeConfig,
		},
		{
			name:       "login rejected",
			err:        &reconcile.AuthError{Backend: reconcile.BackendOrderSystem, Err: reconcile.ErrRejected},
			wantStatus: http.StatusBadGateway,
			wantCode:   dto.ErrCodeUpstreamAuth,
		},
		{
			name:       "search failed",
			err:        &reconcile.UpstreamError{Backend: reconcile.BackendOrderSystem, Op: "search", Err: reconcile.ErrUnreachable},
			wantStatus: http.StatusBadGateway,
			wantCode:   dto.ErrCodeUpstream,
		},
		{
			name:       "batch too large",
			err:        reconcile.ErrBatchTooLarge,
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeBatchTooLarge,
		},
		{
			name:       "unexpected",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   dto.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &stubEngine{maxBatch: 150, err: tt.err}
			r := setupReconcileRouter(engine, &stubSessions{})

			w, env := postJSON(t, r, "/reconcile", gin.H{"mode": "tracking", "identifiers": []string{"1234567890"}})

			assert.Equal(t, tt.wantStatus, w.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
			assert.False(t, env.Success)
		})
	}
}

func TestReconcileHandler_UpstreamCauseNotEchoed(t *testing.T) {
	engine := &stubEngine{
		maxBatch: 150,
		err: &reconcile.UpstreamError{
			Backend: reconcile.BackendOrderSystem,
			Op:      "search",
			Err:     errors.New("dial tcp 10.0.0.7:443: connection refused"),
		},
	}
	r := setupReconcileRouter(engine, &stubSessions{})

	_, env := postJSON(t, r, "/reconcile", gin.H{"mode": "tracking", "identifiers": []string{"1234567890"}})

	require.NotNil(t, env.Error)
	assert.Equal(t, "order-system search failed", env.Error.Message)
	assert.NotContains(t, env.Error.Message, "10.0.0.7")
}

func TestReconcileHandler_InvalidateSession(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		sessions := &stubSessions{}
		r := setupReconcileRouter(&stubEngine{maxBatch: 150}, sessions)

		w, env := postJSON(t, r, "/session/invalidate", gin.H{})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, env.Success)
		assert.Equal(t, 1, sessions.invalidated)

		var data InvalidateSessionResponse
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.True(t, data.Invalidated)
	})

	t.Run("store failure", func(t *testing.T) {
		sessions := &stubSessions{err: errors.New("redis down")}
		r := setupReconcileRouter(&stubEngine{maxBatch: 150}, sessions)

		w, env := postJSON(t, r, "/session/invalidate", gin.H{})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, dto.ErrCodeInternal, env.Error.Code)
	})
}

func TestHealthHandler(t *testing.T) {
	r := gin.New()
	r.GET("/health", NewHealthHandler("fms-tms-checkstatus", "test").Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "fms-tms-checkstatus", body.Name)
	assert.Equal(t, "test", body.Env)
}
