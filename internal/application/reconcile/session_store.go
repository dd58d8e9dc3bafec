package reconcile

import (
	"context"
	"sync"
	"time"

	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/domain/reconcile"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// DefaultTokenKey is the cache key of the Order-System token
const DefaultTokenKey = "order_system_token"

// SessionStore owns the credentials for both backends. The Order-System token
// is cached in a TokenStore until invalidated; Trace-System sessions are
// created fresh for every batch.
type SessionStore struct {
	orders   reconcile.OrderSystem
	traces   reconcile.TraceSystem
	tokens   reconcile.TokenStore
	tokenKey string
	tokenTTL time.Duration

	// serializes Order-System logins so concurrent batches share one
	loginMu sync.Mutex
}

// SessionOption configures a SessionStore
type SessionOption func(*SessionStore)

// WithTokenKey overrides the cache key of the Order-System token
func WithTokenKey(key string) SessionOption {
	return func(s *SessionStore) {
		if key != "" {
			s.tokenKey = key
		}
	}
}

// WithTokenTTL expires the cached token after ttl (0 = until invalidated)
func WithTokenTTL(ttl time.Duration) SessionOption {
	return func(s *SessionStore) {
		s.tokenTTL = ttl
	}
}

// NewSessionStore creates a SessionStore
func NewSessionStore(orders reconcile.OrderSystem, traces reconcile.TraceSystem, tokens reconcile.TokenStore, opts ...SessionOption) *SessionStore {
	s := &SessionStore{
		orders:   orders,
		traces:   traces,
		tokens:   tokens,
		tokenKey: DefaultTokenKey,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OrderSystemToken returns the cached token, logging in when none is cached
// or forceRefresh is set. Missing credentials yield a *ConfigError before any
// network call; a failed login yields an *AuthError.
func (s *SessionStore) OrderSystemToken(ctx context.Context, forceRefresh bool) (string, error) {
	if missing := s.orders.MissingCredentials(); len(missing) > 0 {
		return "", &reconcile.ConfigError{Backend: reconcile.BackendOrderSystem, Missing: missing}
	}

	if !forceRefresh {
		if token, ok := s.cachedToken(ctx); ok {
			return token, nil
		}
	}

	s.loginMu.Lock()
	defer s.loginMu.Unlock()

	// another caller may have logged in while we waited
	if !forceRefresh {
		if token, ok := s.cachedToken(ctx); ok {
			return token, nil
		}
	}

	token, err := s.orders.Login(ctx)
	if err != nil {
		return "", &reconcile.AuthError{Backend: reconcile.BackendOrderSystem, Err: err}
	}

	if err := s.tokens.Set(ctx, s.tokenKey, token, s.tokenTTL); err != nil {
		logger.L(ctx).Warn("failed to cache Order-System token", zap.Error(err))
	}
	logger.L(ctx).Info("logged in to Order-System", zap.Bool("force_refresh", forceRefresh))
	return token, nil
}

func (s *SessionStore) cachedToken(ctx context.Context) (string, bool) {
	token, ok, err := s.tokens.Get(ctx, s.tokenKey)
	if err != nil {
		logger.L(ctx).Warn("token cache read failed, logging in again", zap.Error(err))
		return "", false
	}
	return token, ok && token != ""
}

// Invalidate drops the cached Order-System token
func (s *SessionStore) Invalidate(ctx context.Context) error {
	return s.tokens.Delete(ctx, s.tokenKey)
}

// LoginTraceSystem logs in to Trace-System and switches the session to the
// configured group. A failed group switch is logged and does not fail the login.
func (s *SessionStore) LoginTraceSystem(ctx context.Context) (reconcile.TraceSession, error) {
	if missing := s.traces.MissingCredentials(); len(missing) > 0 {
		return reconcile.TraceSession{}, &reconcile.ConfigError{Backend: reconcile.BackendTraceSystem, Missing: missing}
	}

	session, err := s.traces.Login(ctx)
	if err != nil {
		return reconcile.TraceSession{}, &reconcile.AuthError{Backend: reconcile.BackendTraceSystem, Err: err}
	}

	if err := s.traces.SetActiveGroup(ctx, session); err != nil {
		logger.L(ctx).Warn("failed to set Trace-System active group", zap.Error(err))
	}
	return session, nil
}
