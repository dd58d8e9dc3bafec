package cache

import (
	"context"
	"sync"
	"time"

	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/domain/reconcile"
)

// tokenEntry is a cached token; a zero expiresAt never expires
type tokenEntry struct {
	token     string
	expiresAt time.Time
}

func (e tokenEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// InMemoryTokenStore implements reconcile.TokenStore with a process-local map.
// This is the default: one token per process, lost on restart.
type InMemoryTokenStore struct {
	mu        sync.RWMutex
	entries   map[string]tokenEntry
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

var _ reconcile.TokenStore = (*InMemoryTokenStore)(nil)

// NewInMemoryTokenStore creates an in-memory token store and starts a
// goroutine that sweeps expired entries every cleanupInterval (0 disables it).
func NewInMemoryTokenStore(cleanupInterval time.Duration) *InMemoryTokenStore {
	s := &InMemoryTokenStore{
		entries:  make(map[string]tokenEntry),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	if cleanupInterval > 0 {
		s.wg.Add(1)
		go s.cleanupLoop(cleanupInterval)
	}
	return s
}

// Get implements reconcile.TokenStore
func (s *InMemoryTokenStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok || e.expired(s.now()) {
		return "", false, nil
	}
	return e.token, true, nil
}

// Set implements reconcile.TokenStore
func (s *InMemoryTokenStore) Set(_ context.Context, key, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := tokenEntry{token: token}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.entries[key] = e
	return nil
}

// Delete implements reconcile.TokenStore
func (s *InMemoryTokenStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryTokenStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryTokenStore) cleanupLoop(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryTokenStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, key)
		}
	}
}

// size returns the number of entries, including expired ones not yet swept
func (s *InMemoryTokenStore) size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
