package cache

import (
	"fmt"
	"time"

	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/domain/reconcile"
	"go.uber.org/zap"
)

// Token store drivers
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

const inMemoryCleanupInterval = time.Minute

// TokenStoreFactory creates token stores based on configuration
type TokenStoreFactory struct {
	driver                string
	redisConfig           RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// TokenStoreFactoryOption is a functional option for configuring the factory
type TokenStoreFactoryOption func(*TokenStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) TokenStoreFactoryOption {
	return func(f *TokenStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory store
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) TokenStoreFactoryOption {
	return func(f *TokenStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewTokenStoreFactory creates a new factory
func NewTokenStoreFactory(driver string, redisCfg RedisConfig, opts ...TokenStoreFactoryOption) *TokenStoreFactory {
	f := &TokenStoreFactory{
		driver:                driver,
		redisConfig:           redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore creates the configured store. With the redis driver it falls
// back to in-memory when Redis cannot be reached and fallback is allowed.
func (f *TokenStoreFactory) CreateStore() (reconcile.TokenStore, error) {
	switch f.driver {
	case "", DriverMemory:
		f.logger.Info("using in-memory token store")
		return NewInMemoryTokenStore(inMemoryCleanupInterval), nil
	case DriverRedis:
	default:
		return nil, fmt.Errorf("unknown token store driver %q", f.driver)
	}

	store, err := NewRedisTokenStore(f.redisConfig)
	if err == nil {
		f.logger.Info("using Redis token store", zap.String("addr", f.redisConfig.Addr))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for token store but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory token store. "+
		"Each instance will log in to Order-System separately.",
		zap.Error(err),
	)
	return NewInMemoryTokenStore(inMemoryCleanupInterval), nil
}
