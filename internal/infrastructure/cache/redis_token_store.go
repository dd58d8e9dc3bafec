package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/domain/reconcile"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "checkstatus:token:"

// RedisTokenStore implements reconcile.TokenStore using Redis, so every
// instance behind a load balancer reuses the same Order-System token.
type RedisTokenStore struct {
	client    *redis.Client
	keyPrefix string
}

var _ reconcile.TokenStore = (*RedisTokenStore)(nil)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisTokenStore connects to Redis and verifies the connection
func NewRedisTokenStore(cfg RedisConfig) (*RedisTokenStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisTokenStore{client: client, keyPrefix: defaultKeyPrefix}, nil
}

// NewRedisTokenStoreWithClient creates a store with an existing Redis client
func NewRedisTokenStoreWithClient(client *redis.Client, keyPrefix string) *RedisTokenStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisTokenStore{client: client, keyPrefix: keyPrefix}
}

// Get implements reconcile.TokenStore
func (s *RedisTokenStore) Get(ctx context.Context, key string) (string, bool, error) {
	token, err := s.client.Get(ctx, s.keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read token: %w", err)
	}
	return token, true, nil
}

// Set implements reconcile.TokenStore. A zero ttl stores without expiry.
func (s *RedisTokenStore) Set(ctx context.Context, key, token string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.keyPrefix+key, token, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

// Delete implements reconcile.TokenStore
func (s *RedisTokenStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (s *RedisTokenStore) Close() error {
	return s.client.Close()
}
