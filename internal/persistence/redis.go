package persistence

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/raksha/internal/config"
)

// RedisBackend stores records as plain string values under a key prefix.
type RedisBackend struct {
	Client *redis.Client
	prefix string
}

// NewRedis connects to Redis using the provided configuration.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *RedisBackend {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return NewRedisBackend(client, cfg.KeyPrefix)
}

// NewRedisBackend wraps an existing client.
func NewRedisBackend(client *redis.Client, prefix string) *RedisBackend {
	return &RedisBackend{Client: client, prefix: prefix}
}

func (r *RedisBackend) key(key string) string {
	return r.prefix + key
}

// Write replaces the value; SET is atomic.
func (r *RedisBackend) Write(ctx context.Context, key string, data []byte) error {
	return r.Client.Set(ctx, r.key(key), data, 0).Err()
}

// Read returns the stored bytes or ErrNotFound.
func (r *RedisBackend) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := r.Client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return data, err
}

// Remove deletes the key.
func (r *RedisBackend) Remove(ctx context.Context, key string) error {
	return r.Client.Del(ctx, r.key(key)).Err()
}

// Ping verifies Redis connectivity.
func (r *RedisBackend) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// Close closes the client.
func (r *RedisBackend) Close() error {
	if r != nil && r.Client != nil {
		return r.Client.Close()
	}
	return nil
}
