package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "embedding:"

// RedisConfig configures the Redis store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisStore shares vectors between processes through Redis.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Addr, err)
	}

	return &RedisStore{client: client, ttl: cfg.TTL}, nil
}

// Get reads the vector stored under key.
func (r *RedisStore) Get(ctx context.Context, key string) ([]float32, bool, error) {
	data, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	vec, err := decode(data)
	if err != nil {
		return nil, false, err
	}
	return vec, true, nil
}

// Put stores the vector with the configured TTL; zero TTL keeps it forever.
func (r *RedisStore) Put(ctx context.Context, key string, vec []float32) error {
	return r.client.Set(ctx, keyPrefix+key, encode(vec), r.ttl).Err()
}

// Close closes the underlying client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
