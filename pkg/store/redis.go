package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces cache keys so one Redis instance can serve
// several applications.
const DefaultKeyPrefix = "fred:"

// Redis is a Store backed by a shared Redis instance. Entries are stored
// without expiry; the write-once contract maps onto SETNX.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a Redis-backed store. An empty prefix selects
// DefaultKeyPrefix.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if client == nil {
		panic("redis client cannot be nil")
	}
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(key []byte) string {
	return r.prefix + string(key)
}

// Get returns the value stored under key, or ErrNotFound.
func (r *Redis) Get(ctx context.Context, key []byte) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			CacheMisses.WithLabelValues(backendRedis).Inc()
			return nil, ErrNotFound
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	CacheHits.WithLabelValues(backendRedis).Inc()
	return data, nil
}

// Contains reports whether key is present.
func (r *Redis) Contains(ctx context.Context, key []byte) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(key)).Result()
	if err != nil {
		CacheErrors.WithLabelValues("contains").Inc()
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

// PutIfAbsent stores value under key unless the key already exists.
func (r *Redis) PutIfAbsent(ctx context.Context, key, value []byte) error {
	wrote, err := r.client.SetNX(ctx, r.key(key), value, 0).Result()
	if err != nil {
		CacheErrors.WithLabelValues("put").Inc()
		return fmt.Errorf("redis setnx: %w", err)
	}

	if wrote {
		CacheStoredBytes.WithLabelValues(backendRedis).Add(float64(len(value)))
	}
	return nil
}
