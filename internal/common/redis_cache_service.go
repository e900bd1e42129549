package common

import (
	"context"
	"encoding/json"
	"time"

	"communa/tribune/internal/logging"

	"github.com/redis/go-redis/v9"
)

// RedisCacheService implements CacheInterface using Redis. Used when
// several bot instances share resolution results (CACHE_BACKEND=redis).
type RedisCacheService struct {
	client *redis.Client
	ctx    context.Context
}

// Ensure RedisCacheService implements CacheInterface
var _ CacheInterface = (*RedisCacheService)(nil)

// NewRedisCacheService creates a new Redis-based cache service
func NewRedisCacheService() (*RedisCacheService, error) {
	client, err := NewRedisClient()
	if err != nil {
		return nil, err
	}

	return &RedisCacheService{
		client: client,
		ctx:    context.Background(),
	}, nil
}

// Set stores a value in Redis with the given key and duration
func (r *RedisCacheService) Set(key string, value interface{}, duration time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		logging.Error("Redis cache: failed to marshal value", "key", key, "error", err.Error())
		return
	}

	if err := r.client.Set(r.ctx, key, data, duration).Err(); err != nil {
		logging.Error("Redis cache: failed to set key", "key", key, "error", err.Error())
	}
}

// Get retrieves a value from Redis by key
func (r *RedisCacheService) Get(key string) (interface{}, bool) {
	data, err := r.client.Get(r.ctx, key).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logging.Error("Redis cache: failed to get key", "key", key, "error", err.Error())
		return nil, false
	}

	var value interface{}
	if err := json.Unmarshal([]byte(data), &value); err != nil {
		logging.Error("Redis cache: failed to unmarshal value", "key", key, "error", err.Error())
		return nil, false
	}
	return value, true
}

// Delete removes a value from Redis by key
func (r *RedisCacheService) Delete(key string) {
	if err := r.client.Del(r.ctx, key).Err(); err != nil {
		logging.Error("Redis cache: failed to delete key", "key", key, "error", err.Error())
	}
}

// GetOrSet retrieves a value from Redis, or loads it if not found
func (r *RedisCacheService) GetOrSet(
	key string,
	duration time.Duration,
	loader func() (any, error)) (interface{}, error) {
	if val, found := r.Get(key); found {
		return val, nil
	}

	val, err := loader()
	if err != nil {
		return nil, err
	}

	r.Set(key, val, duration)
	return val, nil
}

// Close closes the Redis connection
func (r *RedisCacheService) Close() error {
	return r.client.Close()
}
