package common

import (
	"context"
	"fmt"
	"os"
	"time"

	"communa/tribune/internal/logging"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds a Redis client from REDIS_* environment
// variables and verifies the connection.
func NewRedisClient() (*redis.Client, error) {
	redisHost := os.Getenv("REDIS_HOST")
	if redisHost == "" {
		redisHost = "localhost"
	}

	redisPort := os.Getenv("REDIS_PORT")
	if redisPort == "" {
		redisPort = "6379"
	}

	redisPassword := os.Getenv("REDIS_PASSWORD")
	// No password by default for local development

	addr := fmt.Sprintf("%s:%s", redisHost, redisPort)
	logging.Info("Initializing Redis client", "addr", addr)

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     redisPassword,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}
