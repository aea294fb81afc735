package db

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions sizes the client. Zero values keep the go-redis defaults or
// whatever the URL sets.
type RedisOptions struct {
	PoolSize    int
	DialTimeout time.Duration
	// Timeout bounds each read and each write on a connection.
	Timeout time.Duration
}

// NewRedisClient creates and verifies a Redis client connection.
func NewRedisClient(ctx context.Context, redisURL string, opts RedisOptions) (*redis.Client, error) {
	ro, err := redisOptions(redisURL, opts)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(ro)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return rdb, nil
}

func redisOptions(redisURL string, opts RedisOptions) (*redis.Options, error) {
	ro, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}
	if opts.PoolSize > 0 {
		ro.PoolSize = opts.PoolSize
	}
	if opts.DialTimeout > 0 {
		ro.DialTimeout = opts.DialTimeout
	}
	if opts.Timeout > 0 {
		ro.ReadTimeout = opts.Timeout
		ro.WriteTimeout = opts.Timeout
	}
	return ro, nil
}
