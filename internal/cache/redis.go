// Package cache stores serialized search pages and facet lists in Redis.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client *redis.Client
	opts   Options
}

// NewRedis wraps an already-verified client (see db.NewRedisClient).
func NewRedis(client *redis.Client, opts Options) *RedisCache {
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = DefaultOptions().DefaultTTL
	}
	return &RedisCache{client: client, opts: opts}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	val, err := c.client.Get(ctx, c.opts.Prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return ErrInvalidKey
	}
	if ttl <= 0 {
		ttl = c.opts.DefaultTTL
	}
	return c.client.Set(ctx, c.opts.Prefix+key, value, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.opts.Prefix+key).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
