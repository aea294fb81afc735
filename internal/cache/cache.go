package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
)

var (
	ErrNotFound   = errors.New("key not found in cache")
	ErrInvalidKey = errors.New("invalid cache key")
)

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)

	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error

	Close() error
}

type Options struct {
	DefaultTTL time.Duration

	// Prefix namespaces every key, so several deployments can share a Redis
	// database.
	Prefix string
}

func DefaultOptions() Options {
	return Options{
		DefaultTTL: 5 * time.Minute,
		Prefix:     "tw-search:",
	}
}

// Key hashes the JSON encoding of v under namespace. Equal values give equal
// keys as long as v's encoding is deterministic (structs, not maps of
// unordered data with custom marshalers).
func Key(namespace string, v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("cache key: %w", err)
	}
	return fmt.Sprintf("%s:%016x", namespace, xxhash.Sum64(b)), nil
}

// GetJSON decodes the cached value at key into dst.
func GetJSON(ctx context.Context, c Cache, key string, dst any) error {
	b, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode cached %s: %w", key, err)
	}
	return nil
}

// SetJSON stores the JSON encoding of v at key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.Set(ctx, key, b, ttl)
}
