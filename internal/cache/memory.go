package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is a process-local Cache used when no Redis is configured and in
// tests. Expired entries are dropped lazily on read.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	defaultTTL time.Duration
	now        func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func NewMemory(opts Options) *Memory {
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = DefaultOptions().DefaultTTL
	}
	return &Memory{
		entries:    make(map[string]memoryEntry),
		defaultTTL: opts.DefaultTTL,
		now:        time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return nil, ErrNotFound
	}
	return append([]byte(nil), e.value...), nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return ErrInvalidKey
	}
	if ttl <= 0 {
		ttl = m.defaultTTL
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{
		value:     append([]byte(nil), value...),
		expiresAt: m.now().Add(ttl),
	}
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *Memory) Close() error { return nil }
