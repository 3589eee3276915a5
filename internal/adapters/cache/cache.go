// Package cache provides in-memory read-through caching for the read-only
// collaborators of the registration core.
package cache

import (
	"context"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const DefaultCleanupInterval = 5 * time.Minute

// Memory is a typed wrapper around go-cache.
type Memory[V any] struct {
	name   string
	cache  *gocache.Cache
	logger *slog.Logger
}

// NewMemory returns a cache whose entries expire after ttl.
func NewMemory[V any](name string, ttl time.Duration, logger *slog.Logger) *Memory[V] {
	return &Memory[V]{
		name:   name,
		cache:  gocache.New(ttl, DefaultCleanupInterval),
		logger: logger,
	}
}

// Get retrieves an item from the cache by its key.
func (m *Memory[V]) Get(ctx context.Context, key string) (V, bool) {
	var zero V
	value, found := m.cache.Get(key)
	if !found {
		return zero, false
	}
	v, ok := value.(V)
	if !ok {
		m.logger.ErrorContext(ctx, "wrong type in cache", "cache", m.name, "key", key)
		return zero, false
	}
	return v, true
}

// Set stores value under key with the cache's default expiration.
func (m *Memory[V]) Set(ctx context.Context, key string, value V) {
	m.cache.SetDefault(key, value)
}

// Delete removes keys from the cache.
func (m *Memory[V]) Delete(ctx context.Context, keys ...string) {
	for _, key := range keys {
		m.cache.Delete(key)
	}
}

// Flush removes every entry.
func (m *Memory[V]) Flush(ctx context.Context) {
	entries := m.Len()
	m.cache.Flush()
	m.logger.DebugContext(ctx, "cache flushed", "cache", m.name, "entries", entries)
}

// Len returns the number of entries, expired ones included until cleanup runs.
func (m *Memory[V]) Len() int {
	return m.cache.ItemCount()
}

// readThrough returns the cached value for key or loads, caches and returns it.
// Errors are never cached, so a not-found answer is asked again next time.
func readThrough[V any](ctx context.Context, m *Memory[V], key string, load func(context.Context, string) (V, error)) (V, error) {
	if v, ok := m.Get(ctx, key); ok {
		return v, nil
	}
	v, err := load(ctx, key)
	if err != nil {
		return v, err
	}
	m.Set(ctx, key, v)
	return v, nil
}
