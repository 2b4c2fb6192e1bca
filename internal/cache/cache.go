// Package cache provides a typed in-memory TTL cache.
package cache

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is a typed wrapper around go-cache. Safe for concurrent use.
type Cache[K comparable, V any] struct {
	store *gocache.Cache
}

// New creates a cache whose expired entries are purged every cleanupInterval.
// Entries never expire unless Set is given a positive ttl.
func New[K comparable, V any](cleanupInterval time.Duration) *Cache[K, V] {
	return &Cache[K, V]{
		store: gocache.New(gocache.NoExpiration, cleanupInterval),
	}
}

// Get returns the cached value for key, if present and not expired.
func (c *Cache[K, V]) Get(_ context.Context, key K) (V, bool) {
	var zero V
	raw, found := c.store.Get(keyString(key))
	if !found {
		return zero, false
	}
	v, ok := raw.(V)
	if !ok {
		return zero, false
	}
	return v, true
}

// Set stores value under key. A ttl of zero keeps the entry until deleted.
func (c *Cache[K, V]) Set(_ context.Context, key K, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	c.store.Set(keyString(key), value, ttl)
}

// Delete removes key.
func (c *Cache[K, V]) Delete(_ context.Context, key K) {
	c.store.Delete(keyString(key))
}

// Len returns the number of entries, including expired ones not yet purged.
func (c *Cache[K, V]) Len() int {
	return c.store.ItemCount()
}

// Close drops every entry.
func (c *Cache[K, V]) Close() {
	c.store.Flush()
}

func keyString[K comparable](key K) string {
	switch k := any(key).(type) {
	case string:
		return k
	case fmt.Stringer:
		return k.String()
	default:
		return fmt.Sprint(k)
	}
}
