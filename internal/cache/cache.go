// Package cache provides a typed TTL cache backed by
// github.com/patrickmn/go-cache.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is a typed view over a go-cache store. Expired entries are
// purged in the background by the underlying janitor.
type Cache[T any] struct {
	backend *gocache.Cache
}

// New creates a cache whose entries expire after ttl. The janitor
// sweeps expired entries at twice the ttl.
func New[T any](ttl time.Duration) *Cache[T] {
	return &Cache[T]{backend: gocache.New(ttl, 2*ttl)}
}

// Get retrieves a value.
func (c *Cache[T]) Get(key string) (T, bool) {
	var zero T
	v, ok := c.backend.Get(key)
	if !ok {
		return zero, false
	}
	data, ok := v.(T)
	if !ok {
		return zero, false
	}
	return data, true
}

// Set stores a value with the default TTL.
func (c *Cache[T]) Set(key string, data T) {
	c.backend.SetDefault(key, data)
}

// Delete removes a key.
func (c *Cache[T]) Delete(key string) {
	c.backend.Delete(key)
}

// Size returns the current number of items, expired entries included
// until the janitor runs.
func (c *Cache[T]) Size() int {
	return c.backend.ItemCount()
}
