package common

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Cache is the key-value store the read model writes its materialized query
// results into. Values are opaque byte blobs; a missing key is never an error.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)
}

// MemoryCache is an in-process Cache backed by go-cache.
type MemoryCache struct {
	c *cache.Cache
}

func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{c: cache.New(defaultTTL, cleanupInterval)}
}

func (m *MemoryCache) Get(key string) ([]byte, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false
	}

	b, ok := v.([]byte)
	return b, ok
}

func (m *MemoryCache) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		m.c.Set(key, value, cache.DefaultExpiration)
		return
	}
	m.c.Set(key, value, ttl)
}

func (m *MemoryCache) Delete(key string) {
	m.c.Delete(key)
}

func (m *MemoryCache) Flush() {
	m.c.Flush()
}
