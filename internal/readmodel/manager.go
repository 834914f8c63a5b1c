package readmodel

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/avrm/blogward/internal/common"
)

// Resolver builds and executes the query behind a logical key.
type Resolver interface {
	Resolve(ctx context.Context, key QueryKey, p Params) (any, error)
}

// Manager wraps a Resolver with a cache-aside strategy. Cached values are
// opaque JSON blobs: a hit returns the stored bytes unchanged, so two calls
// between evictions return byte-identical results.
type Manager struct {
	resolver   Resolver
	cache      common.Cache
	prefix     string
	ttl        map[QueryKey]time.Duration
	defaultTTL time.Duration
	metrics    *Metrics
	logger     *slog.Logger
}

func NewManager(resolver Resolver, cache common.Cache, prefix string, ttl map[QueryKey]time.Duration, defaultTTL time.Duration, metrics *Metrics, logger *slog.Logger) *Manager {
	return &Manager{
		resolver:   resolver,
		cache:      cache,
		prefix:     prefix,
		ttl:        ttl,
		defaultTTL: defaultTTL,
		metrics:    metrics,
		logger:     logger,
	}
}

func (m *Manager) ttlFor(key QueryKey) time.Duration {
	if ttl, ok := m.ttl[key]; ok {
		return ttl
	}
	return m.defaultTTL
}

// GetOrCompute returns the cached result for (key, params), or computes it
// through the resolver and stores it with the key's TTL. Errors, including
// not-found, are never cached. Concurrent misses may both compute and both
// write; last write wins, which is safe because computation is a pure
// function of current store state.
func (m *Manager) GetOrCompute(ctx context.Context, key QueryKey, p Params) (json.RawMessage, error) {
	ck := cacheKey(m.prefix, key, p)

	if b, ok := m.cache.Get(ck); ok {
		if m.metrics != nil {
			m.metrics.hit(key)
		}
		return json.RawMessage(b), nil
	}

	if m.metrics != nil {
		m.metrics.miss(key)
	}

	result, err := m.resolver.Resolve(ctx, key, p)
	if err != nil {
		return nil, err
	}

	b, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}

	m.cache.Set(ck, b, m.ttlFor(key))
	m.logger.Debug("cached query result", slog.String("key", ck), slog.Duration("ttl", m.ttlFor(key)))

	return json.RawMessage(b), nil
}
