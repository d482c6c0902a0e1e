package catalog

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Cache memoizes another Catalog per namespace. The first Resolve for a
// namespace delegates to the wrapped catalog; subsequent calls return the
// cached candidates without a fresh scan. There is no eviction: the cache
// grows with the number of distinct namespaces ever queried and lives as
// long as the Cache itself. Use Invalidate or Reset to force a re-scan,
// e.g. between tests sharing one cache instance.
type Cache struct {
	mu      sync.RWMutex
	source  Catalog
	entries map[string][]Candidate
}

// NewCache wraps source with per-namespace memoization.
func NewCache(source Catalog) *Cache {
	return &Cache{
		source:  source,
		entries: make(map[string][]Candidate),
	}
}

// Resolve returns the cached candidates for the namespace, resolving through
// the wrapped catalog on first use. Resolution errors are not cached, so a
// later call retries the scan. The returned slice is a copy per call.
func (c *Cache) Resolve(ctx context.Context, namespace string) ([]Candidate, error) {
	c.mu.RLock()
	cached, ok := c.entries[namespace]
	c.mu.RUnlock()
	if ok {
		return append([]Candidate(nil), cached...), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another caller may have filled the entry while we waited for the lock.
	if cached, ok := c.entries[namespace]; ok {
		return append([]Candidate(nil), cached...), nil
	}

	candidates, err := c.source.Resolve(ctx, namespace)
	if err != nil {
		log.Error().Str("namespace", namespace).Err(err).Msg("namespace resolution failed")
		return nil, err
	}

	c.entries[namespace] = append([]Candidate(nil), candidates...)
	log.Debug().Str("namespace", namespace).Int("candidates", len(candidates)).Msg("namespace resolution cached")
	return append([]Candidate(nil), candidates...), nil
}

// Invalidate drops the cached entry for one namespace.
func (c *Cache) Invalidate(namespace string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, namespace)
}

// Reset drops every cached entry.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]Candidate)
}
