// Package cache holds the geocode result tiers: an in-process hot cache, a
// Redis-backed shared cache, and SQL-backed durable stores.
package cache

import (
	"context"
	"sync"
	"time"

	"geo-dispatch-service/internal/domain"
)

// MemoryGeocodeCache is the in-process hot tier. Positive entries live for
// the process lifetime; negative marks expire after ttl so transiently
// failing addresses get retried. Safe for concurrent use.
type MemoryGeocodeCache struct {
	mu    sync.Mutex
	hits  map[string]domain.Coordinate
	fails map[string]time.Time
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryGeocodeCache(negativeTTL time.Duration) *MemoryGeocodeCache {
	return &MemoryGeocodeCache{
		hits:  make(map[string]domain.Coordinate),
		fails: make(map[string]time.Time),
		ttl:   negativeTTL,
		now:   time.Now,
	}
}

func (m *MemoryGeocodeCache) Get(_ context.Context, key string) (domain.Coordinate, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.hits[key]
	return c, ok
}

func (m *MemoryGeocodeCache) Put(_ context.Context, key string, c domain.Coordinate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits[key] = c
	delete(m.fails, key)
}

func (m *MemoryGeocodeCache) RecentlyFailed(_ context.Context, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	at, ok := m.fails[key]
	if !ok {
		return false
	}
	if m.now().Sub(at) >= m.ttl {
		delete(m.fails, key)
		return false
	}
	return true
}

func (m *MemoryGeocodeCache) MarkFailed(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fails[key] = m.now()
}
