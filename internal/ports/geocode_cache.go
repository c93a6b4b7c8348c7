package ports

import (
	"context"

	"geo-dispatch-service/internal/domain"
)

// GeocodeCache is the hot tier for resolved coordinates. Positive entries
// never expire; negative marks expire after the cache's configured TTL so a
// transiently failing address gets retried. Keys are namespaced normalized
// strings ("addr|...", "origin|...", "hub|<id>|...", "rev|lat|lng").
type GeocodeCache interface {
	Get(ctx context.Context, key string) (domain.Coordinate, bool)
	Put(ctx context.Context, key string, c domain.Coordinate)
	RecentlyFailed(ctx context.Context, key string) bool
	MarkFailed(ctx context.Context, key string)
}

// GeocodeStore is the durable tier behind GeocodeCache. It holds positive
// results only; negative marks are deliberately not persisted.
type GeocodeStore interface {
	GetMany(ctx context.Context, keys []string) (map[string]domain.Coordinate, error)
	PutMany(ctx context.Context, entries map[string]domain.Coordinate) error
}
