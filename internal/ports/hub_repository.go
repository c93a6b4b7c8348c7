package ports

import (
	"context"

	"geo-dispatch-service/internal/domain"
)

// HubRepository provides read access to the dispatch hubs a route can
// start from.
type HubRepository interface {
	ListActiveHubs(ctx context.Context) ([]domain.Hub, error)
	GetHub(ctx context.Context, id string) (domain.Hub, error)
}
