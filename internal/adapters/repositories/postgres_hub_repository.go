package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"geo-dispatch-service/internal/domain"
	"geo-dispatch-service/internal/platform/obs"
)

// PostgresHubRepository reads hubs from the shared database.
type PostgresHubRepository struct {
	db *sql.DB
}

func NewPostgresHubRepository(db *sql.DB) *PostgresHubRepository {
	return &PostgresHubRepository{db: db}
}

func (r *PostgresHubRepository) ListActiveHubs(ctx context.Context) (hubs []domain.Hub, err error) {
	defer obs.Time(ctx, "pg.hubs.list_active")(&err)

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, code, address, lat, lng FROM hubs WHERE is_active ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("query hubs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		h, err := scanHub(rows)
		if err != nil {
			return nil, fmt.Errorf("scan hub row: %w", err)
		}
		hubs = append(hubs, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hub rows: %w", err)
	}
	return hubs, nil
}

func (r *PostgresHubRepository) GetHub(ctx context.Context, id string) (hub domain.Hub, err error) {
	defer obs.Time(ctx, "pg.hubs.get")(&err)

	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, code, address, lat, lng FROM hubs WHERE id = $1 AND is_active`,
		id,
	)
	h, err := scanHub(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Hub{}, fmt.Errorf("hub %q: %w", id, ErrHubNotFound)
	}
	if err != nil {
		return domain.Hub{}, fmt.Errorf("get hub %q: %w", id, err)
	}
	return h, nil
}
