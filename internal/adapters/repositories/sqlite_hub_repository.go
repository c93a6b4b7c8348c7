package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"geo-dispatch-service/internal/domain"
)

// ErrHubNotFound is returned when a hub id does not exist or is inactive.
var ErrHubNotFound = errors.New("hub not found")

// SQLiteHubRepository reads hubs from the embedded database.
type SQLiteHubRepository struct {
	db *sql.DB
}

func NewSQLiteHubRepository(db *sql.DB) *SQLiteHubRepository {
	return &SQLiteHubRepository{db: db}
}

func (r *SQLiteHubRepository) ListActiveHubs(ctx context.Context) ([]domain.Hub, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, code, address, lat, lng FROM hubs WHERE is_active = 1 ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("query hubs: %w", err)
	}
	defer rows.Close()

	var hubs []domain.Hub
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

func (r *SQLiteHubRepository) GetHub(ctx context.Context, id string) (domain.Hub, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, code, address, lat, lng FROM hubs WHERE id = ? AND is_active = 1`,
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
