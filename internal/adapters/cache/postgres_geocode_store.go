package cache

import (
	"context"
	"database/sql"
	"fmt"

	"geo-dispatch-service/internal/domain"
	"geo-dispatch-service/internal/platform/obs"
)

// PostgresGeocodeStore is the shared durable tier for multi-instance
// deployments.
type PostgresGeocodeStore struct {
	db *sql.DB
}

func NewPostgresGeocodeStore(db *sql.DB) *PostgresGeocodeStore {
	return &PostgresGeocodeStore{db: db}
}

func (s *PostgresGeocodeStore) GetMany(ctx context.Context, keys []string) (out map[string]domain.Coordinate, err error) {
	defer obs.Time(ctx, "pg.geocode_cache.get_many")(&err)

	out = make(map[string]domain.Coordinate, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT cache_key, lat, lng FROM geocode_cache WHERE cache_key = ANY($1::text[])`,
		keys,
	)
	if err != nil {
		return nil, fmt.Errorf("query geocode cache: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var c domain.Coordinate
		if err := rows.Scan(&key, &c.Lat, &c.Lng); err != nil {
			return nil, fmt.Errorf("scan geocode cache row: %w", err)
		}
		out[key] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate geocode cache rows: %w", err)
	}
	return out, nil
}

func (s *PostgresGeocodeStore) PutMany(ctx context.Context, entries map[string]domain.Coordinate) (err error) {
	defer obs.Time(ctx, "pg.geocode_cache.put_many")(&err)

	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin geocode cache tx: %w", err)
	}
	defer tx.Rollback()

	for key, c := range entries {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO geocode_cache (cache_key, lat, lng) VALUES ($1, $2, $3)
			 ON CONFLICT (cache_key) DO UPDATE SET lat = EXCLUDED.lat, lng = EXCLUDED.lng`,
			key, c.Lat, c.Lng,
		)
		if err != nil {
			return fmt.Errorf("upsert geocode cache %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit geocode cache tx: %w", err)
	}
	return nil
}
