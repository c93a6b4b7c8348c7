package cache

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"geo-dispatch-service/internal/domain"
)

// SQLiteGeocodeStore persists positive geocode results in the embedded
// database, surviving restarts of a single-node deployment.
type SQLiteGeocodeStore struct {
	db *sql.DB
}

func NewSQLiteGeocodeStore(db *sql.DB) *SQLiteGeocodeStore {
	return &SQLiteGeocodeStore{db: db}
}

func (s *SQLiteGeocodeStore) GetMany(ctx context.Context, keys []string) (map[string]domain.Coordinate, error) {
	out := make(map[string]domain.Coordinate, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	// SQLite does not support binding slices, build the placeholder list.
	placeholders := strings.Repeat("?,", len(keys))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}

	query := fmt.Sprintf(
		`SELECT cache_key, lat, lng FROM geocode_cache WHERE cache_key IN (%s)`,
		placeholders,
	)
	rows, err := s.db.QueryContext(ctx, query, args...)
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

func (s *SQLiteGeocodeStore) PutMany(ctx context.Context, entries map[string]domain.Coordinate) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin geocode cache tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO geocode_cache (cache_key, lat, lng) VALUES (?, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET lat = excluded.lat, lng = excluded.lng`,
	)
	if err != nil {
		return fmt.Errorf("prepare geocode cache upsert: %w", err)
	}
	defer stmt.Close()

	for key, c := range entries {
		if _, err := stmt.ExecContext(ctx, key, c.Lat, c.Lng); err != nil {
			return fmt.Errorf("upsert geocode cache %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit geocode cache tx: %w", err)
	}
	return nil
}
