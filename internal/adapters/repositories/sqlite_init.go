// Package repositories holds the SQL-backed persistence adapters for hubs
// and the schema/seed helpers the composition roots run at startup.
package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"geo-dispatch-service/internal/domain"
)

// InitSQLiteSchema creates the tables the service needs. Idempotent, runs
// at every startup.
func InitSQLiteSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS hubs (
			id        TEXT PRIMARY KEY,
			name      TEXT NOT NULL,
			code      TEXT NOT NULL UNIQUE,
			address   TEXT NOT NULL,
			lat       REAL,
			lng       REAL,
			is_active INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS geocode_cache (
			cache_key TEXT PRIMARY KEY,
			lat       REAL NOT NULL,
			lng       REAL NOT NULL
		)`,
	}
	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

type hubSeed struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Code    string   `json:"code"`
	Address string   `json:"address"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
	Active  *bool    `json:"active"`
}

// loadHubSeeds reads hub fixtures from a JSON file. A missing path yields
// an empty slice, the service can run with hubs added later.
func loadHubSeeds(path string) ([]hubSeed, error) {
	if path == "" {
		return nil, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("level=info msg=\"hub seed file absent, skipping\" path=%s", path)
			return nil, nil
		}
		return nil, fmt.Errorf("read hub seed %s: %w", path, err)
	}

	var seeds []hubSeed
	if err := json.Unmarshal(raw, &seeds); err != nil {
		return nil, fmt.Errorf("decode hub seed %s: %w", path, err)
	}
	return seeds, nil
}

// SeedHubsFromJSON loads hub fixtures into the SQLite database, upserting
// by id.
func SeedHubsFromJSON(ctx context.Context, db *sql.DB, path string) error {
	seeds, err := loadHubSeeds(path)
	if err != nil || len(seeds) == 0 {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin hub seed tx: %w", err)
	}
	defer tx.Rollback()

	for _, h := range seeds {
		active := 1
		if h.Active != nil && !*h.Active {
			active = 0
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO hubs (id, name, code, address, lat, lng, is_active)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
				name = excluded.name, code = excluded.code, address = excluded.address,
				lat = excluded.lat, lng = excluded.lng, is_active = excluded.is_active`,
			h.ID, h.Name, h.Code, h.Address, h.Lat, h.Lng, active,
		)
		if err != nil {
			return fmt.Errorf("upsert hub %s: %w", h.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit hub seed tx: %w", err)
	}
	log.Printf("level=info msg=\"hubs seeded\" count=%d path=%s", len(seeds), path)
	return nil
}

func scanHub(rows interface{ Scan(...any) error }) (domain.Hub, error) {
	var h domain.Hub
	var lat, lng sql.NullFloat64
	if err := rows.Scan(&h.ID, &h.Name, &h.Code, &h.Address, &lat, &lng); err != nil {
		return domain.Hub{}, err
	}
	if lat.Valid && lng.Valid {
		h.Coord = &domain.Coordinate{Lat: lat.Float64, Lng: lng.Float64}
	}
	return h, nil
}
