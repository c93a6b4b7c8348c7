package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

// InitPostgresSchema creates the tables for a shared multi-instance
// deployment. Idempotent.
func InitPostgresSchema(ctx context.Context, db *sql.DB) error {
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
			lat       DOUBLE PRECISION,
			lng       DOUBLE PRECISION,
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS geocode_cache (
			cache_key TEXT PRIMARY KEY,
			lat       DOUBLE PRECISION NOT NULL,
			lng       DOUBLE PRECISION NOT NULL
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

// SeedHubsPostgres loads hub fixtures into the shared database, upserting
// by id.
func SeedHubsPostgres(ctx context.Context, db *sql.DB, path string) error {
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
		active := h.Active == nil || *h.Active
		_, err := tx.ExecContext(ctx,
			`INSERT INTO hubs (id, name, code, address, lat, lng, is_active)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name, code = EXCLUDED.code, address = EXCLUDED.address,
				lat = EXCLUDED.lat, lng = EXCLUDED.lng, is_active = EXCLUDED.is_active`,
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
