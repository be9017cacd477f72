package migrations

import (
	"context"
	"database/sql"
)

// Up00001 creates the underlay cache table.
func Up00001(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS UnderlayCache (
			Filename      TEXT NOT NULL,
			Configuration TEXT NOT NULL,
			Longitude     REAL NULL,
			Timestamp     TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_underlay_cache_configuration
		ON UnderlayCache (Configuration, Longitude);
		`)
	return err
}

// Down00001 drops the underlay cache table.
func Down00001(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		DROP INDEX IF EXISTS idx_underlay_cache_configuration;
		DROP TABLE IF EXISTS UnderlayCache;
		`)
	return err
}
