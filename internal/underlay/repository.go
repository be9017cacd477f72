package underlay

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Register the "sqlite" driver
)

const driverName = "sqlite"

// entry is one row of the UnderlayCache table.
type entry struct {
	Filename  string
	Timestamp time.Time
}

// repository stores cache registrations. Every call opens and closes its own
// connection so the database file can be deleted between calls.
type repository struct {
	path string
}

func (r *repository) open() (*sql.DB, error) {
	db, err := sql.Open(driverName, r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	return db, nil
}

// migrate runs migrator against a fresh connection.
func (r *repository) migrate(ctx context.Context, migrator Migrator) error {
	db, err := r.open()
	if err != nil {
		return err
	}
	defer db.Close()

	return migrator.Migrate(ctx, db)
}

// register adds a row for filename. A nil longitude is stored as NULL.
func (r *repository) register(ctx context.Context, key string, longitude *float64, filename string, timestamp time.Time) error {
	db, err := r.open()
	if err != nil {
		return err
	}
	defer db.Close()

	var lon sql.NullFloat64
	if longitude != nil {
		lon = sql.NullFloat64{Float64: *longitude, Valid: true}
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO UnderlayCache (Filename, Configuration, Longitude, Timestamp) VALUES (?, ?, ?, ?)`,
		filename, key, lon, timestamp.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to register cache entry: %w", err)
	}
	return nil
}

// lookup returns the newest row for key and longitude.
func (r *repository) lookup(ctx context.Context, key string, longitude *float64) (entry, bool, error) {
	db, err := r.open()
	if err != nil {
		return entry{}, false, err
	}
	defer db.Close()

	query := `SELECT Filename, Timestamp FROM UnderlayCache WHERE Configuration = ? AND Longitude IS NULL ORDER BY rowid DESC LIMIT 1`
	args := []any{key}
	if longitude != nil {
		query = `SELECT Filename, Timestamp FROM UnderlayCache WHERE Configuration = ? AND Longitude = ? ORDER BY rowid DESC LIMIT 1`
		args = append(args, *longitude)
	}

	var (
		e         entry
		timestamp string
	)
	err = db.QueryRowContext(ctx, query, args...).Scan(&e.Filename, &timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return entry{}, false, nil
	}
	if err != nil {
		return entry{}, false, fmt.Errorf("failed to query cache: %w", err)
	}

	e.Timestamp, err = time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		return entry{}, false, fmt.Errorf("invalid cache timestamp %q: %w", timestamp, err)
	}
	return e, true, nil
}

// clear deletes every row referencing filename.
func (r *repository) clear(ctx context.Context, filename string) error {
	db, err := r.open()
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, `DELETE FROM UnderlayCache WHERE Filename = ?`, filename); err != nil {
		return fmt.Errorf("failed to clear cache entry: %w", err)
	}
	return nil
}

// count is the number of rows in the table.
func (r *repository) count(ctx context.Context) (int, error) {
	db, err := r.open()
	if err != nil {
		return 0, err
	}
	defer db.Close()

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM UnderlayCache`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	return n, nil
}
