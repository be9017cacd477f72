package underlay

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/ironsheep/geostitch/internal/underlay/migrations"
)

// Migrator brings a cache database up to the current schema.
type Migrator interface {
	Migrate(ctx context.Context, db *sql.DB) error
}

// GooseMigrator applies the migrations in the migrations package.
type GooseMigrator struct{}

// Migrate runs every pending migration.
func (GooseMigrator) Migrate(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, nil,
		goose.WithGoMigrations(migrations.All()...),
		goose.WithDisableGlobalRegistry(true),
	)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to migrate cache database: %w", err)
	}
	return nil
}
