package underlay

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/ironsheep/geostitch/internal/metrics"
	"github.com/ironsheep/geostitch/internal/raster"
	"github.com/ironsheep/geostitch/internal/satellite"
)

// DatabaseName is the file name of the cache database inside the cache
// directory.
const DatabaseName = "cache.db"

// Options supply the collaborators of a Cache. Zero values fall back to the
// real clock, the default logger and no metrics.
type Options struct {
	Clock   clockwork.Clock
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Cache stores rendered underlays on disk, keyed by ProjectionData and the
// longitude of the satellite they were projected for.
//
// A lookup never fails: database errors, missing or unreadable files and
// entries older than the source underlay are all reported as a miss, and the
// offending entry is removed.
type Cache struct {
	dir     string
	repo    *repository
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Open prepares the cache directory and migrates its database. If migration
// fails the database is deleted and migration is retried once.
func Open(ctx context.Context, dir string, migrator Migrator, opts Options) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	c := &Cache{
		dir:     dir,
		repo:    &repository{path: filepath.Join(dir, DatabaseName)},
		clock:   opts.Clock,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
	if c.clock == nil {
		c.clock = clockwork.NewRealClock()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	if err := c.repo.migrate(ctx, migrator); err != nil {
		c.logger.Error("cache database migration failed; deleting database and retrying",
			"path", c.repo.path, "error", err)

		if err := os.Remove(c.repo.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to delete cache database: %w", err)
		}
		if err := c.repo.migrate(ctx, migrator); err != nil {
			return nil, fmt.Errorf("fatal error initialising cache database: %w", err)
		}
	}

	c.logger.Debug("cache database migrated", "path", c.repo.path)
	return c, nil
}

// Dir is the directory holding the database and cached images.
func (c *Cache) Dir() string {
	return c.dir
}

// Get returns the cached underlay for data and definition, which may be nil
// for underlays not projected for a satellite.
func (c *Cache) Get(ctx context.Context, data ProjectionData, def *satellite.Definition) (*image.NRGBA, bool) {
	logger := c.entryLogger(def)

	key, err := data.Key()
	if err != nil {
		logger.Warn("unable to build cache key", "error", err)
		c.metrics.CacheLookup(metrics.ResultError)
		return nil, false
	}

	e, ok, err := c.repo.lookup(ctx, key, longitudeOf(def))
	if err != nil {
		logger.Warn("cache lookup failed", "error", err)
		c.metrics.CacheLookup(metrics.ResultError)
		return nil, false
	}
	if !ok {
		c.metrics.CacheLookup(metrics.ResultMiss)
		return nil, false
	}

	path := filepath.Join(c.dir, e.Filename)
	if _, err := os.Stat(path); err != nil {
		logger.Warn("cache file not found; removing from cache registration", "filename", e.Filename)
		c.evict(ctx, e.Filename)
		c.metrics.CacheLookup(metrics.ResultMiss)
		return nil, false
	}

	if info, err := os.Stat(data.UnderlayPath); err == nil && e.Timestamp.Before(info.ModTime()) {
		logger.Info("underlay changed since it was cached; updating cache", "filename", e.Filename)
		c.evict(ctx, e.Filename)
		c.metrics.CacheLookup(metrics.ResultStale)
		return nil, false
	}

	img, err := raster.Open(path)
	if err != nil {
		logger.Warn("cache file unable to be read; removing from cache registration",
			"filename", e.Filename, "error", err)
		c.evict(ctx, e.Filename)
		c.metrics.CacheLookup(metrics.ResultMiss)
		return nil, false
	}

	logger.Info("using cached underlay", "filename", e.Filename)
	c.metrics.CacheLookup(metrics.ResultHit)
	return imaging.Clone(img), true
}

// Put writes img to a new file in the cache directory and registers it.
// Existing entries for the same key are left in place; Get returns the newest.
func (c *Cache) Put(ctx context.Context, img image.Image, data ProjectionData, def *satellite.Definition) error {
	key, err := data.Key()
	if err != nil {
		return err
	}

	filename := uuid.NewString() + ".jpg"
	path := filepath.Join(c.dir, filename)

	c.entryLogger(def).Info("caching underlay", "filename", filename)

	if err := raster.Save(img, path); err != nil {
		return fmt.Errorf("failed to write cached underlay: %w", err)
	}

	if err := c.repo.register(ctx, key, longitudeOf(def), filename, c.clock.Now()); err != nil {
		_ = os.Remove(path)
		return err
	}

	c.metrics.CacheStore()
	return nil
}

// Len is the number of registered entries.
func (c *Cache) Len(ctx context.Context) (int, error) {
	return c.repo.count(ctx)
}

// evict deletes the registration and file for filename. Failures are logged.
func (c *Cache) evict(ctx context.Context, filename string) {
	if err := c.repo.clear(ctx, filename); err != nil {
		c.logger.Warn("failed to clear cache entry", "filename", filename, "error", err)
	}
	if err := os.Remove(filepath.Join(c.dir, filename)); err != nil && !errors.Is(err, os.ErrNotExist) {
		c.logger.Warn("failed to remove cache file", "filename", filename, "error", err)
	}
}

func (c *Cache) entryLogger(def *satellite.Definition) *slog.Logger {
	if def == nil {
		return c.logger
	}
	return c.logger.With("satellite", def.DisplayName)
}

func longitudeOf(def *satellite.Definition) *float64 {
	if def == nil {
		return nil
	}
	lon := def.Longitude
	return &lon
}
