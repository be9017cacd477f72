package underlay

import (
	"context"
	"database/sql"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/geostitch/internal/geo"
	"github.com/ironsheep/geostitch/internal/metrics"
	"github.com/ironsheep/geostitch/internal/satellite"
)

var epoch = time.Date(2024, time.April, 26, 15, 10, 0, 0, time.UTC)

// createEquirectangular returns an opaque world image whose colour changes by
// hemisphere, so crops and projections are observable.
func createEquirectangular(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBA{R: 30, G: 90, B: 200, A: 255}
			if y < height/2 {
				c = color.NRGBA{R: 40, G: 160, B: 60, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// writeUnderlay saves a world image into dir and sets its modification time.
func writeUnderlay(t *testing.T, dir string, modified time.Time) string {
	t.Helper()
	path := filepath.Join(dir, "world.png")
	require.NoError(t, imaging.Save(createEquirectangular(64, 32), path))
	require.NoError(t, os.Chtimes(path, modified, modified))
	return path
}

func openCache(t *testing.T, clock clockwork.Clock) (*Cache, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(nil)
	c, err := Open(context.Background(), t.TempDir(), GooseMigrator{}, Options{Clock: clock, Metrics: m})
	require.NoError(t, err)
	return c, m
}

func cachedFiles(t *testing.T, c *Cache) []string {
	t.Helper()
	files, err := filepath.Glob(filepath.Join(c.Dir(), "*.jpg"))
	require.NoError(t, err)
	return files
}

func definition(name string, longitude float64) *satellite.Definition {
	return &satellite.Definition{
		DisplayName:   name,
		Longitude:     geo.Radians(longitude),
		LatitudeRange: geo.NewRangeDegrees(satellite.MaxLatitude, satellite.MinLatitude),
	}
}

var errMigration = errors.New("migration failed")

// fakeMigrator fails its first failures calls.
type fakeMigrator struct {
	failures int
	calls    int
}

func (m *fakeMigrator) Migrate(_ context.Context, _ *sql.DB) error {
	m.calls++
	if m.calls <= m.failures {
		return errMigration
	}
	return nil
}
