package underlay

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/geostitch/internal/metrics"
	"github.com/ironsheep/geostitch/internal/raster"
)

func geostationaryData(underlayPath string) ProjectionData {
	return ProjectionData{
		Projection:    Geostationary,
		Interpolation: raster.Bilinear,
		UnderlayPath:  underlayPath,
		ImageSize:     200,
	}
}

func TestCache_PutThenGet(t *testing.T) {
	ctx := context.Background()
	c, m := openCache(t, clockwork.NewFakeClockAt(epoch))
	data := geostationaryData(writeUnderlay(t, t.TempDir(), epoch.Add(-time.Hour)))
	def := definition("GOES-16", -75.2)

	_, ok := c.Get(ctx, data, def)
	assert.False(t, ok, "empty cache should miss")

	require.NoError(t, c.Put(ctx, createEquirectangular(40, 20), data, def))

	img, ok := c.Get(ctx, data, def)
	require.True(t, ok)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 20, img.Bounds().Dy())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.UnderlayCache.WithLabelValues(metrics.ResultMiss)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UnderlayCache.WithLabelValues(metrics.ResultHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UnderlayStores))
}

func TestCache_LongitudeDisambiguates(t *testing.T) {
	ctx := context.Background()
	c, _ := openCache(t, clockwork.NewFakeClockAt(epoch))
	data := geostationaryData(writeUnderlay(t, t.TempDir(), epoch.Add(-time.Hour)))

	require.NoError(t, c.Put(ctx, createEquirectangular(8, 8), data, definition("GOES-16", -75.2)))

	_, ok := c.Get(ctx, data, definition("GOES-17", -137.2))
	assert.False(t, ok, "different satellite longitude should miss")

	_, ok = c.Get(ctx, data, nil)
	assert.False(t, ok, "lookup without a satellite should only match NULL longitude")

	_, ok = c.Get(ctx, data, definition("GOES-16", -75.2))
	assert.True(t, ok)
}

func TestCache_NilDefinition(t *testing.T) {
	ctx := context.Background()
	c, _ := openCache(t, clockwork.NewFakeClockAt(epoch))
	data := ProjectionData{
		Projection:   Equirectangular,
		UnderlayPath: writeUnderlay(t, t.TempDir(), epoch.Add(-time.Hour)),
	}

	require.NoError(t, c.Put(ctx, createEquirectangular(8, 4), data, nil))

	_, ok := c.Get(ctx, data, nil)
	assert.True(t, ok)
}

func TestCache_MissingFileRemovesEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := openCache(t, clockwork.NewFakeClockAt(epoch))
	data := geostationaryData(writeUnderlay(t, t.TempDir(), epoch.Add(-time.Hour)))
	def := definition("Himawari-9", 140.7)

	require.NoError(t, c.Put(ctx, createEquirectangular(8, 8), data, def))
	files := cachedFiles(t, c)
	require.Len(t, files, 1)
	require.NoError(t, os.Remove(files[0]))

	_, ok := c.Get(ctx, data, def)
	assert.False(t, ok)

	n, err := c.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "entry for a missing file should be deleted")

	// A second lookup is a plain miss.
	_, ok = c.Get(ctx, data, def)
	assert.False(t, ok)
}

func TestCache_UnreadableFileRemovesEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := openCache(t, clockwork.NewFakeClockAt(epoch))
	data := geostationaryData(writeUnderlay(t, t.TempDir(), epoch.Add(-time.Hour)))
	def := definition("Himawari-9", 140.7)

	require.NoError(t, c.Put(ctx, createEquirectangular(8, 8), data, def))
	files := cachedFiles(t, c)
	require.Len(t, files, 1)
	require.NoError(t, os.WriteFile(files[0], []byte("not a jpeg"), 0o644))

	_, ok := c.Get(ctx, data, def)
	assert.False(t, ok)

	n, err := c.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, cachedFiles(t, c), "unreadable file should be removed")
}

func TestCache_StaleEntry(t *testing.T) {
	ctx := context.Background()
	c, m := openCache(t, clockwork.NewFakeClockAt(epoch))
	underlayPath := writeUnderlay(t, t.TempDir(), epoch.Add(-time.Hour))
	data := geostationaryData(underlayPath)
	def := definition("GOES-16", -75.2)

	require.NoError(t, c.Put(ctx, createEquirectangular(8, 8), data, def))

	_, ok := c.Get(ctx, data, def)
	require.True(t, ok)

	// The source underlay is replaced after the entry was written.
	updated := epoch.Add(time.Hour)
	require.NoError(t, os.Chtimes(underlayPath, updated, updated))

	_, ok = c.Get(ctx, data, def)
	assert.False(t, ok)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UnderlayCache.WithLabelValues(metrics.ResultStale)))

	n, err := c.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, cachedFiles(t, c))
}

func TestCache_NewestEntryWins(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(epoch)
	c, _ := openCache(t, clock)
	data := geostationaryData(writeUnderlay(t, t.TempDir(), epoch.Add(-time.Hour)))
	def := definition("GOES-16", -75.2)

	require.NoError(t, c.Put(ctx, createEquirectangular(8, 8), data, def))
	clock.Advance(time.Minute)
	require.NoError(t, c.Put(ctx, createEquirectangular(16, 8), data, def))

	img, ok := c.Get(ctx, data, def)
	require.True(t, ok)
	assert.Equal(t, 16, img.Bounds().Dx())
	assert.Len(t, cachedFiles(t, c), 2, "puts never overwrite")
}

func TestOpen_RetriesAfterMigrationFailure(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, DatabaseName)
	require.NoError(t, os.WriteFile(dbPath, []byte("stale"), 0o644))

	migrator := &fakeMigrator{failures: 1}
	_, err := Open(context.Background(), dir, migrator, Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, migrator.calls)
	assert.NoFileExists(t, dbPath, "database should be deleted before retrying")
}

func TestOpen_SecondFailureIsFatal(t *testing.T) {
	migrator := &fakeMigrator{failures: 2}
	_, err := Open(context.Background(), t.TempDir(), migrator, Options{})

	require.Error(t, err)
	assert.ErrorIs(t, err, errMigration)
	assert.Equal(t, 2, migrator.calls)
}

func TestOpen_RecoversCorruptDatabase(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	garbage := make([]byte, 4096)
	for i := range garbage {
		garbage[i] = byte(i*31 + 7)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, DatabaseName), garbage, 0o644))

	c, err := Open(ctx, dir, GooseMigrator{}, Options{Clock: clockwork.NewFakeClockAt(epoch)})
	require.NoError(t, err)

	data := geostationaryData(writeUnderlay(t, t.TempDir(), epoch.Add(-time.Hour)))
	require.NoError(t, c.Put(ctx, createEquirectangular(8, 8), data, nil))

	_, ok := c.Get(ctx, data, nil)
	assert.True(t, ok)
}

func TestOpen_ReopenKeepsEntries(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	clock := clockwork.NewFakeClockAt(epoch)
	data := geostationaryData(writeUnderlay(t, t.TempDir(), epoch.Add(-time.Hour)))

	first, err := Open(ctx, dir, GooseMigrator{}, Options{Clock: clock})
	require.NoError(t, err)
	require.NoError(t, first.Put(ctx, createEquirectangular(8, 8), data, nil))

	second, err := Open(ctx, dir, GooseMigrator{}, Options{Clock: clock})
	require.NoError(t, err)

	_, ok := second.Get(ctx, data, nil)
	assert.True(t, ok)
}
