// Package underlay renders and caches the full-colour background images that
// infrared imagery is blended over.
//
// Rendered underlays are written as JPEG files into a cache directory and
// registered in a SQLite database (cache.db) keyed by the canonical JSON of
// their ProjectionData plus, for geostationary underlays, the satellite
// longitude. The schema is managed by goose migrations; a database that cannot
// be migrated is deleted and recreated.
package underlay
