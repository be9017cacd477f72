// Package reproject resamples satellite imagery between the geostationary
// full-disc frame and the equirectangular frame.
//
// Equirectangular.Reproject maps a full-disc image onto part of an
// equirectangular canvas whose width is twice its height. Longitudes inside
// the satellite's core range are copied opaque; a feather margin on either
// side, BlendRatio times the core width, ramps alpha linearly to zero so that
// adjacent satellites blend without a visible seam. Everything else, including
// points the satellite cannot see, is transparent.
//
// ToGeostationary does the reverse, sampling an equirectangular image (usually
// the underlay) for every pixel of a full-disc frame.
//
// Both directions run row-parallel via raster.ParallelRows and memoise the
// per-row projection terms in a cache that lives only as long as the
// reprojector that owns it.
package reproject
