// Package geo provides the angular primitives shared by the projection and
// raster packages.
//
// All angles are in radians unless a function name says otherwise. Longitudes
// are normalised to [-π, π]; latitude ranges follow the convention used by the
// satellite definitions, where Start is the northern bound and End the southern
// bound.
//
// # Equirectangular Pixel Space
//
// An equirectangular canvas of width W and height H maps:
//   - X: longitude -π at x=0 to +π at x=W
//   - Y: latitude +π/2 at y=0 to -π/2 at y=H
//
// Longitude ranges which cross the antimeridian are "unwrapped" with
// Range.UnwrapLongitude so that End is always at least Start, which keeps the
// per-pixel comparisons in the reprojector linear.
package geo
