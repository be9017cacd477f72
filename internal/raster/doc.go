// Package raster provides the pixel-level building blocks of the reprojection
// engine.
//
// # Pixel Buffers
//
// A PixelBuffer is a flat, non-premultiplied RGBA view of a decoded image. It
// is built once per source raster and is read-only afterwards, so any number of
// goroutines may sample it concurrently without locking.
//
// # Sampling
//
// Sample looks up a fractional coordinate using one of two interpolation kinds:
//
//   - NearestNeighbour rounds to the nearest pixel
//   - Bilinear blends the four surrounding pixels per channel
//
// Coordinates outside the buffer resolve to Transparent. Bilinear sampling on
// the last row or column, where the +1 neighbour does not exist, falls back to
// nearest-neighbour at the floored coordinate.
//
// # Row Parallelism
//
// ParallelRows splits the rows of a target image into contiguous, disjoint
// spans and runs each span on its own goroutine. Each row index is passed to
// the callback exactly once.
//
// # Loading
//
// Loader decodes images from disk via github.com/disintegration/imaging and
// caches them by path for reuse across tool calls.
package raster
