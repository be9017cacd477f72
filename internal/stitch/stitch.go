// Package stitch composites reprojected satellite layers into a single
// equirectangular mosaic.
package stitch

import (
	"errors"
	"image"
	"image/color"
	"sort"

	"github.com/disintegration/imaging"
)

// ErrNoLayers is returned when Stitch is called without any layers.
var ErrNoLayers = errors.New("no layers to stitch")

// Layer is a reprojected image and its horizontal position on the canvas.
type Layer struct {
	Image   image.Image
	OffsetX int
}

// Options control the canvas.
type Options struct {
	// CanvasWidth fixes the canvas width and keeps offsets absolute. When
	// zero, the canvas is trimmed to the layers and offsets are made relative
	// to the smallest one.
	CanvasWidth int

	// Background fills the canvas before drawing. The zero value leaves it
	// transparent.
	Background color.NRGBA
}

// Stitch draws layers onto a new canvas in descending offset order, so where
// layers overlap the one with the smaller offset is on top. Layers that run
// past the right edge wrap around to column 0. All layers are expected to
// share the height of the first.
func Stitch(layers []Layer, opts Options) (*image.NRGBA, error) {
	if len(layers) == 0 {
		return nil, ErrNoLayers
	}

	sorted := make([]Layer, len(layers))
	copy(sorted, layers)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].OffsetX < sorted[j].OffsetX })

	width, base := opts.CanvasWidth, 0
	if width <= 0 {
		first, last := sorted[0], sorted[len(sorted)-1]
		base = first.OffsetX
		width = last.OffsetX + last.Image.Bounds().Dx() - base
	}
	height := layers[0].Image.Bounds().Dy()

	canvas := imaging.New(width, height, opts.Background)

	for i := len(sorted) - 1; i >= 0; i-- {
		canvas = drawCylindrical(canvas, sorted[i].Image, sorted[i].OffsetX-base)
	}

	return canvas, nil
}

// drawCylindrical overlays img at column x, repeating any part that falls
// outside the canvas on the opposite side.
func drawCylindrical(canvas *image.NRGBA, img image.Image, x int) *image.NRGBA {
	width := canvas.Bounds().Dx()
	x = ((x % width) + width) % width

	canvas = imaging.Overlay(canvas, img, image.Pt(x, 0), 1.0)
	if x+img.Bounds().Dx() > width {
		canvas = imaging.Overlay(canvas, img, image.Pt(x-width, 0), 1.0)
	}
	return canvas
}

// Shift rotates an equirectangular image horizontally by dx columns, wrapping
// columns that leave one edge back in at the other.
func Shift(img image.Image, dx int) *image.NRGBA {
	b := img.Bounds()
	canvas := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if b.Dx() == 0 {
		return canvas
	}
	return drawCylindrical(canvas, img, dx)
}
