package raster

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Transparent is returned for samples outside the buffer.
var Transparent = color.NRGBA{}

// PixelBuffer is a flat NRGBA pixel array with its dimensions.
type PixelBuffer struct {
	Pix    []uint8
	Width  int
	Height int
	Stride int
}

// NewPixelBuffer builds a buffer from an image. *image.NRGBA values whose
// bounds start at the origin are used without copying; anything else is
// converted with imaging.Clone.
func NewPixelBuffer(img image.Image) *PixelBuffer {
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) {
		nrgba = imaging.Clone(img)
	}

	return &PixelBuffer{
		Pix:    nrgba.Pix,
		Width:  nrgba.Rect.Dx(),
		Height: nrgba.Rect.Dy(),
		Stride: nrgba.Stride,
	}
}

// At returns the pixel at (x, y), or Transparent when out of bounds.
func (b *PixelBuffer) At(x, y int) color.NRGBA {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return Transparent
	}
	i := y*b.Stride + x*4
	p := b.Pix[i : i+4 : i+4]
	return color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
}

// Image wraps the buffer as an *image.NRGBA sharing the same pixels.
func (b *PixelBuffer) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Pix,
		Stride: b.Stride,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}
