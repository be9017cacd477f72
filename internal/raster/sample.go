package raster

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"
)

// ErrUnsupportedInterpolation is returned when an interpolation kind cannot be
// parsed.
var ErrUnsupportedInterpolation = errors.New("unsupported interpolation")

// Interpolation selects how fractional coordinates are sampled.
type Interpolation int

const (
	// Bilinear blends the four surrounding pixels.
	Bilinear Interpolation = iota

	// NearestNeighbour picks the closest pixel.
	NearestNeighbour
)

// ParseInterpolation accepts "b", "bilinear", "n" and "nearest".
func ParseInterpolation(value string) (Interpolation, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "b", "bilinear":
		return Bilinear, nil
	case "n", "nearest", "nearest-neighbour", "nearest-neighbor":
		return NearestNeighbour, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedInterpolation, value)
}

func (i Interpolation) String() string {
	switch i {
	case Bilinear:
		return "bilinear"
	case NearestNeighbour:
		return "nearest"
	}
	return fmt.Sprintf("Interpolation(%d)", int(i))
}

// Sample returns the colour at a fractional coordinate.
func (b *PixelBuffer) Sample(kind Interpolation, x, y float64) color.NRGBA {
	if kind == NearestNeighbour {
		return b.Nearest(x, y)
	}
	return b.Bilinear(x, y)
}

// Nearest returns the pixel closest to (x, y).
func (b *PixelBuffer) Nearest(x, y float64) color.NRGBA {
	if math.IsNaN(x) || math.IsNaN(y) {
		return Transparent
	}
	return b.At(int(math.Round(x)), int(math.Round(y)))
}

// Bilinear blends the four pixels surrounding (x, y). At the last row or
// column it returns the pixel at the floored coordinate instead.
func (b *PixelBuffer) Bilinear(x, y float64) color.NRGBA {
	if math.IsNaN(x) || math.IsNaN(y) {
		return Transparent
	}

	fx, fy := math.Floor(x), math.Floor(y)
	x0, y0 := int(fx), int(fy)

	if x0 < 0 || y0 < 0 || x0+1 >= b.Width || y0+1 >= b.Height {
		return b.At(x0, y0)
	}

	dx, dy := x-fx, y-fy

	i00 := y0*b.Stride + x0*4
	i01 := i00 + b.Stride

	p00 := b.Pix[i00 : i00+8 : i00+8]
	p01 := b.Pix[i01 : i01+8 : i01+8]

	w00 := (1 - dx) * (1 - dy)
	w10 := dx * (1 - dy)
	w01 := (1 - dx) * dy
	w11 := dx * dy

	var out [4]uint8
	for c := 0; c < 4; c++ {
		v := w00*float64(p00[c]) + w10*float64(p00[c+4]) + w01*float64(p01[c]) + w11*float64(p01[c+4])
		out[c] = clamp8(v)
	}

	return color.NRGBA{R: out[0], G: out[1], B: out[2], A: out[3]}
}

func clamp8(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
