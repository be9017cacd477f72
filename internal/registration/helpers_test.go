package registration

import (
	"image"
	"image/color"

	"github.com/ironsheep/geostitch/internal/geo"
	"github.com/ironsheep/geostitch/internal/satellite"
)

// createInMemoryImage returns a solid NRGBA image.
func createInMemoryImage(width, height int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// createPatternImage returns an image whose red channel is x and green
// channel is y.
func createPatternImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	return img
}

// definition returns a satellite with the given visible range in degrees.
func definition(name string, start, end float64) *satellite.Definition {
	return &satellite.Definition{
		DisplayName:    name,
		LongitudeRange: geo.NewRangeDegrees(start, end),
		LatitudeRange:  geo.NewRangeDegrees(90, -90),
		Brightness:     1,
	}
}
