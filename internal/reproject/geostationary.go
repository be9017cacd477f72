package reproject

import (
	"image"

	"github.com/ironsheep/geostitch/internal/geo"
	"github.com/ironsheep/geostitch/internal/projection"
	"github.com/ironsheep/geostitch/internal/raster"
)

// ToGeostationary projects an equirectangular image into the full-disc frame
// of a satellite. Pixels whose scanning ray misses the Earth are transparent.
func ToGeostationary(src *raster.PixelBuffer, orbit projection.Orbit, offset projection.ImageOffset, opts Options) *image.NRGBA {
	size := offset.ImageSize
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))

	scans := newRowCache(func(y int) projection.VerticalScanTerms {
		return orbit.NewVerticalScanTerms(offset.ToVerticalScanningAngle(float64(y)))
	})

	width := float64(src.Width)

	raster.ParallelRows(size, opts.Workers, func(y int) {
		terms := scans.get(y)
		pix := dst.Pix[y*dst.Stride : y*dst.Stride+size*4]

		for x := 0; x < size; x++ {
			p := orbit.ReverseTerms(terms, offset.ToHorizontalScanningAngle(float64(x)))
			if !p.Visible() {
				continue
			}

			sx := geo.Limit(geo.ScaleToWidth(p.Longitude, src.Width), 0, width)
			sy := geo.ScaleToHeight(p.Latitude, src.Height)
			c := src.Sample(opts.Interpolation, sx, sy)

			i := x * 4
			pix[i+0] = c.R
			pix[i+1] = c.G
			pix[i+2] = c.B
			pix[i+3] = c.A
		}
	})

	return dst
}
