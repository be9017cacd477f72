package reproject

import (
	"image"
	"math"

	"github.com/ironsheep/geostitch/internal/geo"
	"github.com/ironsheep/geostitch/internal/projection"
	"github.com/ironsheep/geostitch/internal/raster"
)

// DefaultBlendRatio is the width of each feather margin as a fraction of the
// core longitude range.
const DefaultBlendRatio = 0.10

// Options control resampling.
type Options struct {
	Interpolation raster.Interpolation

	// BlendRatio sets the feather margin width. Zero disables feathering.
	BlendRatio float64

	// Workers is the number of row-parallel goroutines; zero or less uses
	// GOMAXPROCS.
	Workers int
}

// DefaultOptions returns bilinear sampling with the default blend ratio.
func DefaultOptions() Options {
	return Options{Interpolation: raster.Bilinear, BlendRatio: DefaultBlendRatio}
}

// Source is a full-disc image and the geometry needed to sample it.
type Source struct {
	Pixels *raster.PixelBuffer
	Orbit  projection.Orbit
	Offset projection.ImageOffset

	// LatitudeRange limits output rows, north first.
	LatitudeRange geo.Range

	// LongitudeRange is the core range copied without feathering. It is
	// unwrapped before use.
	LongitudeRange geo.Range
}

// Region is the part of the canvas to render, in canvas pixels. Because
// longitude ranges are unwrapped, X may run past the canvas width; such
// columns represent longitudes beyond 180°.
type Region = image.Rectangle

// RegionFor returns the canvas region covering the visible longitude range
// and latitude range on a canvas of the given size.
func RegionFor(visible, latitude geo.Range, canvasWidth, canvasHeight int) Region {
	x := geo.PixelRangeX(visible.UnwrapLongitude(), canvasWidth)
	y := geo.PixelRangeY(latitude, canvasHeight)
	return image.Rect(x.Start, y.Start, x.End, y.End)
}

// Equirectangular reprojects full-disc images onto one equirectangular canvas.
// The latitude terms it caches depend only on the canvas row, so one value can
// be shared by every satellite in a render.
type Equirectangular struct {
	CanvasWidth  int
	CanvasHeight int

	latitudes *rowCache[rowLatitude]
}

type rowLatitude struct {
	latitude float64
	terms    projection.LatitudeTerms
}

// NewEquirectangular returns a reprojector for a canvas of the given size.
func NewEquirectangular(canvasWidth, canvasHeight int) *Equirectangular {
	return &Equirectangular{
		CanvasWidth:  canvasWidth,
		CanvasHeight: canvasHeight,
		latitudes: newRowCache(func(y int) rowLatitude {
			latitude := geo.LatitudeFromY(y, canvasHeight)
			return rowLatitude{latitude: latitude, terms: projection.NewLatitudeTerms(latitude)}
		}),
	}
}

// Reproject renders region of the canvas from src. The returned image has the
// size of region with its origin at (0, 0).
func (e *Equirectangular) Reproject(src Source, region Region, opts Options) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, region.Dx(), region.Dy()))
	f := newFeather(src.LongitudeRange.UnwrapLongitude(), opts.BlendRatio)

	raster.ParallelRows(region.Dy(), opts.Workers, func(y int) {
		row := e.latitudes.get(y + region.Min.Y)
		pix := dst.Pix[y*dst.Stride : y*dst.Stride+region.Dx()*4]

		if !src.LatitudeRange.Contains(row.latitude) {
			return
		}

		for x := 0; x < region.Dx(); x++ {
			longitude := geo.LongitudeFromX(x+region.Min.X, e.CanvasWidth)

			alpha, ok := f.alpha(longitude)
			if !ok {
				continue
			}

			angle := src.Orbit.ForwardTerms(row.terms, longitude)
			if !angle.Visible() {
				continue
			}

			sx, sy := src.Offset.ToImageCoordinates(angle.X, angle.Y)
			c := src.Pixels.Sample(opts.Interpolation, sx, sy)

			i := x * 4
			pix[i+0] = c.R
			pix[i+1] = c.G
			pix[i+2] = c.B
			pix[i+3] = uint8(math.Round(alpha * float64(c.A)))
		}
	})

	return dst
}

// CachedRows is the number of canvas rows whose latitude terms are cached.
func (e *Equirectangular) CachedRows() int {
	return e.latitudes.len()
}

// feather holds the core longitude range and its blended margins.
type feather struct {
	start, end           float64
	blendStart, blendEnd float64
}

func newFeather(core geo.Range, ratio float64) feather {
	overlap := ratio * core.Width()
	return feather{
		start:      core.Start,
		end:        core.End,
		blendStart: core.Start - overlap,
		blendEnd:   core.End + overlap,
	}
}

// alpha returns the opacity multiplier for a longitude, and false when the
// longitude is outside both the core and the margins.
func (f feather) alpha(longitude float64) (float64, bool) {
	switch {
	case longitude < f.blendStart || longitude > f.blendEnd:
		return 0, false
	case longitude > f.start && longitude <= f.end:
		return 1, true
	case longitude > f.end:
		return 1 - (longitude-f.end)/(f.blendEnd-f.end), true
	case f.start > f.blendStart:
		return 1 - (f.start-longitude)/(f.start-f.blendStart), true
	}
	return 1, true
}
