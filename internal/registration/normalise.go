package registration

import (
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/geostitch/internal/geo"
	"github.com/ironsheep/geostitch/internal/raster"
)

// borderRatio shrinks the Earth mask slightly so that single-pixel rounding
// at the limb does not leak the background.
const borderRatio = 0.001

// NormaliseOptions control Normalise.
type NormaliseOptions struct {
	// ImageSize is the full-disc width and height to resize to.
	ImageSize int

	// ApplyBrightness enables the definition's brightness multiplier. It is
	// only wanted when stitching several satellites.
	ApplyBrightness bool

	Workers int
}

// Normalise crops, resizes, inverts, adjusts and masks the registration's
// image in place.
func (r *Registration) Normalise(opts NormaliseOptions) error {
	img := r.Image
	def := r.Definition

	if def.Crop != nil {
		cropped, err := CropBorder(img, def.Crop)
		if err != nil {
			return fmt.Errorf("%s: %w", def.DisplayName, err)
		}
		img = cropped
	}

	if opts.ImageSize > 0 && (img.Bounds().Dx() != opts.ImageSize || img.Bounds().Dy() != opts.ImageSize) {
		img = imaging.Resize(img, opts.ImageSize, opts.ImageSize, imaging.Lanczos)
	}

	if def.Invert {
		img = imaging.Clone(effect.Invert(img))
	}

	if opts.ApplyBrightness && def.Brightness != 1 && def.Brightness > 0 {
		img = imaging.Clone(Brightness(img, def.Brightness))
	}

	RemoveBackground(img, opts.Workers)
	r.Image = img
	return nil
}

// Brightness multiplies the colour channels of img by factor.
func Brightness(img image.Image, factor float64) *image.RGBA {
	return adjust.Apply(img, func(c color.RGBA) color.RGBA {
		return color.RGBA{
			R: scale(c.R, factor, c.A),
			G: scale(c.G, factor, c.A),
			B: scale(c.B, factor, c.A),
			A: c.A,
		}
	})
}

// scale multiplies a premultiplied channel, clamping to alpha.
func scale(v uint8, factor float64, alpha uint8) uint8 {
	s := float64(v)*factor + 0.5
	if s > float64(alpha) {
		return alpha
	}
	return uint8(s)
}

// RemoveBackground makes every pixel outside the Earth's disc transparent.
// The disc is an ellipse filling the image width, flattened by the polar
// radius.
func RemoveBackground(img *image.NRGBA, workers int) {
	w, h := img.Rect.Dx(), img.Rect.Dy()

	semiMajor := float64(w) / 2
	semiMinor := float64(h) * (geo.RadiusPolar / geo.RadiusEquator) / 2
	a2, b2 := semiMajor*semiMajor, semiMinor*semiMinor

	raster.ParallelRows(h, workers, func(y int) {
		dy := float64(y) - float64(h)/2
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]

		for x := 0; x < w; x++ {
			dx := float64(x) - float64(w)/2
			if dx*dx/a2+dy*dy/b2 < 1-borderRatio {
				continue
			}
			i := x * 4
			row[i], row[i+1], row[i+2], row[i+3] = 0, 0, 0, 0
		}
	})
}
