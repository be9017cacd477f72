package registration

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// ErrInvalidCrop is returned for malformed border crop ratios.
var ErrInvalidCrop = errors.New("invalid crop")

// CropBorder removes a border from each edge of img. Ratios are fractions of
// the image size in the order {top, right, bottom, left}.
func CropBorder(img image.Image, ratios []float64) (*image.NRGBA, error) {
	if len(ratios) != 4 {
		return nil, fmt.Errorf("%w: expected 4 ratios, got %d", ErrInvalidCrop, len(ratios))
	}
	for _, r := range ratios {
		if r < 0 || r >= 1 || math.IsNaN(r) {
			return nil, fmt.Errorf("%w: ratio %v outside [0, 1)", ErrInvalidCrop, r)
		}
	}

	bounds := img.Bounds()
	w, h := float64(bounds.Dx()), float64(bounds.Dy())
	top, right, bottom, left := ratios[0], ratios[1], ratios[2], ratios[3]

	x := int(math.Round(left * w))
	y := int(math.Round(top * h))
	cw := int(math.Round(w - left*w - right*w))
	ch := int(math.Round(h - top*h - bottom*h))

	if cw <= 0 || ch <= 0 {
		return nil, fmt.Errorf("%w: ratios %v leave no image", ErrInvalidCrop, ratios)
	}

	rect := image.Rect(x, y, x+cw, y+ch).Add(bounds.Min)
	return imaging.Crop(img, rect), nil
}
