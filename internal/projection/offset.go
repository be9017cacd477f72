package projection

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedResolution is returned by ParseResolution for unknown values.
var ErrUnsupportedResolution = errors.New("unsupported resolution")

// ImageOffset maps full-disc pixel coordinates to scanning angles. X and Y are
// the scanning angles of pixel (0, 0) and ScaleFactor is the angle subtended
// by one pixel.
type ImageOffset struct {
	X           float64
	Y           float64
	ScaleFactor float64

	// ImageSize is the width and height of the full-disc frame.
	ImageSize int
}

// Full-disc offsets for the three standard ABI resolutions.
var (
	OneKm  = ImageOffset{X: -0.151858, Y: 0.151858, ScaleFactor: 0.000028, ImageSize: 10848}
	TwoKm  = ImageOffset{X: -0.151844, Y: 0.151844, ScaleFactor: 0.000056, ImageSize: 5424}
	FourKm = ImageOffset{X: -0.151816, Y: 0.151816, ScaleFactor: 0.000112, ImageSize: 2712}
)

// ParseResolution returns the offset for a resolution in kilometres, given as
// "1", "2" or "4" with an optional "km" suffix.
func ParseResolution(value string) (ImageOffset, error) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(value)), "km") {
	case "1":
		return OneKm, nil
	case "2":
		return TwoKm, nil
	case "4":
		return FourKm, nil
	}
	return ImageOffset{}, fmt.Errorf("%w: %q", ErrUnsupportedResolution, value)
}

// ToHorizontalScanningAngle converts a pixel column to a horizontal scanning
// angle.
func (o ImageOffset) ToHorizontalScanningAngle(x float64) float64 {
	return x*o.ScaleFactor + o.X
}

// ToVerticalScanningAngle converts a pixel row to a vertical scanning angle.
// Rows increase southwards while the angle increases northwards.
func (o ImageOffset) ToVerticalScanningAngle(y float64) float64 {
	return o.Y - y*o.ScaleFactor
}

// ToImageCoordinates converts scanning angles to fractional pixel
// coordinates.
func (o ImageOffset) ToImageCoordinates(scanningX, scanningY float64) (x, y float64) {
	return (scanningX - o.X) / o.ScaleFactor, (o.Y - scanningY) / o.ScaleFactor
}

// PixelToGeodetic converts a full-disc pixel to geodetic coordinates as seen
// from the orbit.
func (o ImageOffset) PixelToGeodetic(orbit Orbit, x, y float64) Geodetic {
	return orbit.Reverse(o.ToHorizontalScanningAngle(x), o.ToVerticalScanningAngle(y))
}

// GeodeticToPixel converts geodetic coordinates in radians to a fractional
// full-disc pixel. The boolean is false when the point is not visible.
func (o ImageOffset) GeodeticToPixel(orbit Orbit, latitude, longitude float64) (x, y float64, ok bool) {
	angle := orbit.Forward(latitude, longitude)
	if !angle.Visible() {
		return 0, 0, false
	}
	x, y = o.ToImageCoordinates(angle.X, angle.Y)
	return x, y, true
}
