package geo

import (
	"fmt"
	"math"
)

// GRS80 reference ellipsoid.
const (
	// RadiusEquator is the semi-major axis of the Earth in metres.
	RadiusEquator = 6378137.0

	// RadiusPolar is the semi-minor axis of the Earth in metres.
	RadiusPolar = 6356752.31414

	// Eccentricity of the ellipsoid.
	Eccentricity = 0.0818191910435
)

const (
	// Pi2 is 2π.
	Pi2 = 2 * math.Pi

	// PiOver2 is π/2.
	PiOver2 = math.Pi / 2
)

// Radians converts degrees to radians.
func Radians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// Degrees converts radians to degrees.
func Degrees(radians float64) float64 {
	return radians * 180 / math.Pi
}

// Limit wraps value into the half-open interval [min, max).
func Limit(value, min, max float64) float64 {
	span := max - min
	return math.Mod(math.Mod(value-min, span)+span, span) + min
}

// NormaliseLongitude wraps a longitude into [-π, π]. Values already inside the
// interval are returned unchanged, so the function is idempotent.
func NormaliseLongitude(angle float64) float64 {
	if angle >= -math.Pi && angle <= math.Pi {
		return angle
	}
	return Limit(angle, -math.Pi, math.Pi)
}

// Range is a pair of angles.
type Range struct {
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
}

// NewRangeDegrees builds a Range from angles in degrees.
func NewRangeDegrees(start, end float64) Range {
	return Range{Start: Radians(start), End: Radians(end)}
}

// UnwrapLongitude returns the range with End shifted by 2π when the range
// crosses the antimeridian, so that End >= Start.
func (r Range) UnwrapLongitude() Range {
	if r.End < r.Start {
		return Range{Start: r.Start, End: r.End + Pi2}
	}
	return r
}

// NormaliseLongitude normalises both ends of the range.
func (r Range) NormaliseLongitude() Range {
	return Range{Start: NormaliseLongitude(r.Start), End: NormaliseLongitude(r.End)}
}

// Shift adds amount to both ends of the range.
func (r Range) Shift(amount float64) Range {
	return Range{Start: r.Start + amount, End: r.End + amount}
}

// Width is End - Start.
func (r Range) Width() float64 {
	return r.End - r.Start
}

// Min is the smaller of the two bounds.
func (r Range) Min() float64 {
	return math.Min(r.Start, r.End)
}

// Max is the larger of the two bounds.
func (r Range) Max() float64 {
	return math.Max(r.Start, r.End)
}

// Contains reports whether angle lies between the two bounds, inclusive,
// regardless of their order.
func (r Range) Contains(angle float64) bool {
	return angle >= r.Min() && angle <= r.Max()
}

func (r Range) String() string {
	return fmt.Sprintf("%.2f° to %.2f°", Degrees(r.Start), Degrees(r.End))
}
