package satellite

import (
	"github.com/ironsheep/geostitch/internal/geo"
	"github.com/ironsheep/geostitch/internal/projection"
)

// Latitude limits of the usable part of a full-disc image. Start is the
// northern bound.
const (
	MaxLatitude = 81.3282
	MinLatitude = -81.3282
)

// Definition describes one geostationary satellite. It is immutable once
// built by a Registry.
type Definition struct {
	DisplayName string

	// Longitude of the sub-satellite point in radians, normalised and with any
	// configured adjustment applied.
	Longitude float64

	// Height above the ellipsoid in metres.
	Height float64

	// LatitudeRange is the usable latitude band, north first.
	LatitudeRange geo.Range

	// LongitudeRange is the visible longitude range. It may wrap across the
	// antimeridian, in which case End < Start.
	LongitudeRange geo.Range

	// Crop holds optional border crop ratios as {top, right, bottom, left}.
	Crop []float64

	// Brightness multiplier applied after normalisation.
	Brightness float64

	// Invert pixel intensities so that cold cloud tops are bright.
	Invert bool
}

// Orbit returns the position used by the projection transforms. A zero
// Height selects projection.DefaultHeight.
func (d *Definition) Orbit() projection.Orbit {
	return projection.NewOrbit(d.Longitude, d.Height)
}

// VisibleRange returns the longitude range visible from a satellite at the
// given longitude, found by scanning the centre row of a full-disc frame
// inwards from both edges for the first pixel that intersects the Earth.
// The scan always assumes projection.DefaultHeight, even for definitions that
// configure their own height, so visible ranges depend only on longitude.
func VisibleRange(longitude float64, offset projection.ImageOffset) geo.Range {
	orbit := projection.NewOrbit(longitude, projection.DefaultHeight)
	terms := orbit.NewVerticalScanTerms(offset.ToVerticalScanningAngle(float64(offset.ImageSize / 2)))

	var r geo.Range
	for x := 0; x < offset.ImageSize; x++ {
		if p := orbit.ReverseTerms(terms, offset.ToHorizontalScanningAngle(float64(x))); p.Visible() {
			r.Start = p.Longitude
			break
		}
	}
	for x := offset.ImageSize - 1; x > 0; x-- {
		if p := orbit.ReverseTerms(terms, offset.ToHorizontalScanningAngle(float64(x))); p.Visible() {
			r.End = p.Longitude
			break
		}
	}
	return r
}
