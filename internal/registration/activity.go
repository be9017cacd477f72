package registration

import (
	"errors"
	"math"

	"github.com/ironsheep/geostitch/internal/geo"
	"github.com/ironsheep/geostitch/internal/satellite"
)

// ErrNoRegistrations is returned when an operation needs at least one
// registration.
var ErrNoRegistrations = errors.New("no registrations")

// Activity is the ordered set of registrations for one render.
type Activity struct {
	Registrations []*Registration
}

// NewActivity groups registrations.
func NewActivity(registrations ...*Registration) *Activity {
	return &Activity{Registrations: registrations}
}

// Definitions returns the satellite definitions in registration order.
func (a *Activity) Definitions() []*satellite.Definition {
	defs := make([]*satellite.Definition, 0, len(a.Registrations))
	for _, r := range a.Registrations {
		defs = append(defs, r.Definition)
	}
	return defs
}

// CalculateOverlaps sets each registration's longitude range. When trim is
// false the full visible ranges are kept and only the overlap flags are
// recorded.
func (a *Activity) CalculateOverlaps(trim bool) {
	calc := NewOverlapCalculator(a.Definitions())
	for _, r := range a.Registrations {
		pr := calc.NonOverlappingRange(r.Definition)
		if !trim {
			pr.Range = r.Definition.LongitudeRange
		}
		r.LongitudeRange = pr
	}
}

// CropRange returns the latitude band shared by every registration, north
// first, and the full longitude range.
func (a *Activity) CropRange() (latitude, longitude geo.Range, err error) {
	if len(a.Registrations) == 0 {
		return geo.Range{}, geo.Range{}, ErrNoRegistrations
	}

	north, south := math.Inf(1), math.Inf(-1)
	for _, r := range a.Registrations {
		north = math.Min(north, r.LatitudeRange.Max())
		south = math.Max(south, r.LatitudeRange.Min())
	}

	return geo.Range{Start: north, End: south}, geo.NewRangeDegrees(-180, 180), nil
}

// IsFullEarthCoverage reports whether every registration is overlapped on
// both sides, meaning the mosaic wraps all the way round.
func (a *Activity) IsFullEarthCoverage() bool {
	if len(a.Registrations) == 0 {
		return false
	}
	for _, r := range a.Registrations {
		if !r.LongitudeRange.OverlappingLeft || !r.LongitudeRange.OverlappingRight {
			return false
		}
	}
	return true
}

// Close releases every registration's image.
func (a *Activity) Close() {
	for _, r := range a.Registrations {
		r.Close()
	}
}
