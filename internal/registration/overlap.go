package registration

import (
	"math"

	"github.com/ironsheep/geostitch/internal/geo"
	"github.com/ironsheep/geostitch/internal/satellite"
)

// OverlapCalculator trims satellite longitude ranges where they overlap.
//
// Each overlap is split at its midpoint. Only one neighbour per side is
// handled; a satellite overlapped on the same side by two others keeps the
// tighter of the two trims.
type OverlapCalculator struct {
	definitions []*satellite.Definition
}

// NewOverlapCalculator returns a calculator for the given set of satellites.
func NewOverlapCalculator(definitions []*satellite.Definition) *OverlapCalculator {
	return &OverlapCalculator{definitions: definitions}
}

// NonOverlappingRange returns the trimmed range of def. The result is in the
// unwrapped frame of def's visible range, so End >= Start.
func (c *OverlapCalculator) NonOverlappingRange(def *satellite.Definition) ProjectionRange {
	visible := def.LongitudeRange
	unwrapped := visible.UnwrapLongitude()

	minLongitude, maxLongitude := unwrapped.Start, unwrapped.End
	var left, right bool

	for _, other := range c.definitions {
		if other == def {
			continue
		}

		r := unwrapped
		o := other.LongitudeRange.UnwrapLongitude()
		offset := 0.0

		// Shift both ranges so that neither wraps across the antimeridian.
		if wraps(visible) || wraps(other.LongitudeRange) {
			if wraps(other.LongitudeRange) {
				offset = -math.Pi - math.Min(visible.Start, other.LongitudeRange.Start)
			} else {
				offset = -math.Pi - math.Max(visible.Start, other.LongitudeRange.Start)
			}

			r = r.Shift(offset).NormaliseLongitude()
			o = o.Shift(offset).NormaliseLongitude()

			minLongitude += offset
			maxLongitude += offset
		}

		switch {
		case r.Start < o.Start && r.End > o.Start:
			mid := (r.End-o.Start)/2 + o.Start
			if mid < maxLongitude {
				maxLongitude = mid
			}
			right = true
		case r.End > o.End && r.Start < o.End:
			mid := (o.End-r.Start)/2 + r.Start
			if mid > minLongitude {
				minLongitude = mid
			}
			left = true
		}

		minLongitude -= offset
		maxLongitude -= offset
	}

	return ProjectionRange{
		Range:            geo.Range{Start: minLongitude, End: maxLongitude},
		OverlappingLeft:  left,
		OverlappingRight: right,
	}
}

func wraps(r geo.Range) bool {
	return r.End < r.Start
}
