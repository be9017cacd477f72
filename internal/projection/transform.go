package projection

import (
	"math"

	"github.com/ironsheep/geostitch/internal/geo"
)

// DefaultHeight is the nominal height of a geostationary satellite above the
// equator, in metres.
const DefaultHeight = 35786023.0

var (
	// polarRatio is Rp²/Re², used to convert geodetic to geocentric latitude.
	polarRatio = (geo.RadiusPolar * geo.RadiusPolar) / (geo.RadiusEquator * geo.RadiusEquator)

	// equatorRatio is Re²/Rp².
	equatorRatio = (geo.RadiusEquator * geo.RadiusEquator) / (geo.RadiusPolar * geo.RadiusPolar)

	eccentricity2 = geo.Eccentricity * geo.Eccentricity
)

// Orbit is the position of a geostationary satellite.
type Orbit struct {
	// Longitude of the sub-satellite point in radians.
	Longitude float64

	// Height above the ellipsoid in metres.
	Height float64
}

// NewOrbit returns an Orbit at the given longitude in radians. A zero height
// selects DefaultHeight.
func NewOrbit(longitude, height float64) Orbit {
	if height == 0 {
		height = DefaultHeight
	}
	return Orbit{Longitude: geo.NormaliseLongitude(longitude), Height: height}
}

// distance from the centre of the Earth to the satellite.
func (o Orbit) distance() float64 {
	return o.Height + geo.RadiusEquator
}

// ScanningAngle is the result of a forward transform. The zero value is not
// visible.
type ScanningAngle struct {
	X  float64
	Y  float64
	ok bool
}

// Visible reports whether the point can be seen by the satellite.
func (s ScanningAngle) Visible() bool {
	return s.ok
}

// Geodetic is the result of a reverse transform. The zero value is not
// visible.
type Geodetic struct {
	Latitude  float64
	Longitude float64
	ok        bool
}

// Visible reports whether the scanning ray intersects the Earth.
func (g Geodetic) Visible() bool {
	return g.ok
}

// LatitudeTerms holds the parts of the forward transform that depend only on
// geodetic latitude.
type LatitudeTerms struct {
	rcCosLatitude float64
	sz            float64
	szRatio       float64
}

// NewLatitudeTerms computes the forward transform terms for a geodetic
// latitude in radians.
func NewLatitudeTerms(latitude float64) LatitudeTerms {
	geocentric := math.Atan(polarRatio * math.Tan(latitude))
	cosLatitude := math.Cos(geocentric)

	rc := geo.RadiusPolar / math.Sqrt(1-eccentricity2*cosLatitude*cosLatitude)
	sz := rc * math.Sin(geocentric)

	return LatitudeTerms{
		rcCosLatitude: rc * cosLatitude,
		sz:            sz,
		szRatio:       equatorRatio * sz * sz,
	}
}

// Forward converts a geodetic latitude and longitude in radians to scanning
// angles.
func (o Orbit) Forward(latitude, longitude float64) ScanningAngle {
	return o.ForwardTerms(NewLatitudeTerms(latitude), longitude)
}

// ForwardTerms is Forward with the latitude terms already computed.
func (o Orbit) ForwardTerms(t LatitudeTerms, longitude float64) ScanningAngle {
	h := o.distance()
	delta := longitude - o.Longitude

	sx := h - t.rcCosLatitude*math.Cos(delta)
	sy := -t.rcCosLatitude * math.Sin(delta)

	if h*(h-sx) < sy*sy+t.szRatio {
		return ScanningAngle{}
	}

	return ScanningAngle{
		X:  math.Asin(-sy / math.Sqrt(sx*sx+sy*sy+t.sz*t.sz)),
		Y:  math.Atan(t.sz / sx),
		ok: true,
	}
}

// VerticalScanTerms holds the parts of the reverse transform that depend only
// on the vertical scanning angle.
type VerticalScanTerms struct {
	cosY float64
	sinY float64
	h    float64
	c    float64
	t    float64
}

// NewVerticalScanTerms computes the reverse transform terms for a vertical
// scanning angle in radians.
func (o Orbit) NewVerticalScanTerms(y float64) VerticalScanTerms {
	h := o.distance()
	cosY, sinY := math.Cos(y), math.Sin(y)

	return VerticalScanTerms{
		cosY: cosY,
		sinY: sinY,
		h:    h,
		c:    h*h - geo.RadiusEquator*geo.RadiusEquator,
		t:    cosY*cosY + equatorRatio*sinY*sinY,
	}
}

// Reverse converts scanning angles in radians to geodetic coordinates.
func (o Orbit) Reverse(x, y float64) Geodetic {
	return o.ReverseTerms(o.NewVerticalScanTerms(y), x)
}

// ReverseTerms is Reverse with the vertical scan terms already computed.
func (o Orbit) ReverseTerms(v VerticalScanTerms, x float64) Geodetic {
	cosX, sinX := math.Cos(x), math.Sin(x)

	a := sinX*sinX + cosX*cosX*v.t
	b := -2 * v.h * cosX * v.cosY

	discriminant := b*b - 4*a*v.c
	if discriminant < 0 {
		return Geodetic{}
	}

	rs := (-b - math.Sqrt(discriminant)) / (2 * a)
	sx := rs * cosX * v.cosY
	sy := -rs * sinX
	sz := rs * cosX * v.sinY

	dx := v.h - sx
	return Geodetic{
		Latitude:  math.Atan(equatorRatio * sz / math.Sqrt(dx*dx+sy*sy)),
		Longitude: geo.NormaliseLongitude(o.Longitude - math.Atan(sy/dx)),
		ok:        true,
	}
}
