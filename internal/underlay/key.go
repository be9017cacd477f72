package underlay

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ironsheep/geostitch/internal/geo"
	"github.com/ironsheep/geostitch/internal/raster"
)

// ErrUnsupportedProjection is returned for unknown projection names.
var ErrUnsupportedProjection = errors.New("unsupported projection")

// Projection is the target projection of an underlay.
type Projection string

const (
	Equirectangular Projection = "equirectangular"
	Geostationary   Projection = "geostationary"
)

// ParseProjection accepts the full names or their first letter.
func ParseProjection(value string) (Projection, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "e", "equirectangular":
		return Equirectangular, nil
	case "g", "geostationary":
		return Geostationary, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedProjection, value)
}

// ProjectionData describes how an underlay was rendered. Two values that
// would render the same image produce the same Key.
type ProjectionData struct {
	Projection    Projection
	Interpolation raster.Interpolation
	UnderlayPath  string

	// ImageSize is the full-disc frame size the underlay was rendered for.
	ImageSize int

	// TargetWidth and TargetHeight resize the result when both are positive.
	TargetWidth  int
	TargetHeight int

	// LatitudeCrop limits an equirectangular underlay to a latitude band.
	LatitudeCrop *geo.Range

	// MinLongitude is the left edge of an equirectangular render.
	MinLongitude *float64

	NoCrop bool
}

// HasTargetSize reports whether the underlay is resized after projection.
func (d ProjectionData) HasTargetSize() bool {
	return d.TargetWidth > 0 && d.TargetHeight > 0
}

// canonicalData fixes the field order and spelling of the serialised key.
type canonicalData struct {
	Projection    Projection `json:"projection"`
	Interpolation string     `json:"interpolation"`
	UnderlayPath  string     `json:"underlay_path"`
	ImageSize     int        `json:"image_size"`
	TargetWidth   int        `json:"target_width"`
	TargetHeight  int        `json:"target_height"`
	LatitudeCrop  *geo.Range `json:"latitude_crop"`
	MinLongitude  *float64   `json:"min_longitude"`
	NoCrop        bool       `json:"no_crop"`
}

// Key returns the canonical JSON used as the cache configuration column.
func (d ProjectionData) Key() (string, error) {
	c := canonicalData{
		Projection:    d.Projection,
		Interpolation: d.Interpolation.String(),
		UnderlayPath:  cleanPath(d.UnderlayPath),
		ImageSize:     d.ImageSize,
		NoCrop:        d.NoCrop,
	}
	if d.HasTargetSize() {
		c.TargetWidth = d.TargetWidth
		c.TargetHeight = d.TargetHeight
	}
	if d.LatitudeCrop != nil {
		// North first, whichever order the caller used.
		c.LatitudeCrop = &geo.Range{
			Start: positiveZero(d.LatitudeCrop.Max()),
			End:   positiveZero(d.LatitudeCrop.Min()),
		}
	}
	if d.MinLongitude != nil {
		lon := positiveZero(geo.NormaliseLongitude(*d.MinLongitude))
		c.MinLongitude = &lon
	}

	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to serialise projection data: %w", err)
	}
	return string(b), nil
}

func cleanPath(path string) string {
	if path == "" {
		return ""
	}
	return filepath.ToSlash(filepath.Clean(path))
}

func positiveZero(v float64) float64 {
	if v == 0 {
		return 0
	}
	return v
}
