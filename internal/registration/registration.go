package registration

import (
	"fmt"
	"image"
	"time"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/geostitch/internal/geo"
	"github.com/ironsheep/geostitch/internal/satellite"
)

// ProjectionRange is a registration's longitude range after overlap trimming.
type ProjectionRange struct {
	Range geo.Range

	// OverlappingLeft is set when a neighbour covers the western edge.
	OverlappingLeft bool

	// OverlappingRight is set when a neighbour covers the eastern edge.
	OverlappingRight bool
}

// Registration is one satellite image and its render metadata.
type Registration struct {
	Path       string
	Definition *satellite.Definition
	Timestamp  *time.Time

	// Image is the decoded image, replaced in place by normalisation and
	// reprojection.
	Image *image.NRGBA

	// OffsetX is the horizontal position of the reprojected image on the
	// equirectangular canvas.
	OffsetX int

	// LongitudeRange is set by the Activity overlap pass. Before that it is
	// the definition's visible range.
	LongitudeRange ProjectionRange

	// LatitudeRange is the usable latitude band, north first.
	LatitudeRange geo.Range
}

// New returns a registration for an already-decoded image.
func New(path string, definition *satellite.Definition, img image.Image) *Registration {
	return &Registration{
		Path:           path,
		Definition:     definition,
		Image:          imaging.Clone(img),
		LongitudeRange: ProjectionRange{Range: definition.LongitudeRange},
		LatitudeRange:  definition.LatitudeRange,
	}
}

// ImageLoader decodes images by path.
type ImageLoader interface {
	Load(path string) (image.Image, error)
}

// Load decodes path with loader and returns a new registration.
func Load(loader ImageLoader, path string, definition *satellite.Definition) (*Registration, error) {
	img, err := loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s image: %w", definition.DisplayName, err)
	}
	return New(path, definition, img), nil
}

// Width of the current image.
func (r *Registration) Width() int {
	return r.Image.Bounds().Dx()
}

// Height of the current image.
func (r *Registration) Height() int {
	return r.Image.Bounds().Dy()
}

// UpdateOffset positions the registration on an equirectangular canvas of
// the given width, using the western edge of its visible range.
func (r *Registration) UpdateOffset(canvasWidth int) {
	start := geo.NormaliseLongitude(r.Definition.LongitudeRange.Start)
	r.OffsetX = geo.ToX(start, canvasWidth)
}

// Close releases the image.
func (r *Registration) Close() {
	r.Image = nil
}
