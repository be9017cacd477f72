// Package render sequences loading, normalisation, reprojection, stitching
// and underlay compositing into complete images.
package render

import (
	"context"
	"errors"
	"image"
	"image/color"
	"log/slog"
	"math"

	"github.com/disintegration/imaging"
	"github.com/jonboulle/clockwork"

	"github.com/ironsheep/geostitch/internal/composite"
	"github.com/ironsheep/geostitch/internal/geo"
	"github.com/ironsheep/geostitch/internal/metrics"
	"github.com/ironsheep/geostitch/internal/projection"
	"github.com/ironsheep/geostitch/internal/raster"
	"github.com/ironsheep/geostitch/internal/registration"
	"github.com/ironsheep/geostitch/internal/reproject"
	"github.com/ironsheep/geostitch/internal/satellite"
	"github.com/ironsheep/geostitch/internal/stitch"
	"github.com/ironsheep/geostitch/internal/underlay"
)

// ErrNothingToRender is returned when a request has neither imagery nor an
// underlay.
var ErrNothingToRender = errors.New("nothing to render: no image and no underlay")

// Stage names reported to metrics and logs.
const (
	StageLoad      = "load"
	StageNormalise = "normalise"
	StageReproject = "reproject"
	StageStitch    = "stitch"
	StageCrop      = "crop"
	StageUnderlay  = "underlay"
	StageOffset    = "offset"
)

// Config holds the collaborators of a Renderer.
type Config struct {
	Registry *satellite.Registry
	Offset   projection.ImageOffset
	Loader   *raster.Loader

	// Underlays renders the background. Nil disables underlays.
	Underlays    *underlay.Service
	UnderlayPath string

	Reproject  reproject.Options
	Background color.NRGBA

	Clock   clockwork.Clock
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Renderer produces equirectangular mosaics and geostationary composites.
type Renderer struct {
	cfg Config
}

// New returns a Renderer, filling in a loader, clock and logger when unset.
func New(cfg Config) *Renderer {
	if cfg.Loader == nil {
		cfg.Loader = raster.NewLoader()
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Renderer{cfg: cfg}
}

// Registry returns the satellite definitions in use.
func (r *Renderer) Registry() *satellite.Registry {
	return r.cfg.Registry
}

// Offset returns the full-disc geometry in use.
func (r *Renderer) Offset() projection.ImageOffset {
	return r.cfg.Offset
}

// Input is one infrared image and the satellite that took it.
type Input struct {
	Path      string
	Satellite string
}

// stage runs fn, recording its duration. The context is checked first so a
// cancelled render stops between stages.
func (r *Renderer) stage(ctx context.Context, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := r.cfg.Clock.Now()
	err := fn()
	elapsed := r.cfg.Clock.Since(start)

	r.cfg.Metrics.ObserveStage(name, elapsed)
	r.cfg.Logger.Debug("render stage complete", "stage", name, "duration_ms", elapsed.Milliseconds())
	return err
}

// load decodes and registers every input.
func (r *Renderer) load(inputs []Input) ([]*registration.Registration, error) {
	regs := make([]*registration.Registration, 0, len(inputs))
	for _, in := range inputs {
		def, err := r.cfg.Registry.Locate(in.Satellite)
		if err != nil {
			return nil, err
		}
		reg, err := registration.Load(r.cfg.Loader, in.Path, def)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, nil
}

// release drops decoded inputs from the loader. Infrared frames are used
// once, unlike the underlay.
func (r *Renderer) release(inputs []Input) {
	for _, in := range inputs {
		r.cfg.Loader.Evict(in.Path)
	}
}

func (r *Renderer) normalise(regs []*registration.Registration, applyBrightness bool) error {
	for _, reg := range regs {
		err := reg.Normalise(registration.NormaliseOptions{
			ImageSize:       r.cfg.Offset.ImageSize,
			ApplyBrightness: applyBrightness,
			Workers:         r.cfg.Reproject.Workers,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) underlaysEnabled(disabled bool) bool {
	return !disabled && r.cfg.Underlays != nil && r.cfg.UnderlayPath != ""
}

// EquirectangularRequest describes a stitched equirectangular render.
type EquirectangularRequest struct {
	Images []Input

	// NoTrim keeps each satellite's full visible range instead of trimming
	// overlaps to their midpoints.
	NoTrim bool

	// NoCrop keeps the full canvas instead of cropping to the covered area.
	NoCrop bool

	NoUnderlay bool

	// StartLongitude, in degrees, places this longitude at the left edge of a
	// full-coverage mosaic.
	StartLongitude *float64

	// KeepTransparency leaves uncovered pixels transparent when no underlay is
	// drawn.
	KeepTransparency bool
}

// Result is a rendered image and a summary of how it was made.
type Result struct {
	Image      *image.NRGBA
	Satellites []string

	// LatitudeRange and LongitudeRange are the angles covered by Image.
	LatitudeRange  geo.Range
	LongitudeRange geo.Range

	FullEarthCoverage bool
	Underlay          bool
}

// Equirectangular reprojects each input onto a shared canvas twice as wide
// as the full-disc frame, stitches them and composites the underlay.
func (r *Renderer) Equirectangular(ctx context.Context, req EquirectangularRequest) (*Result, error) {
	if len(req.Images) == 0 {
		return nil, registration.ErrNoRegistrations
	}

	defer r.release(req.Images)

	var regs []*registration.Registration
	err := r.stage(ctx, StageLoad, func() (err error) {
		regs, err = r.load(req.Images)
		return err
	})
	if err != nil {
		return nil, err
	}

	activity := registration.NewActivity(regs...)
	defer activity.Close()

	if err := r.stage(ctx, StageNormalise, func() error {
		return r.normalise(regs, len(regs) > 1)
	}); err != nil {
		return nil, err
	}

	activity.CalculateOverlaps(!req.NoTrim)

	width, height := r.cfg.Offset.ImageSize*2, r.cfg.Offset.ImageSize
	if err := r.stage(ctx, StageReproject, func() error {
		return r.reprojectAll(ctx, activity, width, height)
	}); err != nil {
		return nil, err
	}

	var target *image.NRGBA
	if err := r.stage(ctx, StageStitch, func() (err error) {
		layers := make([]stitch.Layer, 0, len(regs))
		for _, reg := range regs {
			layers = append(layers, stitch.Layer{Image: reg.Image, OffsetX: reg.OffsetX})
		}
		r.cfg.Metrics.ObserveLayers(len(layers))
		target, err = stitch.Stitch(layers, stitch.Options{CanvasWidth: width})
		return err
	}); err != nil {
		return nil, err
	}

	latitude, longitude, err := activity.CropRange()
	if err != nil {
		return nil, err
	}
	if req.NoCrop {
		latitude = geo.NewRangeDegrees(90, -90)
	}

	if err := r.stage(ctx, StageCrop, func() error {
		rows := geo.PixelRangeY(latitude, height)
		target = imaging.Crop(target, image.Rect(0, rows.Start, width, rows.End))
		return nil
	}); err != nil {
		return nil, err
	}

	result := &Result{
		Satellites:        names(regs),
		LatitudeRange:     latitude,
		FullEarthCoverage: activity.IsFullEarthCoverage(),
	}

	if r.underlaysEnabled(req.NoUnderlay) {
		if err := r.stage(ctx, StageUnderlay, func() error {
			data := underlay.ProjectionData{
				Projection:    underlay.Equirectangular,
				Interpolation: r.cfg.Reproject.Interpolation,
				UnderlayPath:  r.cfg.UnderlayPath,
				ImageSize:     r.cfg.Offset.ImageSize,
				TargetWidth:   target.Bounds().Dx(),
				TargetHeight:  target.Bounds().Dy(),
				LatitudeCrop:  &latitude,
				NoCrop:        req.NoCrop,
			}
			background, err := r.cfg.Underlays.Underlay(ctx, data, nil)
			if err != nil {
				return err
			}
			target = composite.Screen(background, target)
			return nil
		}); err != nil {
			return nil, err
		}
		result.Underlay = true
	}

	if err := r.stage(ctx, StageOffset, func() error {
		target, longitude = r.offsetAndCrop(target, activity, req)
		return nil
	}); err != nil {
		return nil, err
	}

	if !result.Underlay && !req.KeepTransparency {
		target = composite.OverBackground(target, r.cfg.Background)
	}

	result.Image = target
	result.LongitudeRange = longitude
	return result, nil
}

// reprojectAll replaces each registration's image with its equirectangular
// projection and positions it on the canvas.
func (r *Renderer) reprojectAll(ctx context.Context, activity *registration.Activity, width, height int) error {
	e := reproject.NewEquirectangular(width, height)

	for _, reg := range activity.Registrations {
		if err := ctx.Err(); err != nil {
			return err
		}

		def := reg.Definition
		columns := geo.PixelRangeX(def.LongitudeRange.UnwrapLongitude(), width)
		region := image.Rect(columns.Start, 0, columns.End, height)

		r.cfg.Logger.Info("reprojecting",
			"satellite", def.DisplayName,
			"longitude_range", reg.LongitudeRange.Range.String(),
			"width", region.Dx())

		start := r.cfg.Clock.Now()
		reg.Image = e.Reproject(reproject.Source{
			Pixels:         raster.NewPixelBuffer(reg.Image),
			Orbit:          def.Orbit(),
			Offset:         r.cfg.Offset,
			LatitudeRange:  reg.LatitudeRange,
			LongitudeRange: reg.LongitudeRange.Range,
		}, region, r.cfg.Reproject)
		r.cfg.Metrics.ObserveReprojection(metrics.DirectionEquirectangular, r.cfg.Clock.Since(start))

		reg.UpdateOffset(width)
	}
	return nil
}

// offsetAndCrop rotates the mosaic so its western edge is at column 0 and,
// for partial coverage, trims the uncovered columns. It returns the image and
// the longitude range it spans.
func (r *Renderer) offsetAndCrop(img *image.NRGBA, activity *registration.Activity, req EquirectangularRequest) (*image.NRGBA, geo.Range) {
	width := img.Bounds().Dx()
	full := geo.NewRangeDegrees(-180, 180)

	if activity.IsFullEarthCoverage() || req.NoCrop {
		if req.StartLongitude == nil {
			return img, full
		}
		start := geo.NormaliseLongitude(geo.Radians(*req.StartLongitude))
		return stitch.Shift(img, -geo.ToX(start, width)), geo.Range{Start: start, End: start + geo.Pi2}
	}

	west, east := coverage(activity)
	minX, maxX := geo.ToX(west, width), geo.ToX(east, width)
	covered := maxX - minX
	if covered <= 0 {
		covered += width
	}

	shifted := stitch.Shift(img, -minX)
	return imaging.Crop(shifted, image.Rect(0, 0, covered, img.Bounds().Dy())), geo.Range{Start: west, End: east}
}

// coverage returns the western and eastern limits of a partial mosaic: the
// edges of the registrations without a neighbour on that side.
func coverage(activity *registration.Activity) (west, east float64) {
	west, east = math.Inf(1), math.Inf(-1)
	for _, reg := range activity.Registrations {
		pr := reg.LongitudeRange
		if !pr.OverlappingLeft {
			west = math.Min(west, geo.NormaliseLongitude(pr.Range.Start))
		}
		if !pr.OverlappingRight {
			east = math.Max(east, geo.NormaliseLongitude(pr.Range.End))
		}
	}
	if math.IsInf(west, 0) || math.IsInf(east, 0) {
		return -math.Pi, math.Pi
	}
	return west, east
}

func names(regs []*registration.Registration) []string {
	out := make([]string, 0, len(regs))
	for _, reg := range regs {
		out = append(out, reg.Definition.DisplayName)
	}
	return out
}

// GeostationaryRequest describes a render in a satellite's own frame.
type GeostationaryRequest struct {
	Satellite string

	// ImagePath is an optional infrared image taken by Satellite. Without
	// it only the projected underlay is rendered.
	ImagePath string

	NoUnderlay       bool
	KeepTransparency bool
}

// Geostationary projects the underlay into the satellite's full-disc frame
// and screen-blends the infrared image over it.
func (r *Renderer) Geostationary(ctx context.Context, req GeostationaryRequest) (*Result, error) {
	def, err := r.cfg.Registry.Locate(req.Satellite)
	if err != nil {
		return nil, err
	}

	useUnderlay := r.underlaysEnabled(req.NoUnderlay)
	if req.ImagePath == "" && !useUnderlay {
		return nil, ErrNothingToRender
	}

	result := &Result{
		Satellites:     []string{def.DisplayName},
		LatitudeRange:  def.LatitudeRange,
		LongitudeRange: def.LongitudeRange,
		Underlay:       useUnderlay,
	}

	var reg *registration.Registration
	if req.ImagePath != "" {
		if err := r.stage(ctx, StageLoad, func() (err error) {
			reg, err = registration.Load(r.cfg.Loader, req.ImagePath, def)
			return err
		}); err != nil {
			return nil, err
		}
		defer reg.Close()
		defer r.cfg.Loader.Evict(req.ImagePath)

		if err := r.stage(ctx, StageNormalise, func() error {
			return r.normalise([]*registration.Registration{reg}, false)
		}); err != nil {
			return nil, err
		}
	}

	if !useUnderlay {
		result.Image = reg.Image
		if !req.KeepTransparency {
			result.Image = composite.OverBackground(reg.Image, r.cfg.Background)
		}
		return result, nil
	}

	var background *image.NRGBA
	if err := r.stage(ctx, StageUnderlay, func() (err error) {
		background, err = r.cfg.Underlays.Underlay(ctx, underlay.ProjectionData{
			Projection:    underlay.Geostationary,
			Interpolation: r.cfg.Reproject.Interpolation,
			UnderlayPath:  r.cfg.UnderlayPath,
			ImageSize:     r.cfg.Offset.ImageSize,
		}, def)
		return err
	}); err != nil {
		return nil, err
	}

	if reg == nil {
		result.Image = background
		return result, nil
	}

	result.Image = composite.Screen(background, reg.Image)
	return result, nil
}
