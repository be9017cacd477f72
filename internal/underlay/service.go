package underlay

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/disintegration/imaging"
	"github.com/jonboulle/clockwork"

	"github.com/ironsheep/geostitch/internal/composite"
	"github.com/ironsheep/geostitch/internal/geo"
	"github.com/ironsheep/geostitch/internal/metrics"
	"github.com/ironsheep/geostitch/internal/projection"
	"github.com/ironsheep/geostitch/internal/raster"
	"github.com/ironsheep/geostitch/internal/reproject"
	"github.com/ironsheep/geostitch/internal/satellite"
)

// ErrDefinitionRequired is returned when a geostationary underlay is
// requested without a satellite.
var ErrDefinitionRequired = errors.New("satellite definition required for geostationary underlay")

// ServiceConfig holds the collaborators of a Service.
type ServiceConfig struct {
	Cache  *Cache
	Loader *raster.Loader

	// Offset is the full-disc geometry used for geostationary underlays.
	Offset projection.ImageOffset

	// Reproject controls interpolation and parallelism.
	Reproject reproject.Options

	// Background fills pixels outside the Earth in geostationary underlays.
	Background color.NRGBA

	Clock   clockwork.Clock
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Service renders underlays in the projection of the imagery they sit
// beneath, going through the cache first.
type Service struct {
	cfg ServiceConfig
}

// NewService returns a Service. A nil Loader gets a fresh one.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Loader == nil {
		cfg.Loader = raster.NewLoader()
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Service{cfg: cfg}
}

// Underlay returns the underlay described by data. def is required for
// geostationary projections and ignored otherwise.
func (s *Service) Underlay(ctx context.Context, data ProjectionData, def *satellite.Definition) (*image.NRGBA, error) {
	if data.Projection == Geostationary && def == nil {
		return nil, ErrDefinitionRequired
	}
	if data.Projection == Equirectangular {
		def = nil
	}

	if s.cfg.Cache != nil {
		if img, ok := s.cfg.Cache.Get(ctx, data, def); ok {
			return img, nil
		}
	}

	source, err := s.cfg.Loader.Load(data.UnderlayPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load underlay: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	target, err := s.project(source, data, def)
	if err != nil {
		return nil, err
	}

	if data.HasTargetSize() {
		target = imaging.Resize(target, data.TargetWidth, data.TargetHeight, imaging.Lanczos)
	}

	if s.cfg.Cache != nil {
		if err := s.cfg.Cache.Put(ctx, target, data, def); err != nil {
			// The render can continue without the cache.
			s.cfg.Logger.Warn("failed to cache underlay", "error", err)
		}
	}
	return target, nil
}

func (s *Service) project(source image.Image, data ProjectionData, def *satellite.Definition) (*image.NRGBA, error) {
	switch data.Projection {
	case Geostationary:
		s.cfg.Logger.Info("rendering geostationary underlay", "satellite", def.DisplayName)

		start := s.cfg.Clock.Now()
		projected := reproject.ToGeostationary(raster.NewPixelBuffer(source), def.Orbit(), s.offsetFor(data), s.cfg.Reproject)
		s.cfg.Metrics.ObserveReprojection(metrics.DirectionGeostationary, s.cfg.Clock.Since(start))

		return composite.OverBackground(projected, s.cfg.Background), nil

	case Equirectangular:
		img := imaging.Clone(source)
		if data.LatitudeCrop == nil || data.NoCrop {
			return img, nil
		}

		rows := geo.PixelRangeY(*data.LatitudeCrop, img.Bounds().Dy())
		s.cfg.Logger.Info("cropping underlay", "min_y", rows.Start, "max_y", rows.End)
		return imaging.Crop(img, image.Rect(0, rows.Start, img.Bounds().Dx(), rows.End)), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedProjection, data.Projection)
}

// offsetFor returns the configured offset, or the standard offset whose frame
// matches the requested image size.
func (s *Service) offsetFor(data ProjectionData) projection.ImageOffset {
	if data.ImageSize == 0 || data.ImageSize == s.cfg.Offset.ImageSize {
		return s.cfg.Offset
	}
	for _, o := range []projection.ImageOffset{projection.OneKm, projection.TwoKm, projection.FourKm} {
		if o.ImageSize == data.ImageSize {
			return o
		}
	}
	return s.cfg.Offset
}
