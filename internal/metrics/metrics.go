// Package metrics holds the Prometheus collectors for rendering and the
// underlay cache.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "geostitch"

// Cache lookup results.
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultStale = "stale"
	ResultError = "error"
)

// Reprojection directions.
const (
	DirectionEquirectangular = "equirectangular"
	DirectionGeostationary   = "geostationary"
)

// Metrics holds the counters and histograms exported by the server.
type Metrics struct {
	// UnderlayCache counts cache lookups. labels: result={hit,miss,stale,error}
	UnderlayCache *prometheus.CounterVec

	// UnderlayStores counts underlays written to the cache.
	UnderlayStores prometheus.Counter

	// Reprojection duration. labels: direction={equirectangular,geostationary}
	Reprojection *prometheus.HistogramVec

	// StitchedLayers is the number of layers per stitched canvas.
	StitchedLayers prometheus.Histogram

	// Stage duration of the render pipeline. labels: stage
	Stage *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg. A nil registerer
// leaves them unregistered, which is what tests want.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		UnderlayCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "underlay_cache_lookups_total",
			Help:      "Underlay cache lookups by result.",
		}, []string{"result"}),
		UnderlayStores: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "underlay_cache_stores_total",
			Help:      "Underlays rendered and written to the cache.",
		}),
		Reprojection: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reprojection_duration_seconds",
			Help:      "Duration of a single image reprojection.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"direction"}),
		StitchedLayers: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stitched_layers",
			Help:      "Number of satellite layers per stitched image.",
			Buckets:   []float64{1, 2, 3, 4, 5, 6, 8},
		}),
		Stage: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_stage_duration_seconds",
			Help:      "Duration of each render pipeline stage.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.UnderlayCache,
			m.UnderlayStores,
			m.Reprojection,
			m.StitchedLayers,
			m.Stage,
		)
	}

	return m
}

// CacheLookup records the result of an underlay cache lookup.
func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.UnderlayCache.WithLabelValues(result).Inc()
}

// CacheStore records an underlay written to the cache.
func (m *Metrics) CacheStore() {
	if m == nil {
		return
	}
	m.UnderlayStores.Inc()
}

// ObserveReprojection records how long one reprojection took.
func (m *Metrics) ObserveReprojection(direction string, d time.Duration) {
	if m == nil {
		return
	}
	m.Reprojection.WithLabelValues(direction).Observe(d.Seconds())
}

// ObserveLayers records the number of layers stitched into one canvas.
func (m *Metrics) ObserveLayers(n int) {
	if m == nil {
		return
	}
	m.StitchedLayers.Observe(float64(n))
}

// ObserveStage records the duration of a render stage.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.Stage.WithLabelValues(stage).Observe(d.Seconds())
}
