// Package config loads server settings from an optional YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/geostitch/internal/composite"
	"github.com/ironsheep/geostitch/internal/projection"
	"github.com/ironsheep/geostitch/internal/raster"
	"github.com/ironsheep/geostitch/internal/reproject"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "GEOSTITCH_"

// Config holds all server settings.
type Config struct {
	// Resolution of full-disc imagery in kilometres: 1, 2 or 4.
	Resolution string `yaml:"resolution"`

	Interpolation string `yaml:"interpolation"`

	// DefinitionsPath overrides the embedded satellite definitions.
	DefinitionsPath string `yaml:"definitions_path"`

	// UnderlayPath is the full-colour equirectangular world image. Renders
	// skip the underlay when empty.
	UnderlayPath string `yaml:"underlay_path"`

	CacheDir string `yaml:"cache_dir"`

	// BlendRatio is the feather margin as a fraction of each satellite's
	// longitude range.
	BlendRatio float64 `yaml:"blend_ratio"`

	// Workers for row-parallel stages; zero uses GOMAXPROCS.
	Workers int `yaml:"workers"`

	// Background is a hex colour used behind transparent output.
	Background string `yaml:"background"`

	// MetricsAddr enables a Prometheus endpoint when set, e.g. ":9090".
	MetricsAddr string `yaml:"metrics_addr"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Resolution:    "2",
		Interpolation: raster.Bilinear.String(),
		CacheDir:      defaultCacheDir(),
		BlendRatio:    reproject.DefaultBlendRatio,
		Background:    "#000000",
		LogLevel:      "info",
	}
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "geostitch")
	}
	return filepath.Join(os.TempDir(), "geostitch")
}

// Load applies, in order, the defaults, the YAML file named by
// GEOSTITCH_CONFIG and the individual GEOSTITCH_* variables, then validates
// the result.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv(EnvPrefix + "CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	setString(&c.Resolution, "RESOLUTION")
	setString(&c.Interpolation, "INTERPOLATION")
	setString(&c.DefinitionsPath, "DEFINITIONS")
	setString(&c.UnderlayPath, "UNDERLAY")
	setString(&c.CacheDir, "CACHE_DIR")
	setString(&c.Background, "BACKGROUND")
	setString(&c.MetricsAddr, "METRICS_ADDR")
	setString(&c.LogLevel, "LOG_LEVEL")

	if v := os.Getenv(EnvPrefix + "BLEND_RATIO"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %sBLEND_RATIO: %w", EnvPrefix, err)
		}
		c.BlendRatio = f
	}
	if v := os.Getenv(EnvPrefix + "WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sWORKERS: %w", EnvPrefix, err)
		}
		c.Workers = n
	}
	return nil
}

func setString(dst *string, name string) {
	if v, ok := os.LookupEnv(EnvPrefix + name); ok {
		*dst = v
	}
}

// Validate checks every field that can be checked without touching disk.
func (c *Config) Validate() error {
	if _, err := c.Offset(); err != nil {
		return fmt.Errorf("invalid %sRESOLUTION: %w", EnvPrefix, err)
	}
	if _, err := c.InterpolationKind(); err != nil {
		return fmt.Errorf("invalid %sINTERPOLATION: %w", EnvPrefix, err)
	}
	if _, err := c.BackgroundColor(); err != nil {
		return fmt.Errorf("invalid %sBACKGROUND: %w", EnvPrefix, err)
	}
	if c.BlendRatio < 0 || c.BlendRatio >= 1 {
		return fmt.Errorf("invalid %sBLEND_RATIO: %v is outside [0, 1)", EnvPrefix, c.BlendRatio)
	}
	if c.Workers < 0 {
		return fmt.Errorf("invalid %sWORKERS: %d is negative", EnvPrefix, c.Workers)
	}
	if c.CacheDir == "" {
		return errors.New(EnvPrefix + "CACHE_DIR is required")
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid %sLOG_LEVEL: %w", EnvPrefix, err)
	}
	return nil
}

// Offset is the full-disc geometry for the configured resolution.
func (c *Config) Offset() (projection.ImageOffset, error) {
	return projection.ParseResolution(c.Resolution)
}

// InterpolationKind parses the configured interpolation.
func (c *Config) InterpolationKind() (raster.Interpolation, error) {
	return raster.ParseInterpolation(c.Interpolation)
}

// BackgroundColor parses the configured background.
func (c *Config) BackgroundColor() (color.NRGBA, error) {
	return composite.ParseColor(c.Background)
}

// ReprojectOptions combines the interpolation, blend ratio and worker count.
// It assumes the config has been validated.
func (c *Config) ReprojectOptions() reproject.Options {
	kind, _ := c.InterpolationKind()
	return reproject.Options{
		Interpolation: kind,
		BlendRatio:    c.BlendRatio,
		Workers:       c.Workers,
	}
}

// ParseLogLevel accepts debug, info, warn and error.
func ParseLogLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", value)
}
