package satellite

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/geostitch/internal/geo"
	"github.com/ironsheep/geostitch/internal/projection"
)

//go:embed satellites.yaml
var defaultDefinitions []byte

// ErrUnknownSatellite is returned by Locate when no definition matches.
var ErrUnknownSatellite = errors.New("unknown satellite")

// entry is one satellite in a definitions file.
type entry struct {
	DisplayName         string    `yaml:"display_name"`
	Longitude           *float64  `yaml:"longitude"`
	LongitudeAdjustment float64   `yaml:"longitude_adjustment"`
	Height              float64   `yaml:"height"`
	Crop                []float64 `yaml:"crop"`
	Brightness          *float64  `yaml:"brightness"`
	Invert              bool      `yaml:"invert"`
}

// Registry holds the known satellite definitions in file order.
type Registry struct {
	definitions []*Definition
}

// Default returns the registry built from the embedded definitions.
func Default(offset projection.ImageOffset) (*Registry, error) {
	return Parse(defaultDefinitions, offset)
}

// LoadFile reads a YAML definitions file. An empty path selects the embedded
// definitions.
func LoadFile(path string, offset projection.ImageOffset) (*Registry, error) {
	if path == "" {
		return Default(offset)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open satellite definitions: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read satellite definitions: %w", err)
	}
	return Parse(data, offset)
}

// Parse builds a registry from YAML. The offset determines the frame used to
// compute each satellite's visible longitude range.
func Parse(data []byte, offset projection.ImageOffset) (*Registry, error) {
	var entries []entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse satellite definitions: %w", err)
	}

	r := &Registry{}
	seen := make(map[string]bool)

	for i, e := range entries {
		if e.DisplayName == "" {
			return nil, fmt.Errorf("satellite definition %d: display_name is required", i)
		}
		if e.Longitude == nil {
			return nil, fmt.Errorf("satellite definition %q: longitude is required", e.DisplayName)
		}
		key := strings.ToLower(e.DisplayName)
		if seen[key] {
			return nil, fmt.Errorf("satellite definition %q: duplicate display_name", e.DisplayName)
		}
		seen[key] = true

		if e.Crop != nil && len(e.Crop) != 4 {
			return nil, fmt.Errorf("satellite definition %q: crop must have four values, got %d", e.DisplayName, len(e.Crop))
		}

		brightness := 1.0
		if e.Brightness != nil {
			brightness = *e.Brightness
		}
		height := e.Height
		if height == 0 {
			height = projection.DefaultHeight
		}

		r.definitions = append(r.definitions, &Definition{
			DisplayName:    e.DisplayName,
			Longitude:      geo.NormaliseLongitude(geo.Radians(*e.Longitude + e.LongitudeAdjustment)),
			Height:         height,
			LatitudeRange:  geo.NewRangeDegrees(MaxLatitude, MinLatitude),
			LongitudeRange: VisibleRange(geo.Radians(*e.Longitude), offset),
			Crop:           e.Crop,
			Brightness:     brightness,
			Invert:         e.Invert,
		})
	}

	return r, nil
}

// Locate finds a definition by display name, ignoring case.
func (r *Registry) Locate(name string) (*Definition, error) {
	for _, d := range r.definitions {
		if strings.EqualFold(d.DisplayName, name) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSatellite, name)
}

// All returns the definitions in file order.
func (r *Registry) All() []*Definition {
	out := make([]*Definition, len(r.definitions))
	copy(out, r.definitions)
	return out
}

// Names returns the sorted display names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.definitions))
	for _, d := range r.definitions {
		names = append(names, d.DisplayName)
	}
	sort.Strings(names)
	return names
}
