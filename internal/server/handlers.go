package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/ironsheep/geostitch/internal/geo"
	"github.com/ironsheep/geostitch/internal/raster"
	"github.com/ironsheep/geostitch/internal/render"
	"github.com/ironsheep/geostitch/internal/satellite"
)

var (
	errOutputRequired = errors.New("output path is required")
	errLatitudeRange  = errors.New("latitude must be between -90 and 90 degrees")
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "satellite_list", "render_equirectangular").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		err = s.wrapUnknownSatellite(err)
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Satellite geometry
	case "satellite_list":
		return s.handleSatelliteList()
	case "satellite_pixel_to_geo":
		return s.handlePixelToGeo(args)
	case "satellite_geo_to_pixel":
		return s.handleGeoToPixel(args)

	// Rendering
	case "render_equirectangular":
		return s.handleRenderEquirectangular(ctx, args)
	case "render_geostationary":
		return s.handleRenderGeostationary(ctx, args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	resp := &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
		},
	}
	if data != "" {
		resp.Error.Data = data
	}
	return resp
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs decodes tool arguments, treating missing arguments as an
// empty object.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	return json.Unmarshal(args, v)
}

// degreeRange is a geo.Range reported in degrees.
type degreeRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func toDegrees(r geo.Range) degreeRange {
	return degreeRange{Start: round(geo.Degrees(r.Start)), End: round(geo.Degrees(r.End))}
}

// round trims reported angles and pixels to six decimal places.
func round(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// === Satellite Geometry Handlers ===

type satelliteInfo struct {
	Name           string      `json:"name"`
	Longitude      float64     `json:"longitude"`
	Height         float64     `json:"height"`
	LongitudeRange degreeRange `json:"longitude_range"`
	LatitudeRange  degreeRange `json:"latitude_range"`
	Brightness     float64     `json:"brightness"`
	Invert         bool        `json:"invert,omitempty"`
}

type satelliteListResult struct {
	ImageSize  int             `json:"image_size"`
	Satellites []satelliteInfo `json:"satellites"`
}

func (s *Server) handleSatelliteList() (interface{}, error) {
	defs := s.renderer.Registry().All()
	result := satelliteListResult{
		ImageSize:  s.renderer.Offset().ImageSize,
		Satellites: make([]satelliteInfo, 0, len(defs)),
	}
	for _, d := range defs {
		result.Satellites = append(result.Satellites, satelliteInfo{
			Name:           d.DisplayName,
			Longitude:      round(geo.Degrees(d.Longitude)),
			Height:         d.Height,
			LongitudeRange: toDegrees(d.LongitudeRange),
			LatitudeRange:  toDegrees(d.LatitudeRange),
			Brightness:     d.Brightness,
			Invert:         d.Invert,
		})
	}
	return result, nil
}

type pixelToGeoArgs struct {
	Satellite string  `json:"satellite"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

type geoPoint struct {
	Satellite string   `json:"satellite"`
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	Visible   bool     `json:"visible"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

func (s *Server) handlePixelToGeo(args json.RawMessage) (interface{}, error) {
	var a pixelToGeoArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	def, err := s.renderer.Registry().Locate(a.Satellite)
	if err != nil {
		return nil, err
	}

	result := geoPoint{Satellite: def.DisplayName, X: a.X, Y: a.Y}
	p := s.renderer.Offset().PixelToGeodetic(def.Orbit(), a.X, a.Y)
	if !p.Visible() {
		return result, nil
	}

	lat := round(geo.Degrees(p.Latitude))
	lon := round(geo.Degrees(p.Longitude))
	result.Visible = true
	result.Latitude = &lat
	result.Longitude = &lon
	return result, nil
}

type geoToPixelArgs struct {
	Satellite string  `json:"satellite"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type pixelPoint struct {
	Satellite string   `json:"satellite"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Visible   bool     `json:"visible"`
	X         *float64 `json:"x,omitempty"`
	Y         *float64 `json:"y,omitempty"`
}

func (s *Server) handleGeoToPixel(args json.RawMessage) (interface{}, error) {
	var a geoToPixelArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Latitude < -90 || a.Latitude > 90 {
		return nil, errLatitudeRange
	}
	def, err := s.renderer.Registry().Locate(a.Satellite)
	if err != nil {
		return nil, err
	}

	result := pixelPoint{Satellite: def.DisplayName, Latitude: a.Latitude, Longitude: a.Longitude}
	x, y, ok := s.renderer.Offset().GeodeticToPixel(def.Orbit(),
		geo.Radians(a.Latitude), geo.NormaliseLongitude(geo.Radians(a.Longitude)))
	if !ok {
		return result, nil
	}

	x, y = round(x), round(y)
	result.Visible = true
	result.X = &x
	result.Y = &y
	return result, nil
}

// === Rendering Handlers ===

type renderResult struct {
	Output            string      `json:"output"`
	Width             int         `json:"width"`
	Height            int         `json:"height"`
	Satellites        []string    `json:"satellites"`
	LatitudeRange     degreeRange `json:"latitude_range"`
	LongitudeRange    degreeRange `json:"longitude_range"`
	FullEarthCoverage bool        `json:"full_earth_coverage"`
	Underlay          bool        `json:"underlay"`
}

// save writes the rendered image and summarises it.
func save(result *render.Result, output string) (*renderResult, error) {
	if err := raster.Save(result.Image, output); err != nil {
		return nil, err
	}
	b := result.Image.Bounds()
	return &renderResult{
		Output:            output,
		Width:             b.Dx(),
		Height:            b.Dy(),
		Satellites:        result.Satellites,
		LatitudeRange:     toDegrees(result.LatitudeRange),
		LongitudeRange:    toDegrees(result.LongitudeRange),
		FullEarthCoverage: result.FullEarthCoverage,
		Underlay:          result.Underlay,
	}, nil
}

// keepsTransparency reports whether the output format has an alpha channel.
func keepsTransparency(output string) bool {
	return strings.EqualFold(filepath.Ext(output), ".png")
}

type renderEquirectangularArgs struct {
	Images []struct {
		Path      string `json:"path"`
		Satellite string `json:"satellite"`
	} `json:"images"`
	Output         string   `json:"output"`
	NoTrim         bool     `json:"no_trim"`
	NoCrop         bool     `json:"no_crop"`
	NoUnderlay     bool     `json:"no_underlay"`
	StartLongitude *float64 `json:"start_longitude"`
}

func (s *Server) handleRenderEquirectangular(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a renderEquirectangularArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Output == "" {
		return nil, errOutputRequired
	}

	req := render.EquirectangularRequest{
		NoTrim:           a.NoTrim,
		NoCrop:           a.NoCrop,
		NoUnderlay:       a.NoUnderlay,
		StartLongitude:   a.StartLongitude,
		KeepTransparency: keepsTransparency(a.Output),
	}
	for _, img := range a.Images {
		req.Images = append(req.Images, render.Input{Path: img.Path, Satellite: img.Satellite})
	}

	result, err := s.renderer.Equirectangular(ctx, req)
	if err != nil {
		return nil, err
	}
	return save(result, a.Output)
}

type renderGeostationaryArgs struct {
	Satellite  string `json:"satellite"`
	Image      string `json:"image"`
	Output     string `json:"output"`
	NoUnderlay bool   `json:"no_underlay"`
}

func (s *Server) handleRenderGeostationary(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a renderGeostationaryArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Output == "" {
		return nil, errOutputRequired
	}

	result, err := s.renderer.Geostationary(ctx, render.GeostationaryRequest{
		Satellite:        a.Satellite,
		ImagePath:        a.Image,
		NoUnderlay:       a.NoUnderlay,
		KeepTransparency: keepsTransparency(a.Output),
	})
	if err != nil {
		return nil, err
	}
	return save(result, a.Output)
}

// satelliteNames lists the configured satellites for error hints.
func (s *Server) satelliteNames() string {
	return strings.Join(s.renderer.Registry().Names(), ", ")
}

// wrapUnknownSatellite adds the known names to an unknown-satellite error.
func (s *Server) wrapUnknownSatellite(err error) error {
	if errors.Is(err, satellite.ErrUnknownSatellite) {
		return fmt.Errorf("%w (known: %s)", err, s.satelliteNames())
	}
	return err
}
