package server

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
)

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleToolsCall(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: []byte(`[1,2]`)})

	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Fatalf("expected -32602, got %+v", resp.Error)
	}
}

func TestHandleToolsCall_UnknownTool(t *testing.T) {
	s := newTestServer(t)
	resp := callTool(t, s, "image_load", map[string]interface{}{"path": "/tmp/x.png"})

	if resp.Error == nil || resp.Error.Code != -32000 {
		t.Fatalf("expected -32000, got %+v", resp.Error)
	}
}

func TestSatelliteList(t *testing.T) {
	s := newTestServer(t)

	var result satelliteListResult
	decodeResult(t, callTool(t, s, "satellite_list", nil), &result)

	if result.ImageSize != 200 {
		t.Errorf("ImageSize: got %d, want 200", result.ImageSize)
	}
	if len(result.Satellites) != 2 {
		t.Fatalf("Satellites: got %d, want 2", len(result.Satellites))
	}

	centre := result.Satellites[0]
	if centre.Name != "Centre" || centre.LongitudeRange.Start >= 0 || centre.LongitudeRange.End <= 0 {
		t.Errorf("Centre: got %+v", centre)
	}

	// East sees across the antimeridian, so its range wraps.
	east := result.Satellites[1]
	if east.Name != "East" || east.Longitude != 120 {
		t.Errorf("East: got %+v", east)
	}
	if east.LongitudeRange.End >= east.LongitudeRange.Start {
		t.Errorf("East visible range %+v should wrap", east.LongitudeRange)
	}
}

func TestPixelToGeo(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name        string
		satellite   string
		x, y        float64
		wantVisible bool
		wantLat     float64
		wantLon     float64
	}{
		{"sub-satellite point", "Centre", 100, 100, true, 0, 0},
		{"sub-satellite point east", "east", 100, 100, true, 0, 120},
		{"corner is space", "Centre", 0, 0, false, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p geoPoint
			decodeResult(t, callTool(t, s, "satellite_pixel_to_geo", map[string]interface{}{
				"satellite": tt.satellite, "x": tt.x, "y": tt.y,
			}), &p)

			if p.Visible != tt.wantVisible {
				t.Fatalf("Visible: got %v, want %v", p.Visible, tt.wantVisible)
			}
			if !tt.wantVisible {
				if p.Latitude != nil || p.Longitude != nil {
					t.Error("space should not report coordinates")
				}
				return
			}
			if math.Abs(*p.Latitude-tt.wantLat) > 1e-4 || math.Abs(*p.Longitude-tt.wantLon) > 1e-4 {
				t.Errorf("got (%v, %v), want (%v, %v)", *p.Latitude, *p.Longitude, tt.wantLat, tt.wantLon)
			}
		})
	}
}

func TestGeoToPixel(t *testing.T) {
	s := newTestServer(t)

	var p pixelPoint
	decodeResult(t, callTool(t, s, "satellite_geo_to_pixel", map[string]interface{}{
		"satellite": "East", "latitude": 0, "longitude": 120,
	}), &p)
	if !p.Visible {
		t.Fatal("sub-satellite point should be visible")
	}
	if math.Abs(*p.X-100) > 1e-4 || math.Abs(*p.Y-100) > 1e-4 {
		t.Errorf("pixel: got (%v, %v), want (100, 100)", *p.X, *p.Y)
	}

	// A northern point sits above the centre row.
	p = pixelPoint{}
	decodeResult(t, callTool(t, s, "satellite_geo_to_pixel", map[string]interface{}{
		"satellite": "Centre", "latitude": 30, "longitude": 0,
	}), &p)
	if !p.Visible || *p.Y >= 100 {
		t.Errorf("30°N: got %+v", p)
	}

	p = pixelPoint{}
	decodeResult(t, callTool(t, s, "satellite_geo_to_pixel", map[string]interface{}{
		"satellite": "Centre", "latitude": 0, "longitude": 180,
	}), &p)
	if p.Visible || p.X != nil {
		t.Errorf("far side: got %+v", p)
	}
}

func TestGeoToPixel_RoundTrip(t *testing.T) {
	s := newTestServer(t)

	var g geoPoint
	decodeResult(t, callTool(t, s, "satellite_pixel_to_geo", map[string]interface{}{
		"satellite": "Centre", "x": 140.5, "y": 60.25,
	}), &g)
	if !g.Visible {
		t.Fatal("pixel should be on the disc")
	}

	var p pixelPoint
	decodeResult(t, callTool(t, s, "satellite_geo_to_pixel", map[string]interface{}{
		"satellite": "Centre", "latitude": *g.Latitude, "longitude": *g.Longitude,
	}), &p)
	if math.Abs(*p.X-140.5) > 1e-3 || math.Abs(*p.Y-60.25) > 1e-3 {
		t.Errorf("round trip: got (%v, %v), want (140.5, 60.25)", *p.X, *p.Y)
	}
}

func TestGeoToPixel_Errors(t *testing.T) {
	s := newTestServer(t)

	resp := callTool(t, s, "satellite_geo_to_pixel", map[string]interface{}{
		"satellite": "Centre", "latitude": 91, "longitude": 0,
	})
	if resp.Error == nil {
		t.Error("latitude out of range should fail")
	}

	resp = callTool(t, s, "satellite_geo_to_pixel", map[string]interface{}{
		"satellite": "Meteosat", "latitude": 0, "longitude": 0,
	})
	if resp.Error == nil {
		t.Fatal("unknown satellite should fail")
	}
	data, _ := resp.Error.Data.(string)
	if !strings.Contains(data, "Centre, East") {
		t.Errorf("error should list known satellites, got %q", data)
	}
}

func TestRenderEquirectangular(t *testing.T) {
	s := newTestServer(t)
	dir := t.TempDir()
	output := filepath.Join(dir, "out", "map.png")

	var result renderResult
	decodeResult(t, callTool(t, s, "render_equirectangular", map[string]interface{}{
		"images": []map[string]interface{}{
			{"path": createInfraredFile(t, dir), "satellite": "Centre"},
		},
		"output": output,
	}), &result)

	if result.Width != 170 || result.Height != 180 {
		t.Errorf("size: got %dx%d, want 170x180", result.Width, result.Height)
	}
	if result.Underlay || result.FullEarthCoverage {
		t.Errorf("flags: got %+v", result)
	}

	img, err := imaging.Open(output)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	if img.Bounds().Dx() != result.Width {
		t.Errorf("written width: got %d, want %d", img.Bounds().Dx(), result.Width)
	}
}

func TestRenderEquirectangular_Errors(t *testing.T) {
	s := newTestServer(t)
	dir := t.TempDir()

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing output", map[string]interface{}{
			"images": []map[string]interface{}{{"path": createInfraredFile(t, dir), "satellite": "Centre"}},
		}},
		{"no images", map[string]interface{}{"output": filepath.Join(dir, "a.png")}},
		{"missing file", map[string]interface{}{
			"images": []map[string]interface{}{{"path": filepath.Join(dir, "missing.png"), "satellite": "Centre"}},
			"output": filepath.Join(dir, "b.png"),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, "render_equirectangular", tt.args)
			if resp.Error == nil || resp.Error.Code != -32000 {
				t.Errorf("expected -32000, got %+v", resp.Error)
			}
		})
	}
}

func TestRenderGeostationary(t *testing.T) {
	s := newTestServer(t)
	dir := t.TempDir()
	output := filepath.Join(dir, "disc.jpg")

	var result renderResult
	decodeResult(t, callTool(t, s, "render_geostationary", map[string]interface{}{
		"satellite": "Centre",
		"image":     createInfraredFile(t, dir),
		"output":    output,
	}), &result)

	if result.Width != 200 || result.Height != 200 {
		t.Errorf("size: got %dx%d, want 200x200", result.Width, result.Height)
	}
	if _, err := os.Stat(output); err != nil {
		t.Errorf("output not written: %v", err)
	}
}

func TestRenderGeostationary_NothingToRender(t *testing.T) {
	s := newTestServer(t)

	resp := callTool(t, s, "render_geostationary", map[string]interface{}{
		"satellite": "Centre",
		"output":    filepath.Join(t.TempDir(), "disc.png"),
	})
	if resp.Error == nil {
		t.Fatal("render without image or underlay should fail")
	}
}

func TestKeepsTransparency(t *testing.T) {
	tests := map[string]bool{
		"/tmp/a.png":  true,
		"/tmp/a.PNG":  true,
		"/tmp/a.jpg":  false,
		"/tmp/a.jpeg": false,
	}
	for path, want := range tests {
		if got := keepsTransparency(path); got != want {
			t.Errorf("keepsTransparency(%s): got %v, want %v", path, got, want)
		}
	}
}
