package server

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/geostitch/internal/projection"
	"github.com/ironsheep/geostitch/internal/render"
	"github.com/ironsheep/geostitch/internal/reproject"
	"github.com/ironsheep/geostitch/internal/satellite"
)

// smallDisc keeps renders fast: a 200 px frame centred on pixel (100, 100).
var smallDisc = projection.ImageOffset{X: -0.151816, Y: 0.151816, ScaleFactor: 0.00151816, ImageSize: 200}

const testSatellites = `
- display_name: Centre
  longitude: 0
- display_name: East
  longitude: 120
`

// newTestServer creates a server without an underlay.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	registry, err := satellite.Parse([]byte(testSatellites), smallDisc)
	if err != nil {
		t.Fatalf("failed to parse definitions: %v", err)
	}
	r := render.New(render.Config{
		Registry:   registry,
		Offset:     smallDisc,
		Reproject:  reproject.DefaultOptions(),
		Background: color.NRGBA{A: 255},
	})
	return New(r, "test", nil)
}

// createInfraredFile writes a uniform full-disc image and returns its path.
func createInfraredFile(t *testing.T, dir string) string {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, smallDisc.ImageSize, smallDisc.ImageSize))
	for y := 0; y < smallDisc.ImageSize; y++ {
		for x := 0; x < smallDisc.ImageSize; x++ {
			img.SetNRGBA(x, y, color.NRGBA{220, 220, 220, 255})
		}
	}

	path := filepath.Join(dir, "infrared.png")
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("failed to save image: %v", err)
	}
	return path
}

// callTool issues a tools/call request and returns the response.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) *MCPResponse {
	t.Helper()

	params, err := json.Marshal(map[string]interface{}{
		"name":      name,
		"arguments": args,
	})
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
	}

	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  params,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// decodeResult unmarshals the text content of a successful tool response.
func decodeResult(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %s (%v)", resp.Error.Message, resp.Error.Data)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("content: got %#v", result["content"])
	}
	text, ok := content[0]["text"].(string)
	if !ok {
		t.Fatal("content text should be a string")
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		t.Fatalf("failed to decode result %q: %v", text, err)
	}
}
