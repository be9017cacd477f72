package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func satelliteProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Satellite display name as listed by satellite_list (case-insensitive)",
	}
}

func outputProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path of the image to write. The extension selects the format; .png keeps uncovered areas transparent",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Satellite geometry
		{
			Name:        "satellite_list",
			Description: "List the configured geostationary satellites with their longitude and the longitude range visible from orbit, in degrees.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "satellite_pixel_to_geo",
			Description: "Convert a pixel in a satellite's full-disc image to latitude and longitude. Pixels in space report visible=false.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"satellite": satelliteProperty(),
					"x": map[string]interface{}{
						"type":        "number",
						"description": "Column in the full-disc image (0-based, fractional allowed)",
					},
					"y": map[string]interface{}{
						"type":        "number",
						"description": "Row in the full-disc image (0-based, fractional allowed)",
					},
				},
				"required": []string{"satellite", "x", "y"},
			},
		},
		{
			Name:        "satellite_geo_to_pixel",
			Description: "Convert latitude and longitude to a pixel in a satellite's full-disc image. Points on the far side of the Earth report visible=false.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"satellite": satelliteProperty(),
					"latitude": map[string]interface{}{
						"type":        "number",
						"description": "Geodetic latitude in degrees (-90 to 90)",
					},
					"longitude": map[string]interface{}{
						"type":        "number",
						"description": "Longitude in degrees, east positive",
					},
				},
				"required": []string{"satellite", "latitude", "longitude"},
			},
		},

		// Rendering
		{
			Name:        "render_equirectangular",
			Description: "Reproject full-disc infrared images from one or more satellites to equirectangular, stitch them into one map and blend them over the configured underlay.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"images": map[string]interface{}{
						"type":        "array",
						"description": "Infrared full-disc images and the satellite that took each one",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"path":      map[string]interface{}{"type": "string", "description": "Absolute path to the image file"},
								"satellite": satelliteProperty(),
							},
							"required": []string{"path", "satellite"},
						},
					},
					"output": outputProperty(),
					"no_trim": map[string]interface{}{
						"type":        "boolean",
						"description": "Keep each satellite's full visible range instead of trimming overlaps (default: false)",
					},
					"no_crop": map[string]interface{}{
						"type":        "boolean",
						"description": "Keep the full canvas instead of cropping to the covered area (default: false)",
					},
					"no_underlay": map[string]interface{}{
						"type":        "boolean",
						"description": "Skip the underlay (default: false)",
					},
					"start_longitude": map[string]interface{}{
						"type":        "number",
						"description": "Longitude in degrees placed at the left edge when the Earth is fully covered",
					},
				},
				"required": []string{"images", "output"},
			},
		},
		{
			Name:        "render_geostationary",
			Description: "Project the underlay into a satellite's full-disc frame and optionally screen-blend an infrared image from that satellite over it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"satellite": satelliteProperty(),
					"image": map[string]interface{}{
						"type":        "string",
						"description": "Optional absolute path to an infrared image taken by the satellite",
					},
					"output": outputProperty(),
					"no_underlay": map[string]interface{}{
						"type":        "boolean",
						"description": "Skip the underlay; requires image (default: false)",
					},
				},
				"required": []string{"satellite", "output"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
