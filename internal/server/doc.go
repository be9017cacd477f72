// Package server implements the MCP (Model Context Protocol) server for
// geostationary satellite imagery.
//
// This package provides a JSON-RPC 2.0 server that exposes reprojection,
// stitching and underlay compositing through the MCP protocol.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Satellite geometry:
//   - satellite_list: Configured satellites and their visible ranges
//   - satellite_pixel_to_geo: Full-disc pixel to latitude and longitude
//   - satellite_geo_to_pixel: Latitude and longitude to full-disc pixel
//
// Rendering:
//   - render_equirectangular: Stitch one or more satellites into a map
//   - render_geostationary: Underlay in a satellite's frame, with optional
//     infrared composite
//
// Angles are reported in degrees. Render tools write the image to the
// requested output path and return its size and coverage.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.New(renderer, version, logger)
//	if err := srv.Run(ctx); err != nil {
//	    logger.Error("server stopped", "error", err)
//	}
package server
