package server

import "github.com/ironsheep/sprite-tools-mcp/internal/palette"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// keyProperties describes the optional background removal overrides shared
// by sprite_remove_background and sprite_process_directory.
func keyProperties() map[string]interface{} {
	return map[string]interface{}{
		"tolerance": map[string]interface{}{
			"type":        "number",
			"description": "RGB distance within which a pixel matches a background colour (0-441.7). Default 30",
			"minimum":     0,
		},
		"edge_size": map[string]interface{}{
			"type":        "integer",
			"description": "Size of the edge sampling patches in pixels. Default 10",
			"minimum":     1,
		},
		"sample_points": map[string]interface{}{
			"type":        "integer",
			"description": "Sample positions per edge. Default 5",
			"minimum":     1,
		},
		"auto_crop": map[string]interface{}{
			"type":        "boolean",
			"description": "Trim transparent margins after removal. Default true",
		},
		"padding": map[string]interface{}{
			"type":        "integer",
			"description": "Pixels kept around the sprite when cropping. Default 0",
			"minimum":     0,
		},
		"green_boost": map[string]interface{}{
			"type":        "boolean",
			"description": "Widen the tolerance for greenish pixels (green-screen spill). Default true",
		},
	}
}

func withKeyProperties(props map[string]interface{}) map[string]interface{} {
	for k, v := range keyProperties() {
		props[k] = v
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format, alpha and colour depth. PNG, JPEG, GIF, BMP and WebP are supported.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_sample_color",
			Description: "Get the exact colour at one pixel (x, y) or at several labeled points. Reports hex, RGB, RGBA, HSV and whether the colour is chroma-key green.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based, from left)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based, from top)",
					},
					"points": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x":     map[string]interface{}{"type": "integer"},
								"y":     map[string]interface{}{"type": "integer"},
								"label": map[string]interface{}{"type": "string", "description": "Optional label for this point"},
							},
							"required": []string{"x", "y"},
						},
						"description": "Points to sample instead of a single x, y",
					},
				},
				"required": []string{"path"},
			},
		},

		// Background Removal
		{
			Name:        "sprite_detect_background",
			Description: "Sample the image edges and report the background colours the remover would key out, without modifying anything.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"edge_size":     keyProperties()["edge_size"],
					"sample_points": keyProperties()["sample_points"],
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "sprite_remove_background",
			Description: "Remove the chroma-key background from one frame by flood erosion from the edges, clean the green fringe, auto-crop, and write a transparent PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withKeyProperties(map[string]interface{}{
					"input": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the input frame",
					},
					"output": map[string]interface{}{
						"type":        "string",
						"description": "Output PNG path. Default <input stem>_nobg.png next to the input",
					},
				}),
				"required": []string{"input"},
			},
		},
		{
			Name:        "sprite_process_directory",
			Description: "Remove the background from every frame (png, jpg, jpeg, bmp, webp) in a directory in parallel and report a per-file summary.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withKeyProperties(map[string]interface{}{
					"input_dir": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the frame directory (not recursive)",
					},
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Output directory. Default <input_dir>_nobg",
					},
					"workers": map[string]interface{}{
						"type":        "integer",
						"description": "Worker count. Default is the number of CPUs",
						"minimum":     0,
					},
				}),
				"required": []string{"input_dir"},
			},
		},

		// Sheets and Palettes
		{
			Name:        "sprite_compose_sheet",
			Description: "Compose frames into a sprite sheet in filename order and write it as PNG. Reports cell size, grid and each frame's rectangle for engine import.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"input_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory of frames, sorted by filename",
					},
					"files": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Explicit frame files in sheet order (instead of input_dir)",
					},
					"output": map[string]interface{}{
						"type":        "string",
						"description": "Output PNG path. Default <input_dir>_sheet.png",
					},
					"cell_width": map[string]interface{}{
						"type":        "integer",
						"description": "Cell width. Default is the widest frame",
					},
					"cell_height": map[string]interface{}{
						"type":        "integer",
						"description": "Cell height. Default is the tallest frame",
					},
					"columns": map[string]interface{}{
						"type":        "integer",
						"description": "Frames per row. Default puts every frame in one row",
					},
					"scale": map[string]interface{}{
						"type":        "integer",
						"description": "Nearest-neighbour upscale factor for pixel-art previews (1-16). Default 1",
					},
					"include_base64": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return the sheet as base64-encoded PNG",
						"default":     false,
					},
				},
			},
		},
		{
			Name:        "sprite_palette",
			Description: "Extract the dominant colours of a keyed sprite. Transparent pixels are ignored; greenish swatches point to leftover key spill.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"count": map[string]interface{}{
						"type":        "integer",
						"description": "Number of colours to return (1-64). Default 8",
						"default":     palette.DefaultCount,
					},
					"method": map[string]interface{}{
						"type":        "string",
						"enum":        []string{string(palette.MethodDominant), string(palette.MethodKMeans), string(palette.MethodHistogram)},
						"description": "Extraction algorithm. Default dominant",
					},
				},
				"required": []string{"path"},
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
