package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// systemProperties describes the arguments shared by every system tool.
func systemProperties() map[string]interface{} {
	return map[string]interface{}{
		"image_path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the score page image",
		},
		"region": map[string]interface{}{
			"type":        "object",
			"description": "Part of the page holding the system (x2, y2 exclusive). Whole page if omitted.",
			"properties": map[string]interface{}{
				"x1": map[string]interface{}{"type": "integer"},
				"y1": map[string]interface{}{"type": "integer"},
				"x2": map[string]interface{}{"type": "integer"},
				"y2": map[string]interface{}{"type": "integer"},
			},
			"required": []string{"x1", "y1", "x2", "y2"},
		},
		"system_id": map[string]interface{}{
			"type":        "integer",
			"description": "System number used in logs and reports",
		},
		"scale": map[string]interface{}{
			"type":        "object",
			"description": "Sheet scale in pixels",
			"properties": map[string]interface{}{
				"interline":      map[string]interface{}{"type": "integer", "description": "Distance between two staff lines"},
				"line_thickness": map[string]interface{}{"type": "integer", "description": "Staff line thickness"},
			},
			"required": []string{"interline", "line_thickness"},
		},
		"staves": map[string]interface{}{
			"type":        "array",
			"description": "Staves of the system, top to bottom",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id":    map[string]interface{}{"type": "integer"},
					"left":  map[string]interface{}{"type": "integer", "description": "Abscissa of the staff start"},
					"right": map[string]interface{}{"type": "integer", "description": "Abscissa of the staff end"},
					"lines": map[string]interface{}{
						"type":        "array",
						"description": "Ordinates of the 5 lines, top to bottom",
						"items":       map[string]interface{}{"type": "number"},
					},
				},
				"required": []string{"left", "right", "lines"},
			},
		},
		"assignments": map[string]interface{}{
			"type":        "array",
			"description": "Shapes forced on the glyphs found at given points",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x":      map[string]interface{}{"type": "integer"},
					"y":      map[string]interface{}{"type": "integer"},
					"shape":  map[string]interface{}{"type": "string", "description": "Shape name, e.g. STEM, SLUR, NOTEHEAD_BLACK"},
					"grade":  map[string]interface{}{"type": "number", "description": "Grade in [0,1] (default: 1)"},
					"manual": map[string]interface{}{"type": "boolean", "description": "Protect the shape from every corrector"},
				},
				"required": []string{"x", "y", "shape"},
			},
		},
	}
}

// withProperties returns the system properties plus extra ones.
func withProperties(extra map[string]interface{}) map[string]interface{} {
	props := systemProperties()
	for k, v := range extra {
		props[k] = v
	}
	return props
}

var systemRequired = []string{"image_path", "scale"}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "omr_page_info",
			Description: "Load a score page and return its dimensions and the share of ink pixels once binarized.",
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
			Name:        "omr_list_glyphs",
			Description: "Build the glyphs of a system from the page and classify them, without running any corrector.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": systemProperties(),
				"required":   systemRequired,
			},
		},
		{
			Name:        "omr_check_patterns",
			Description: "Build a system and run the shape-correction sequence over it. Returns a per-step report and the corrected glyphs.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": systemProperties(),
				"required":   systemRequired,
			},
		},
		{
			Name:        "omr_fit_circle",
			Description: "Fit a slur circle through the sections of the given glyphs and tell whether it would pass as a slur.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(map[string]interface{}{
					"glyph_ids": map[string]interface{}{
						"type":        "array",
						"description": "Ids of the glyphs, as returned by omr_list_glyphs",
						"items":       map[string]interface{}{"type": "integer"},
					},
				}),
				"required": append(append([]string(nil), systemRequired...), "glyph_ids"),
			},
		},
		{
			Name:        "omr_render_overlay",
			Description: "Draw the glyphs of a system over the page, colored by shape, and return it as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(map[string]interface{}{
					"check": map[string]interface{}{
						"type":        "boolean",
						"description": "Run the correction sequence before drawing (default: false)",
					},
					"zoom": map[string]interface{}{
						"type":        "integer",
						"description": "Enlargement factor, 1 to 8 (default: 1)",
					},
					"show_ids": map[string]interface{}{
						"type":        "boolean",
						"description": "Print glyph ids above their boxes",
					},
					"unassigned": map[string]interface{}{
						"type":        "boolean",
						"description": "Also draw glyphs without a shape, in gray",
					},
				}),
				"required": systemRequired,
			},
		},
		{
			Name:        "omr_ocr_info",
			Description: "Report whether the Tesseract OCR engine is available for text checking, and its version.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
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
