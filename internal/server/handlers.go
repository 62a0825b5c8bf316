package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/omr-patterns/internal/imaging"
	"github.com/ironsheep/omr-patterns/internal/ocr"
	"github.com/ironsheep/omr-patterns/internal/pipeline"
	"github.com/ironsheep/omr-patterns/internal/render"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "omr_check_patterns").
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
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		var argErr *argumentsError
		if errors.As(err, &argErr) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
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
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "omr_page_info":
		return s.handlePageInfo(args)
	case "omr_list_glyphs":
		return s.handleListGlyphs(args)
	case "omr_check_patterns":
		return s.handleCheckPatterns(args)
	case "omr_fit_circle":
		return s.handleFitCircle(args)
	case "omr_render_overlay":
		return s.handleRenderOverlay(args)
	case "omr_ocr_info":
		return ocr.GetInfo(s.cfg.OCR), nil
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// argumentsError marks tool arguments that cannot be decoded.
type argumentsError struct {
	err error
}

func (e *argumentsError) Error() string { return "invalid arguments: " + e.err.Error() }

func (e *argumentsError) Unwrap() error { return e.err }

// decodeArgs unmarshals tool arguments. Missing arguments decode as {}.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return &argumentsError{err: err}
	}
	return nil
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{Code: code, Message: message}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   e,
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Page Handlers ===

type pageInfoArgs struct {
	Path string `json:"path"`
}

func (s *Server) handlePageInfo(args json.RawMessage) (interface{}, error) {
	var a pageInfoArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, &argumentsError{err: errors.New("path is required")}
	}
	return imaging.LoadPageInfo(s.cache, a.Path, uint8(s.cfg.Image.Threshold))
}

// === System Handlers ===

type listGlyphsResult struct {
	System int                  `json:"system"`
	Count  int                  `json:"count"`
	Glyphs []pipeline.GlyphInfo `json:"glyphs"`
}

func (s *Server) handleListGlyphs(args json.RawMessage) (interface{}, error) {
	var req pipeline.Request
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}

	sys, _, err := s.pipeline.BuildSystem(req)
	if err != nil {
		return nil, err
	}
	glyphs := pipeline.Describe(sys)
	return &listGlyphsResult{System: sys.ID, Count: len(glyphs), Glyphs: glyphs}, nil
}

func (s *Server) handleCheckPatterns(args json.RawMessage) (interface{}, error) {
	var req pipeline.Request
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}

	res, _, err := s.pipeline.Check(req)
	return res, err
}

type fitCircleArgs struct {
	pipeline.Request
	GlyphIDs []int `json:"glyph_ids"`
}

func (s *Server) handleFitCircle(args json.RawMessage) (interface{}, error) {
	var a fitCircleArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.pipeline.FitCircle(a.Request, a.GlyphIDs)
}

// === Rendering Handlers ===

type renderOverlayArgs struct {
	pipeline.Request

	// Check runs the pattern sequence before drawing.
	Check      bool `json:"check"`
	Zoom       int  `json:"zoom"`
	ShowIDs    bool `json:"show_ids"`
	Unassigned bool `json:"unassigned"`
}

type renderOverlayResult struct {
	ImageBase64 string           `json:"image_base64"`
	Format      string           `json:"format"`
	Width       int              `json:"width"`
	Height      int              `json:"height"`
	Result      *pipeline.Result `json:"result,omitempty"`
}

func (s *Server) handleRenderOverlay(args json.RawMessage) (interface{}, error) {
	a := renderOverlayArgs{Zoom: 1}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Zoom < 1 || a.Zoom > 8 {
		return nil, &argumentsError{err: fmt.Errorf("zoom must be between 1 and 8, got %d", a.Zoom)}
	}

	sys, page, err := s.pipeline.BuildSystem(a.Request)
	if err != nil {
		return nil, err
	}

	out := &renderOverlayResult{Format: "png"}
	if a.Check {
		res, err := s.pipeline.CheckSystem(sys)
		if err != nil {
			return nil, err
		}
		out.Result = res
	}

	img := render.Overlay(page, sys, render.Options{Scale: a.Zoom, ShowIDs: a.ShowIDs, Unassigned: a.Unassigned})
	out.Width, out.Height = img.Bounds().Dx(), img.Bounds().Dy()
	out.ImageBase64, err = render.EncodePNGBase64(img)
	if err != nil {
		return nil, err
	}
	return out, nil
}
