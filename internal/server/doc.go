// Package server implements the MCP (Model Context Protocol) server for the
// shape-correction engine.
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
//   - omr_page_info: Page dimensions and ink ratio
//   - omr_list_glyphs: Glyphs of a system after the initial classification
//   - omr_check_patterns: Run the correction sequence, report every step
//   - omr_fit_circle: Fit a slur circle through chosen glyphs
//   - omr_render_overlay: Page overlay colored by shape, as base64 PNG
//   - omr_ocr_info: Tesseract availability
//
// Every system tool takes the page path, the sheet scale and the staves. The
// system is rebuilt from the page on each call; nothing but the decoded pages
// is kept between calls.
//
// # Error Handling
//
// Errors are returned as JSON-RPC error responses with:
//   - code: -32700 (unparsable line), -32601 (unknown method),
//     -32602 (undecodable arguments) or -32000 (tool failure)
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(cfg, logger)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
