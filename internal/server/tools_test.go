package server

import (
	"encoding/json"
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	expected := []string{
		"omr_page_info",
		"omr_list_glyphs",
		"omr_check_patterns",
		"omr_fit_circle",
		"omr_render_overlay",
		"omr_ocr_info",
	}

	tools := GetToolDefinitions()
	if len(tools) != len(expected) {
		t.Fatalf("got %d tools, want %d", len(tools), len(expected))
	}
	for i, name := range expected {
		if tools[i].Name != name {
			t.Errorf("tool %d: got %s, want %s", i, tools[i].Name, name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	s := newTestServer()

	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema.type: got %v, want object", tool.InputSchema["type"])
			}
			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok {
				t.Fatal("InputSchema.properties is not a map")
			}

			required, _ := tool.InputSchema["required"].([]string)
			for _, name := range required {
				if _, ok := props[name]; !ok {
					t.Errorf("required property %s is not described", name)
				}
			}

			// Every listed tool must be dispatched.
			if _, err := s.executeTool(tool.Name, json.RawMessage(`{}`)); err != nil && err.Error() == "unknown tool: "+tool.Name {
				t.Errorf("tool %s is not dispatched", tool.Name)
			}
		})
	}
}

func TestToolDefinitions_SystemArguments(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		if tool.Name == "omr_page_info" || tool.Name == "omr_ocr_info" {
			continue
		}
		props := tool.InputSchema["properties"].(map[string]interface{})
		for _, name := range []string{"image_path", "region", "scale", "staves", "assignments"} {
			if _, ok := props[name]; !ok {
				t.Errorf("%s: missing property %s", tool.Name, name)
			}
		}
	}
}

func TestHandleToolsList(t *testing.T) {
	s := newTestServer()
	resp := s.handleToolsList(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})

	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}
	result := resp.Result.(map[string]interface{})
	tools, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatalf("tools type: got %T", result["tools"])
	}
	if len(tools) != len(GetToolDefinitions()) {
		t.Errorf("got %d tools", len(tools))
	}
}
