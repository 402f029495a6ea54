package server

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()
	if len(tools) != 8 {
		t.Fatalf("got %d tools, want 8", len(tools))
	}

	seen := make(map[string]bool)
	for _, tool := range tools {
		if !strings.HasPrefix(tool.Name, "science_") {
			t.Errorf("tool %s not in the science_ namespace", tool.Name)
		}
		if seen[tool.Name] {
			t.Errorf("duplicate tool name %s", tool.Name)
		}
		seen[tool.Name] = true

		if tool.Description == "" {
			t.Errorf("tool %s has no description", tool.Name)
		}
		if tool.InputSchema["type"] != "object" {
			t.Errorf("tool %s schema type = %v", tool.Name, tool.InputSchema["type"])
		}
	}

	for _, want := range []string{
		"science_analyze", "science_analyze_batch", "science_job_status",
		"science_health", "science_index_catalog", "science_features",
		"science_budget", "science_attributes",
	} {
		if !seen[want] {
			t.Errorf("tool %s not defined", want)
		}
	}
}

func TestEveryDefinedToolDispatches(t *testing.T) {
	// Each defined tool must route somewhere: calling it with empty
	// arguments may fail, but never with "unknown tool".
	srv, _ := newTestServer(t)
	for _, tool := range GetToolDefinitions() {
		_, err := srv.executeTool(context.Background(), tool.Name, json.RawMessage(`{}`))
		if err != nil && strings.Contains(err.Error(), "unknown tool") {
			t.Errorf("tool %s is defined but not dispatched", tool.Name)
		}
	}
}

func TestHandleToolsList(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := srv.handleToolsList(&MCPRequest{JSONRPC: "2.0", ID: 7})
	if resp.Error != nil {
		t.Fatalf("tools/list errored: %+v", resp.Error)
	}

	result := resp.Result.(map[string]interface{})
	tools, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatalf("tools type %T", result["tools"])
	}
	if len(tools) != len(GetToolDefinitions()) {
		t.Errorf("listed %d tools, want %d", len(tools), len(GetToolDefinitions()))
	}
}
