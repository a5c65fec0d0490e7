package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/verdeck/verdeck/internal/store"
)

func newTestMCP(t *testing.T) *MCPServer {
	t.Helper()
	st, err := store.Open(store.Options{}) // in-memory sqlite
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewMCPServer(st, logger)
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// textContent extracts the text payload from a tool result.
func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("tool result has no content")
	}
	tc, ok := mcp.AsTextContent(result.Content[0])
	if !ok {
		t.Fatalf("got content %T, want text", result.Content[0])
	}
	return tc.Text
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		val      int
		min      int
		max      int
		expected int
	}{
		{"value in range", 5, 1, 10, 5},
		{"value below min", -3, 1, 10, 1},
		{"value above max", 15, 1, 10, 10},
		{"value equals min", 1, 1, 10, 1},
		{"value equals max", 10, 1, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := clamp(tt.val, tt.min, tt.max)
			if got != tt.expected {
				t.Errorf("clamp(%d, %d, %d) = %d, want %d", tt.val, tt.min, tt.max, got, tt.expected)
			}
		})
	}
}

func TestAnnotations(t *testing.T) {
	ro := readOnlyAnnotation()
	if ro.ReadOnlyHint == nil || !*ro.ReadOnlyHint {
		t.Error("readOnlyAnnotation should hint read-only")
	}
	mut := mutatingAnnotation()
	if mut.ReadOnlyHint == nil || *mut.ReadOnlyHint {
		t.Error("mutatingAnnotation should hint mutating")
	}
}

func TestRequireInt64(t *testing.T) {
	if _, err := requireInt64(callRequest(map[string]interface{}{}), "id"); err == nil {
		t.Error("expected error for missing id")
	}
	if _, err := requireInt64(callRequest(map[string]interface{}{"id": float64(-1)}), "id"); err == nil {
		t.Error("expected error for non-positive id")
	}
	id, err := requireInt64(callRequest(map[string]interface{}{"id": float64(42)}), "id")
	if err != nil {
		t.Fatalf("requireInt64: %v", err)
	}
	if id != 42 {
		t.Errorf("got %d, want 42", id)
	}
}

func TestVersionToolsRoundTrip(t *testing.T) {
	s := newTestMCP(t)
	ctx := context.Background()

	// Create
	result, err := s.handleCreateVersion(ctx, callRequest(map[string]interface{}{
		"name": "v1.0.0",
		"meta": map[string]interface{}{"release": "stable"},
	}))
	if err != nil {
		t.Fatalf("handleCreateVersion: %v", err)
	}
	if result.IsError {
		t.Fatalf("create failed: %s", textContent(t, result))
	}

	var created struct {
		OK      bool `json:"ok"`
		Version struct {
			ID     int64 `json:"id"`
			Active bool  `json:"active"`
		} `json:"version"`
	}
	if err := json.Unmarshal([]byte(textContent(t, result)), &created); err != nil {
		t.Fatalf("decode create result: %v", err)
	}
	if created.Version.ID == 0 || created.Version.Active {
		t.Fatalf("got %+v, want non-zero id and inactive", created.Version)
	}

	// Activate
	result, err = s.handleActivateVersion(ctx, callRequest(map[string]interface{}{
		"id": float64(created.Version.ID),
	}))
	if err != nil {
		t.Fatalf("handleActivateVersion: %v", err)
	}
	if result.IsError {
		t.Fatalf("activate failed: %s", textContent(t, result))
	}

	// List
	result, err = s.handleListVersions(ctx, callRequest(nil))
	if err != nil {
		t.Fatalf("handleListVersions: %v", err)
	}
	var listed struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal([]byte(textContent(t, result)), &listed); err != nil {
		t.Fatalf("decode list result: %v", err)
	}
	if listed.Count != 1 {
		t.Errorf("got %d versions, want 1", listed.Count)
	}

	// Delete
	result, err = s.handleDeleteVersion(ctx, callRequest(map[string]interface{}{
		"id": float64(created.Version.ID),
	}))
	if err != nil {
		t.Fatalf("handleDeleteVersion: %v", err)
	}
	if result.IsError {
		t.Fatalf("delete failed: %s", textContent(t, result))
	}
}

func TestActivateUnknownIsToolError(t *testing.T) {
	s := newTestMCP(t)

	result, err := s.handleActivateVersion(context.Background(), callRequest(map[string]interface{}{
		"id": float64(99999),
	}))
	if err != nil {
		t.Fatalf("handler returned protocol error: %v", err)
	}
	if !result.IsError {
		t.Error("activating an unknown id should be a tool error")
	}
}

func TestMutationsAreAudited(t *testing.T) {
	s := newTestMCP(t)
	ctx := context.Background()

	if _, err := s.handleCreateVersion(ctx, callRequest(map[string]interface{}{"name": "audited"})); err != nil {
		t.Fatalf("handleCreateVersion: %v", err)
	}

	logs, err := s.store.RecentLogs(ctx, 10)
	if err != nil {
		t.Fatalf("RecentLogs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("got %d audit entries, want 1", len(logs))
	}
	entry := logs[0]
	if entry.Action != "create_version" {
		t.Errorf("got action %q, want create_version", entry.Action)
	}
	if entry.UserID != nil {
		t.Error("MCP mutations should be recorded without a user id")
	}
	if entry.Meta["source"] != "mcp" {
		t.Errorf("got meta %v, want source=mcp", entry.Meta)
	}
}
