package mcp

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/verdeck/verdeck/internal/model"
	"github.com/verdeck/verdeck/internal/store"
)

// maxLogLimit caps how many audit rows a single tool call can return.
const maxLogLimit = 200

// registerTools registers all Verdeck MCP tools on the given server.
func (s *MCPServer) registerTools(srv *server.MCPServer) {

	// ----- Read tools -----

	srv.AddTool(
		mcp.NewTool("verdeck_list_versions",
			mcp.WithDescription(
				"List all deployment config versions, newest first. Returns each "+
					"version's id, name, creation time, active flag, and metadata. "+
					"At most one version is active at any time.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
		),
		s.handleListVersions,
	)

	srv.AddTool(
		mcp.NewTool("verdeck_recent_logs",
			mcp.WithDescription(
				"List the most recent audit log entries, newest first. Each entry "+
					"records who did what, when, plus a sha256 fingerprint of the "+
					"action content.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of entries to return (default 50, max 200)"),
			),
		),
		s.handleRecentLogs,
	)

	// ----- Mutation tools -----

	srv.AddTool(
		mcp.NewTool("verdeck_create_version",
			mcp.WithDescription(
				"Create a new deployment config version. The version starts "+
					"inactive; use verdeck_activate_version to switch traffic to it. "+
					"Returns the created version with its assigned id.",
			),
			mcp.WithToolAnnotation(mutatingAnnotation()),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Human-readable version name (1-200 characters)"),
			),
			mcp.WithObject("meta",
				mcp.Description("Optional metadata object stored with the version (e.g. {\"release\": \"2.3.1\"})"),
			),
		),
		s.handleCreateVersion,
	)

	srv.AddTool(
		mcp.NewTool("verdeck_activate_version",
			mcp.WithDescription(
				"Make the given version the single active one. Any previously "+
					"active version is deactivated in the same transaction. Fails if "+
					"the id does not exist, leaving the current active version in place.",
			),
			mcp.WithToolAnnotation(mutatingAnnotation()),
			mcp.WithNumber("id",
				mcp.Required(),
				mcp.Description("Id of the version to activate"),
			),
		),
		s.handleActivateVersion,
	)

	srv.AddTool(
		mcp.NewTool("verdeck_delete_version",
			mcp.WithDescription(
				"Delete a version by id. Deleting an id that does not exist "+
					"still succeeds. Deleting the active version leaves no version active.",
			),
			mcp.WithToolAnnotation(mutatingAnnotation()),
			mcp.WithNumber("id",
				mcp.Required(),
				mcp.Description("Id of the version to delete"),
			),
		),
		s.handleDeleteVersion,
	)
}

// =========================================================================
// Tool handlers
// =========================================================================

func (s *MCPServer) handleListVersions(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	versions, err := s.store.ListVersions(ctx)
	if err != nil {
		return toolError("Failed to list versions: %v", err)
	}
	return successJSON(map[string]interface{}{
		"versions": versions,
		"count":    len(versions),
	})
}

func (s *MCPServer) handleRecentLogs(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	limit := clamp(request.GetInt("limit", 50), 1, maxLogLimit)

	logs, err := s.store.RecentLogs(ctx, limit)
	if err != nil {
		return toolError("Failed to list logs: %v", err)
	}
	return successJSON(map[string]interface{}{
		"logs":  logs,
		"count": len(logs),
	})
}

func (s *MCPServer) handleCreateVersion(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	name, err := requireString(request, "name")
	if err != nil {
		return toolError("%v", err)
	}
	meta := getObjectArg(request, "meta")

	version, err := s.store.CreateVersion(ctx, name, model.Meta(meta))
	if err != nil {
		if errors.Is(err, store.ErrEmptyName) {
			return toolError("Version name must not be empty or whitespace-only.")
		}
		return toolError("Failed to create version: %v", err)
	}

	s.record(ctx, "create_version", model.Meta{"version_id": version.ID, "name": version.Name})
	return successJSON(map[string]interface{}{
		"ok":      true,
		"version": version,
	})
}

func (s *MCPServer) handleActivateVersion(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	id, err := requireInt64(request, "id")
	if err != nil {
		return toolError("%v", err)
	}

	version, err := s.store.ActivateVersion(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return toolError("Version %d not found. Use verdeck_list_versions to see available ids.", id)
		}
		return toolError("Failed to activate version: %v", err)
	}

	s.record(ctx, "activate_version", model.Meta{"version_id": version.ID, "name": version.Name})
	return successJSON(map[string]interface{}{
		"ok":      true,
		"version": version,
	})
}

func (s *MCPServer) handleDeleteVersion(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	id, err := requireInt64(request, "id")
	if err != nil {
		return toolError("%v", err)
	}

	if err := s.store.DeleteVersion(ctx, id); err != nil {
		return toolError("Failed to delete version: %v", err)
	}

	s.record(ctx, "delete_version", model.Meta{"version_id": id})
	return successJSON(map[string]interface{}{
		"ok": true,
	})
}

// record audits a mutation made over MCP. There is no session here, so
// the entry has no user id and is tagged with its source instead.
func (s *MCPServer) record(ctx context.Context, action string, meta model.Meta) {
	if meta == nil {
		meta = model.Meta{}
	}
	meta["source"] = "mcp"
	s.auditor.Record(ctx, nil, action, meta)
}
