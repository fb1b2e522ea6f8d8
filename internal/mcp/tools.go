package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/zot/n4games/internal/catalog"
)

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("list_widgets",
		mcp.WithDescription("List registered widget ids in lexicographic order"),
	), s.handleListWidgets)

	s.mcp.AddTool(mcp.NewTool("resolve_widget",
		mcp.WithDescription("Resolve a widget id to its script locator and the bundle that must load first"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Widget id, e.g. tetris")),
	), s.handleResolveWidget)

	s.mcp.AddTool(mcp.NewTool("list_bundles",
		mcp.WithDescription("List aggregate script bundles"),
	), s.handleListBundles)
}

func (s *Server) handleListWidgets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := s.registry.List()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(ids)
}

func (s *Server) handleResolveWidget(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	w, err := s.registry.Resolve(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.config.Log(2, "MCP: resolved %s", id)
	return jsonResult(catalog.ViewOf(w))
}

func (s *Server) handleListBundles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	views, err := catalog.BundleViews(s.registry)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(views)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
