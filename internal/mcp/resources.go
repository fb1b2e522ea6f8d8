package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/zot/n4games/internal/catalog"
)

// Resource URIs.
const (
	CatalogURI = "widgets://catalog"
	BundlesURI = "widgets://bundles"
)

func (s *Server) registerResources() {
	s.mcp.AddResource(mcp.NewResource(CatalogURI, "Widget Catalog",
		mcp.WithResourceDescription("Every registered widget with its script, bundle and stylesheet locators"),
		mcp.WithMIMEType("application/json"),
	), s.readCatalog)

	s.mcp.AddResource(mcp.NewResource(BundlesURI, "Script Bundles",
		mcp.WithResourceDescription("Aggregate script bundles widgets depend on"),
		mcp.WithMIMEType("application/json"),
	), s.readBundles)
}

func (s *Server) readCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	views, err := catalog.Views(s.registry)
	if err != nil {
		return nil, err
	}
	return jsonContents(CatalogURI, views)
}

func (s *Server) readBundles(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	views, err := catalog.BundleViews(s.registry)
	if err != nil {
		return nil, err
	}
	return jsonContents(BundlesURI, views)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: "application/json", Text: string(data)},
	}, nil
}
