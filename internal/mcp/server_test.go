package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/zot/n4games/internal/catalog"
	"github.com/zot/n4games/internal/config"
	"github.com/zot/n4games/internal/widget"
)

func newTestServer(t *testing.T, ready bool) *Server {
	t.Helper()
	reg := widget.New()
	if ready {
		if err := catalog.Bootstrap(reg, catalog.Default()); err != nil {
			t.Fatalf("Bootstrap failed: %v", err)
		}
	}
	return NewServer(config.DefaultConfig(), reg)
}

func callTool(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("result has %d content items", len(res.Content))
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", res.Content[0])
	}
	return text.Text
}

func TestListWidgetsTool(t *testing.T) {
	s := newTestServer(t, true)
	res, err := s.handleListWidgets(context.Background(), callTool("list_widgets", nil))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}

	var ids []string
	if err := json.Unmarshal([]byte(resultText(t, res)), &ids); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	want := []string{"asteroid", "game2048", "missileCommand", "n4games", "tetris"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveWidgetTool(t *testing.T) {
	s := newTestServer(t, true)
	res, err := s.handleResolveWidget(context.Background(), callTool("resolve_widget", map[string]any{"id": "missileCommand"}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}

	var view catalog.WidgetView
	if err := json.Unmarshal([]byte(resultText(t, res)), &view); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if view.Script != "module://n4games/rc/missileCommandWidget.js" {
		t.Errorf("script = %q", view.Script)
	}
	if view.BundleScript != "module://n4games/rc/n4games.built.min.js" {
		t.Errorf("bundle script = %q", view.BundleScript)
	}
}

func TestResolveWidgetToolErrors(t *testing.T) {
	s := newTestServer(t, true)

	for name, args := range map[string]map[string]any{
		"missing id": nil,
		"unknown id": {"id": "pacman"},
	} {
		res, err := s.handleResolveWidget(context.Background(), callTool("resolve_widget", args))
		if err != nil {
			t.Fatalf("%s: handler error: %v", name, err)
		}
		if !res.IsError {
			t.Errorf("%s: expected a tool error", name)
		}
	}
}

func TestToolsBeforeReady(t *testing.T) {
	s := newTestServer(t, false)
	res, _ := s.handleListWidgets(context.Background(), callTool("list_widgets", nil))
	if !res.IsError {
		t.Error("list_widgets should report an error before the registry is ready")
	}
	res, _ = s.handleListBundles(context.Background(), callTool("list_bundles", nil))
	if !res.IsError {
		t.Error("list_bundles should report an error before the registry is ready")
	}
}

func TestCatalogResource(t *testing.T) {
	s := newTestServer(t, true)
	contents, err := s.readCatalog(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("readCatalog failed: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("got %d contents", len(contents))
	}
	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("contents is %T", contents[0])
	}
	if text.URI != CatalogURI || text.MIMEType != "application/json" {
		t.Errorf("contents = %s %s", text.URI, text.MIMEType)
	}
	var views []catalog.WidgetView
	if err := json.Unmarshal([]byte(text.Text), &views); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(views) != 5 {
		t.Errorf("got %d widgets, want 5", len(views))
	}

	bundles, err := s.readBundles(context.Background(), mcp.ReadResourceRequest{})
	if err != nil || len(bundles) != 1 {
		t.Errorf("readBundles = %v, %v", bundles, err)
	}
}

func TestCatalogResourceBeforeReady(t *testing.T) {
	s := newTestServer(t, false)
	if _, err := s.readCatalog(context.Background(), mcp.ReadResourceRequest{}); !errors.Is(err, widget.ErrNotInitialized) {
		t.Errorf("error = %v, want ErrNotInitialized", err)
	}
}
