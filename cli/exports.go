// This file re-exports internal packages for embedding the catalog in
// wrapper projects.
package cli

import (
	"github.com/zot/n4games/internal/catalog"
	"github.com/zot/n4games/internal/locator"
	"github.com/zot/n4games/internal/mcp"
	"github.com/zot/n4games/internal/server"
	"github.com/zot/n4games/internal/widget"
)

// Re-export registry types
type (
	Registry   = widget.Registry
	Widget     = widget.Widget
	Bundle     = widget.Bundle
	FormFactor = widget.FormFactor
	Locator    = locator.Locator
	Manifest   = catalog.Manifest
	WidgetView = catalog.WidgetView
	Server     = server.Server
	MCPServer  = mcp.Server
)

// Re-export constructors
var (
	NewRegistry    = widget.New
	MakeLocator    = locator.Make
	LoadManifest   = catalog.Load
	Bootstrap      = catalog.Bootstrap
	DefaultWidgets = catalog.Default
	NewServer      = server.New
	NewMCPServer   = mcp.NewServer
)
