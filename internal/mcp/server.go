// Package mcp exposes the widget catalog to AI assistants over the Model
// Context Protocol.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/zot/n4games/internal/config"
	"github.com/zot/n4games/internal/widget"
)

// Version is reported to MCP clients during initialization.
const Version = "0.1.0"

// Server wraps an MCP server bound to one registry.
type Server struct {
	config   *config.Config
	registry *widget.Registry
	mcp      *server.MCPServer
}

// NewServer creates an MCP server with the catalog resource and tools
// registered.
func NewServer(cfg *config.Config, reg *widget.Registry) *Server {
	s := &Server{
		config:   cfg,
		registry: reg,
		mcp: server.NewMCPServer("n4games", Version,
			server.WithResourceCapabilities(false, false),
			server.WithToolCapabilities(false),
		),
	}
	s.registerResources()
	s.registerTools()
	return s
}

// MCP returns the underlying mcp-go server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// ServeStdio serves MCP on stdin/stdout until EOF.
func (s *Server) ServeStdio() error {
	s.config.Log(0, "Starting MCP server on stdio...")
	return server.ServeStdio(s.mcp)
}
