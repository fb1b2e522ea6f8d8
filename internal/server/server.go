// Package server serves the widget catalog over HTTP and WebSocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/zot/n4games/internal/catalog"
	"github.com/zot/n4games/internal/config"
	"github.com/zot/n4games/internal/widget"
)

// Server is the catalog server.
type Server struct {
	config       *config.Config
	registry     *widget.Registry
	httpServer   *http.Server
	httpEndpoint *HTTPEndpoint
	feed         *CatalogFeed
	hotLoader    *catalog.HotLoader
	serveErr     chan error
}

// New creates a new server over a bootstrapped registry.
func New(cfg *config.Config, reg *widget.Registry) *Server {
	s := &Server{
		config:   cfg,
		registry: reg,
		feed:     NewCatalogFeed(cfg, reg),
		serveErr: make(chan error, 1),
	}
	s.httpEndpoint = NewHTTPEndpoint(cfg, reg, s.feed)
	return s
}

// Handler returns the HTTP handler, for embedding in a host's own server.
func (s *Server) Handler() http.Handler {
	return s.httpEndpoint
}

// Feed returns the live catalog feed.
func (s *Server) Feed() *CatalogFeed {
	return s.feed
}

// Start starts the server on the configured port and blocks until it stops.
func (s *Server) Start() error {
	if _, err := s.StartHTTP(s.config.Server.Port); err != nil {
		return err
	}
	return s.Wait()
}

// Wait blocks until the HTTP server started by StartHTTP stops. It returns
// nil after a clean Shutdown.
func (s *Server) Wait() error {
	return <-s.serveErr
}

// StartHTTP starts the HTTP server on the specified port, then the hot
// loader when configured, and returns the base URL. Port 0 picks a free port.
func (s *Server) StartHTTP(port int) (string, error) {
	addr := net.JoinHostPort(s.config.Server.Host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.httpEndpoint,
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	if err := s.startHotLoader(); err != nil {
		listener.Close()
		return "", fmt.Errorf("failed to start hot loader: %w", err)
	}

	if port == 0 {
		_, portStr, _ := net.SplitHostPort(listener.Addr().String())
		s.config.Server.Port, _ = strconv.Atoi(portStr)
	}

	go func() {
		s.config.Log(0, "HTTP server listening on %s", listener.Addr())
		err := s.httpServer.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		} else if err != nil {
			s.config.Log(0, "HTTP server error: %v", err)
		}
		s.serveErr <- err
	}()

	host := s.config.Server.Host
	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}

	return fmt.Sprintf("http://%s:%d", host, s.config.Server.Port), nil
}

func (s *Server) startHotLoader() error {
	if !s.config.Catalog.Watch || s.config.Catalog.Manifest == "" || s.hotLoader != nil {
		return nil
	}
	h, err := catalog.NewHotLoader(s.config, s.config.Catalog.Manifest, s.registry, s.feed.Broadcast)
	if err != nil {
		return err
	}
	if err := h.Start(); err != nil {
		h.Stop()
		return err
	}
	s.hotLoader = h
	return nil
}

// Shutdown stops the hot loader, disconnects feed clients and shuts down
// the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.hotLoader != nil {
		s.hotLoader.Stop()
	}

	s.feed.Close()

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}
