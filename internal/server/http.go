package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/zot/n4games/internal/catalog"
	"github.com/zot/n4games/internal/config"
	"github.com/zot/n4games/internal/widget"
)

// HTTPEndpoint serves the catalog as JSON and the live catalog feed.
type HTTPEndpoint struct {
	config   *config.Config
	registry *widget.Registry
	feed     *CatalogFeed
	mux      *http.ServeMux
}

// NewHTTPEndpoint creates a new HTTP endpoint. feed may be nil to disable
// the WebSocket route.
func NewHTTPEndpoint(cfg *config.Config, reg *widget.Registry, feed *CatalogFeed) *HTTPEndpoint {
	h := &HTTPEndpoint{
		config:   cfg,
		registry: reg,
		feed:     feed,
		mux:      http.NewServeMux(),
	}
	h.setupRoutes()
	return h
}

// setupRoutes configures HTTP routes.
func (h *HTTPEndpoint) setupRoutes() {
	h.mux.HandleFunc("GET /api/widgets", h.handleWidgets)
	h.mux.HandleFunc("GET /api/widgets/{id}", h.handleWidget)
	h.mux.HandleFunc("GET /api/bundles", h.handleBundles)
	h.mux.HandleFunc("GET /api/bundles/{name}", h.handleBundle)
	if h.feed != nil {
		h.mux.Handle("GET /ws/catalog", h.feed)
	}
}

// ServeHTTP implements http.Handler.
func (h *HTTPEndpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.config.Log(2, "HTTP %s %s", r.Method, r.URL.Path)
	h.mux.ServeHTTP(w, r)
}

func (h *HTTPEndpoint) handleWidgets(w http.ResponseWriter, r *http.Request) {
	views, err := catalog.Views(h.registry)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *HTTPEndpoint) handleWidget(w http.ResponseWriter, r *http.Request) {
	wd, err := h.registry.Resolve(r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, catalog.ViewOf(wd))
}

func (h *HTTPEndpoint) handleBundles(w http.ResponseWriter, r *http.Request) {
	views, err := catalog.BundleViews(h.registry)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *HTTPEndpoint) handleBundle(w http.ResponseWriter, r *http.Request) {
	b, err := h.registry.Bundle(r.PathValue("name"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, catalog.BundleViewOf(b))
}

// errorResponse is the JSON body of every error reply.
type errorResponse struct {
	Error string `json:"error"`
}

func (h *HTTPEndpoint) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, widget.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, widget.ErrNotInitialized):
		status = http.StatusServiceUnavailable
	default:
		h.config.Log(0, "HTTP error: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
