package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/zot/n4games/internal/catalog"
	"github.com/zot/n4games/internal/config"
	"github.com/zot/n4games/internal/widget"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Hosts embed the catalog from their own origins
	},
}

// Feed message types.
const (
	MsgCatalog = "catalog" // full widget list, sent once on connect
	MsgAdded   = "added"   // widgets registered after connect
	MsgError   = "error"
)

// FeedMessage is one message on the catalog feed.
type FeedMessage struct {
	Type    string               `json:"type"`
	Widgets []catalog.WidgetView `json:"widgets,omitempty"`
	Error   string               `json:"error,omitempty"`
}

// feedConn serializes writes to one connection; gorilla allows a single
// concurrent writer.
type feedConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *feedConn) send(msg FeedMessage) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(msg)
}

// CatalogFeed pushes the catalog and later additions to WebSocket clients.
type CatalogFeed struct {
	config   *config.Config
	registry *widget.Registry
	conns    map[*feedConn]struct{}
	closed   bool
	mu       sync.Mutex
}

// NewCatalogFeed creates a feed over reg.
func NewCatalogFeed(cfg *config.Config, reg *widget.Registry) *CatalogFeed {
	return &CatalogFeed{
		config:   cfg,
		registry: reg,
		conns:    make(map[*feedConn]struct{}),
	}
}

// ServeHTTP upgrades the request and streams feed messages until the client
// disconnects.
func (f *CatalogFeed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.config.Log(0, "WebSocket upgrade failed: %v", err)
		return
	}
	fc := &feedConn{conn: conn}
	defer conn.Close()

	// Register before taking the snapshot, holding the write lock so any
	// broadcast queues behind the catalog message. A widget added in that
	// window may be reported twice but is never missed.
	fc.writeMu.Lock()
	if !f.add(fc) {
		fc.writeMu.Unlock()
		return
	}
	defer f.remove(fc)

	msg := FeedMessage{Type: MsgCatalog}
	views, err := catalog.Views(f.registry)
	if err != nil {
		msg = FeedMessage{Type: MsgError, Error: err.Error()}
	} else {
		msg.Widgets = views
	}
	err = conn.WriteJSON(msg)
	fc.writeMu.Unlock()
	if err != nil || msg.Type == MsgError {
		return
	}
	f.config.Log(1, "Catalog feed connected: %s", r.RemoteAddr)

	// Clients never send; reading detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			f.config.Log(1, "Catalog feed disconnected: %s", r.RemoteAddr)
			return
		}
	}
}

func (f *CatalogFeed) add(fc *feedConn) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	f.conns[fc] = struct{}{}
	return true
}

func (f *CatalogFeed) remove(fc *feedConn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.conns, fc)
}

func (f *CatalogFeed) snapshot() []*feedConn {
	f.mu.Lock()
	defer f.mu.Unlock()
	conns := make([]*feedConn, 0, len(f.conns))
	for fc := range f.conns {
		conns = append(conns, fc)
	}
	return conns
}

// Broadcast sends newly registered widgets to every client.
func (f *CatalogFeed) Broadcast(ids []string) {
	views := catalog.ViewsOf(f.registry, ids)
	if len(views) == 0 {
		return
	}
	msg := FeedMessage{Type: MsgAdded, Widgets: views}
	for _, fc := range f.snapshot() {
		if err := fc.send(msg); err != nil {
			f.config.Log(1, "Catalog feed send failed: %v", err)
			fc.conn.Close()
		}
	}
}

// Count returns the number of connected clients.
func (f *CatalogFeed) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.conns)
}

// Close disconnects every client and refuses new ones.
func (f *CatalogFeed) Close() {
	f.mu.Lock()
	f.closed = true
	conns := f.conns
	f.conns = make(map[*feedConn]struct{})
	f.mu.Unlock()

	for fc := range conns {
		fc.writeMu.Lock()
		fc.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		fc.writeMu.Unlock()
		fc.conn.Close()
	}
}
