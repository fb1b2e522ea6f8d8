package catalog

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/zot/n4games/internal/config"
	"github.com/zot/n4games/internal/widget"
)

// AddedFunc receives the widget ids a reload registered.
type AddedFunc func(ids []string)

// HotLoader watches a manifest file and registers widgets added to it
// while the process runs. Existing registrations are never replaced; a
// changed declaration for a registered widget is logged and ignored.
type HotLoader struct {
	config   *config.Config
	path     string
	registry *widget.Registry
	watcher  *fsnotify.Watcher
	onAdded  AddedFunc

	// Debouncing
	pendingSince  time.Time
	pending       bool
	debounceMu    sync.Mutex
	debounceDelay time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

// NewHotLoader creates a hot loader for the manifest at path. The registry
// must accept late registration.
func NewHotLoader(cfg *config.Config, path string, reg *widget.Registry, onAdded AddedFunc) (*HotLoader, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	delay := cfg.Catalog.Debounce.Duration()
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}

	return &HotLoader{
		config:        cfg,
		path:          abs,
		registry:      reg,
		watcher:       watcher,
		onAdded:       onAdded,
		debounceDelay: delay,
		done:          make(chan struct{}),
	}, nil
}

// Start begins watching for file changes. The manifest's directory is
// watched rather than the file so editors that replace the file on save
// keep triggering reloads.
func (h *HotLoader) Start() error {
	dir := filepath.Dir(h.path)
	if err := h.watcher.Add(dir); err != nil {
		return err
	}

	go h.eventLoop()
	go h.debounceLoop()

	h.config.Log(1, "HotLoader: watching %s for changes", h.path)
	return nil
}

// Stop stops the hot loader. It is safe to call more than once.
func (h *HotLoader) Stop() error {
	var err error
	h.stopOnce.Do(func() {
		close(h.done)
		err = h.watcher.Close()
	})
	return err
}

// eventLoop processes file system events.
func (h *HotLoader) eventLoop() {
	for {
		select {
		case <-h.done:
			return
		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			h.handleEvent(event)
		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.config.Log(1, "HotLoader: watcher error: %v", err)
		}
	}
}

// handleEvent queues a reload when the manifest is written or recreated.
func (h *HotLoader) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != h.path {
		return
	}
	h.config.Log(3, "HotLoader: event %s on %s", event.Op, event.Name)

	if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
		h.debounceMu.Lock()
		h.pending = true
		h.pendingSince = time.Now()
		h.debounceMu.Unlock()
	}
}

// debounceLoop reloads once no event has arrived for debounceDelay.
func (h *HotLoader) debounceLoop() {
	ticker := time.NewTicker(h.debounceDelay / 2)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.debounceMu.Lock()
			ready := h.pending && time.Since(h.pendingSince) >= h.debounceDelay
			if ready {
				h.pending = false
			}
			h.debounceMu.Unlock()
			if ready {
				h.Reload()
			}
		}
	}
}

// Reload reads the manifest and registers any new entries. It returns the
// ids of the widgets it registered.
func (h *HotLoader) Reload() []string {
	m, err := Load(h.path)
	if err != nil {
		h.config.Log(0, "HotLoader: %v", err)
		return nil
	}

	added, err := m.Sync(h.registry)
	if err != nil {
		for _, e := range unwrapJoined(err) {
			h.config.Log(0, "HotLoader: %v", e)
		}
	}
	if len(added) == 0 {
		return nil
	}

	h.config.Log(1, "HotLoader: registered %v", added)
	if h.onAdded != nil {
		h.onAdded(added)
	}
	return added
}

func unwrapJoined(err error) []error {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return joined.Unwrap()
	}
	return []error{err}
}
