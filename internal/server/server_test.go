package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zot/n4games/internal/catalog"
	"github.com/zot/n4games/internal/widget"
)

func TestServerStartHTTP(t *testing.T) {
	srv := New(testConfig(), readyRegistry(t))
	url, err := srv.StartHTTP(0)
	if err != nil {
		t.Fatalf("StartHTTP failed: %v", err)
	}
	defer srv.Shutdown(context.Background())

	resp, err := http.Get(url + "/api/widgets/game2048")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	var view catalog.WidgetView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if view.Script != "module://n4games/rc/game2048Widget.js" {
		t.Errorf("script = %q", view.Script)
	}
}

func TestServerWaitReturnsAfterShutdown(t *testing.T) {
	srv := New(testConfig(), readyRegistry(t))
	if _, err := srv.StartHTTP(0); err != nil {
		t.Fatalf("StartHTTP failed: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- srv.Wait() }()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Wait returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Wait did not return after Shutdown")
	}
}

func TestServerHotLoadBroadcasts(t *testing.T) {
	manifest := filepath.Join(t.TempDir(), "widgets.toml")
	base := `
[[bundle]]
name = "n4games"
locator = "module://n4games/rc/n4games.built.min.js"

[[widget]]
id = "tetris"
script = "module://n4games/rc/tetrisWidget.js"
bundle = "n4games"
`
	if err := os.WriteFile(manifest, []byte(base), 0644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	cfg := testConfig()
	cfg.Catalog.Manifest = manifest
	cfg.Catalog.Watch = true

	m, err := catalog.Load(manifest)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	reg := widget.New(widget.WithLateRegistration())
	if err := catalog.Bootstrap(reg, m); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}

	srv := New(cfg, reg)
	if _, err := srv.StartHTTP(0); err != nil {
		t.Fatalf("StartHTTP failed: %v", err)
	}
	defer srv.Shutdown(context.Background())

	// Give the watcher a moment to arm
	time.Sleep(50 * time.Millisecond)

	os.WriteFile(manifest, []byte(base+`
[[widget]]
id = "galaga"
script = "module://n4games/rc/galagaWidget.js"
bundle = "n4games"
`), 0644)

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := reg.Resolve("galaga"); err == nil {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("galaga was not hot-loaded")
}

func TestServerListenFailureLeavesNoHotLoader(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer taken.Close()
	port := taken.Addr().(*net.TCPAddr).Port

	manifest := filepath.Join(t.TempDir(), "widgets.toml")
	if err := os.WriteFile(manifest, []byte(""), 0644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	cfg := testConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Catalog.Manifest = manifest
	cfg.Catalog.Watch = true

	srv := New(cfg, readyRegistry(t))
	if _, err := srv.StartHTTP(port); err == nil {
		srv.Shutdown(context.Background())
		t.Fatal("StartHTTP should fail on an occupied port")
	}
	if srv.hotLoader != nil {
		srv.hotLoader.Stop()
		t.Error("hot loader left running after listen failure")
	}
}
