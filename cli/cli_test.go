package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zot/n4games/internal/catalog"
)

// capture runs the CLI with output redirected and returns exit code, stdout
// and stderr.
func capture(t *testing.T, args []string, hooks *Hooks) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	oldOut, oldErr := stdout, stderr
	stdout, stderr = &out, &errOut
	defer func() { stdout, stderr = oldOut, oldErr }()

	code := RunWithHooks(args, hooks)
	return code, out.String(), errOut.String()
}

func writeManifest(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write manifest: %v", err)
	}
	return path
}

func TestListDefaultCatalog(t *testing.T) {
	code, out, errOut := capture(t, []string{"list"}, nil)
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, errOut)
	}
	want := "asteroid\ngame2048\nmissileCommand\nn4games\ntetris\n"
	if out != want {
		t.Errorf("list output = %q, want %q", out, want)
	}
}

func TestResolve(t *testing.T) {
	code, out, errOut := capture(t, []string{"resolve", "tetris"}, nil)
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, errOut)
	}
	var view catalog.WidgetView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("bad JSON %q: %v", out, err)
	}
	if view.Script != "module://n4games/rc/tetrisWidget.js" {
		t.Errorf("script = %q", view.Script)
	}
	if view.Bundle != "n4games" {
		t.Errorf("bundle = %q", view.Bundle)
	}
}

func TestResolveErrors(t *testing.T) {
	code, _, errOut := capture(t, []string{"resolve", "pacman"}, nil)
	if code != 1 {
		t.Errorf("unknown id exit code = %d, want 1", code)
	}
	if !strings.Contains(errOut, "pacman") {
		t.Errorf("stderr should name the id: %q", errOut)
	}

	code, _, errOut = capture(t, []string{"resolve"}, nil)
	if code != 1 || !strings.Contains(errOut, "Usage") {
		t.Errorf("missing id: code %d, stderr %q", code, errOut)
	}
}

func TestCheckManifest(t *testing.T) {
	path := writeManifest(t, "arcade.toml", `
[[bundle]]
name = "arcade"
locator = "module://arcade/rc/arcade.built.min.js"

[[widget]]
id = "snake"
script = "module://arcade/rc/snakeWidget.js"
bundle = "arcade"
`)
	code, out, errOut := capture(t, []string{"check", "--manifest", path}, nil)
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, errOut)
	}
	if !strings.Contains(out, "1 bundles, 1 widgets") {
		t.Errorf("check output = %q", out)
	}
}

func TestCheckBrokenManifest(t *testing.T) {
	path := writeManifest(t, "broken.toml", `
[[widget]]
id = "snake"
script = "module://arcade/rc/snakeWidget.js"
bundle = "arcade"
`)
	code, _, errOut := capture(t, []string{"check", "--manifest", path}, nil)
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.HasPrefix(errOut, "Error: ") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestBundles(t *testing.T) {
	code, out, _ := capture(t, []string{"bundles"}, nil)
	if code != 0 {
		t.Fatalf("exit code %d", code)
	}
	if !strings.Contains(out, "module://n4games/rc/n4games.built.min.js") {
		t.Errorf("bundles output = %q", out)
	}
}

func TestHooks(t *testing.T) {
	hooks := &Hooks{
		BeforeDispatch: func(command string, args []string) (bool, int) {
			return command == "custom", 7
		},
		CustomHelp:    func() string { return "custom help" },
		CustomVersion: func() string { return "custom version" },
	}

	if code, _, _ := capture(t, []string{"custom"}, hooks); code != 7 {
		t.Errorf("hooked command exit code = %d, want 7", code)
	}
	if _, out, _ := capture(t, []string{"help"}, hooks); !strings.Contains(out, "custom help") {
		t.Errorf("help missing custom text: %q", out)
	}
	if _, out, _ := capture(t, []string{"version"}, hooks); !strings.Contains(out, "custom version") || !strings.Contains(out, Version) {
		t.Errorf("version output = %q", out)
	}
}

func TestUnknownCommand(t *testing.T) {
	code, out, errOut := capture(t, []string{"frobnicate"}, nil)
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(errOut, "Unknown command: frobnicate") {
		t.Errorf("stderr = %q", errOut)
	}
	if !strings.Contains(out, "Usage:") {
		t.Error("help should be printed")
	}
}
