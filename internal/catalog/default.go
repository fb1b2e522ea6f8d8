package catalog

import "github.com/zot/n4games/internal/locator"

// BundleName is the shared bundle every built-in widget depends on.
const BundleName = "n4games"

func game(id, css string) WidgetEntry {
	entry := WidgetEntry{
		ID:     id,
		Script: locator.MustMake("module://n4games/rc/" + id + "Widget.js"),
		Bundle: BundleName,
	}
	if css != "" {
		entry.Stylesheet = locator.MustMake("module://n4games/rc/" + css + ".css")
	}
	return entry
}

// Default returns the built-in n4games catalog. Each call returns a fresh
// Manifest.
func Default() *Manifest {
	return &Manifest{
		Bundles: []BundleEntry{
			{Name: BundleName, Locator: locator.MustMake("module://n4games/rc/n4games.built.min.js")},
		},
		Widgets: []WidgetEntry{
			game("asteroid", "asteroid"),
			game("game2048", "game2048"),
			game("missileCommand", "missileCommand"),
			{
				ID:     "n4games",
				Script: locator.MustMake("module://n4games/rc/N4gamesWidget.js"),
				Bundle: BundleName,
			},
			game("tetris", "tetris"),
		},
	}
}
