// Package catalog declares widget catalogs and applies them to a
// widget.Registry. Catalogs come from TOML, Lua or HCL manifests or from the
// built-in n4games declarations.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/zot/n4games/internal/locator"
	"github.com/zot/n4games/internal/widget"
)

// BundleEntry declares one aggregate script bundle.
type BundleEntry struct {
	Name    string          `toml:"name" json:"name"`
	Locator locator.Locator `toml:"locator" json:"locator"`
}

// WidgetEntry declares one widget.
type WidgetEntry struct {
	ID         string          `toml:"id" json:"id"`
	Script     locator.Locator `toml:"script" json:"script"`
	Bundle     string          `toml:"bundle" json:"bundle"`
	FormFactor string          `toml:"form_factor" json:"formFactor,omitempty"`
	Stylesheet locator.Locator `toml:"stylesheet" json:"stylesheet,omitempty"`
}

// Manifest is a list of bundle and widget declarations.
//
// TOML form:
//
//	[[bundle]]
//	name = "n4games"
//	locator = "module://n4games/rc/n4games.built.min.js"
//
//	[[widget]]
//	id = "tetris"
//	script = "module://n4games/rc/tetrisWidget.js"
//	bundle = "n4games"
type Manifest struct {
	Bundles []BundleEntry `toml:"bundle" json:"bundles"`
	Widgets []WidgetEntry `toml:"widget" json:"widgets"`
}

// DecodeTOML reads a TOML manifest.
func DecodeTOML(r io.Reader) (*Manifest, error) {
	var m Manifest
	md, err := toml.NewDecoder(r).Decode(&m)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown manifest keys: %s", strings.Join(keys, ", "))
	}
	return &m, nil
}

// Load reads a manifest file, choosing the format by extension.
func Load(path string) (*Manifest, error) {
	var (
		m   *Manifest
		err error
	)
	switch filepath.Ext(path) {
	case ".toml":
		m, err = loadTOMLFile(path)
	case ".lua":
		m, err = LoadLua(path)
	case ".hcl":
		m, err = LoadHCL(path)
	default:
		return nil, fmt.Errorf("manifest %s: unsupported format (want .toml, .lua or .hcl)", path)
	}
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return m, nil
}

func loadTOMLFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeTOML(f)
}

func (s WidgetEntry) options() ([]widget.Option, error) {
	ff, err := widget.ParseFormFactor(s.FormFactor)
	if err != nil {
		return nil, fmt.Errorf("widget %q: %w", s.ID, err)
	}
	opts := []widget.Option{widget.WithFormFactor(ff)}
	if !s.Stylesheet.IsZero() {
		opts = append(opts, widget.WithStylesheet(s.Stylesheet))
	}
	return opts, nil
}

// Apply registers every bundle and then every widget, stopping at the first
// error. Entries registered before the error stay registered.
func (m *Manifest) Apply(reg *widget.Registry) error {
	for _, b := range m.Bundles {
		if _, err := reg.RegisterBundle(b.Name, b.Locator); err != nil {
			return err
		}
	}
	for _, w := range m.Widgets {
		opts, err := w.options()
		if err != nil {
			return err
		}
		if _, err := reg.RegisterWidget(w.ID, w.Script, w.Bundle, opts...); err != nil {
			return err
		}
	}
	return nil
}

// Bootstrap applies manifests in order and marks the registry ready.
// The registry stays uninitialized when any manifest fails.
func Bootstrap(reg *widget.Registry, manifests ...*Manifest) error {
	for _, m := range manifests {
		if err := m.Apply(reg); err != nil {
			return err
		}
	}
	reg.MarkReady()
	return nil
}

// ErrConflict reports a redeclaration that differs from the registered entry.
var ErrConflict = errors.New("catalog: conflicting redeclaration")

// Sync registers the manifest entries that reg does not have yet. Entries
// already registered with the same declaration are skipped. It returns the
// ids of newly registered widgets along with every error encountered, so one
// bad entry does not block the rest. reg must be ready.
func (m *Manifest) Sync(reg *widget.Registry) ([]string, error) {
	var (
		added []string
		errs  []error
	)
	for _, b := range m.Bundles {
		existing, err := reg.Bundle(b.Name)
		switch {
		case err == nil:
			if existing.Locator() != b.Locator {
				errs = append(errs, fmt.Errorf("%w: bundle %q", ErrConflict, b.Name))
			}
		case errors.Is(err, widget.ErrNotFound):
			if _, err := reg.RegisterBundle(b.Name, b.Locator); err != nil {
				errs = append(errs, err)
			}
		default:
			return nil, err
		}
	}
	for _, w := range m.Widgets {
		existing, err := reg.Resolve(w.ID)
		switch {
		case err == nil:
			if !w.matches(existing) {
				errs = append(errs, fmt.Errorf("%w: widget %q", ErrConflict, w.ID))
			}
		case errors.Is(err, widget.ErrNotFound):
			opts, err := w.options()
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if _, err := reg.RegisterWidget(w.ID, w.Script, w.Bundle, opts...); err != nil {
				errs = append(errs, err)
				continue
			}
			added = append(added, w.ID)
		default:
			return nil, err
		}
	}
	return added, errors.Join(errs...)
}

func (s WidgetEntry) matches(w *widget.Widget) bool {
	ff, err := widget.ParseFormFactor(s.FormFactor)
	if err != nil {
		return false
	}
	return w.ScriptLocator() == s.Script &&
		w.Bundle().Name() == s.Bundle &&
		w.FormFactor() == ff &&
		w.Stylesheet() == s.Stylesheet
}
