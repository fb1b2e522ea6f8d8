package catalog

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zot/n4games/internal/locator"
)

// HCL manifests use labelled blocks:
//
//	bundle "n4games" {
//	  locator = "module://n4games/rc/n4games.built.min.js"
//	}
//
//	widget "tetris" {
//	  script     = "module://n4games/rc/tetrisWidget.js"
//	  bundle     = "n4games"
//	  stylesheet = "module://n4games/rc/tetris.css"
//	}

type hclManifestFile struct {
	Bundles []*hclBundle `hcl:"bundle,block"`
	Widgets []*hclWidget `hcl:"widget,block"`
}

type hclBundle struct {
	Name    string `hcl:"name,label"`
	Locator string `hcl:"locator"`
}

type hclWidget struct {
	ID         string `hcl:"id,label"`
	Script     string `hcl:"script"`
	Bundle     string `hcl:"bundle"`
	FormFactor string `hcl:"form_factor,optional"`
	Stylesheet string `hcl:"stylesheet,optional"`
}

// LoadHCL reads an HCL manifest file.
func LoadHCL(path string) (*Manifest, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeHCL(src, path)
}

// DecodeHCL parses HCL manifest source. filename is used in diagnostics.
func DecodeHCL(src []byte, filename string) (*Manifest, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %w", diags)
	}

	var parsed hclManifestFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %w", diags)
	}

	m := &Manifest{}
	for _, b := range parsed.Bundles {
		loc, err := locator.Make(b.Locator)
		if err != nil {
			return nil, fmt.Errorf("bundle %q: %w", b.Name, err)
		}
		m.Bundles = append(m.Bundles, BundleEntry{Name: b.Name, Locator: loc})
	}
	for _, w := range parsed.Widgets {
		entry := WidgetEntry{ID: w.ID, Bundle: w.Bundle, FormFactor: w.FormFactor}
		var err error
		if entry.Script, err = locator.Make(w.Script); err != nil {
			return nil, fmt.Errorf("widget %q: %w", w.ID, err)
		}
		if w.Stylesheet != "" {
			if entry.Stylesheet, err = locator.Make(w.Stylesheet); err != nil {
				return nil, fmt.Errorf("widget %q stylesheet: %w", w.ID, err)
			}
		}
		m.Widgets = append(m.Widgets, entry)
	}
	return m, nil
}
