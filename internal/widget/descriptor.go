package widget

import (
	"fmt"

	"github.com/zot/n4games/internal/locator"
)

// FormFactor is the layout class a host should give the widget.
type FormFactor string

const (
	FormFactorMax     FormFactor = "max"
	FormFactorMini    FormFactor = "mini"
	FormFactorCompact FormFactor = "compact"
)

// ParseFormFactor parses a manifest form factor. The empty string means max.
func ParseFormFactor(s string) (FormFactor, error) {
	switch FormFactor(s) {
	case "":
		return FormFactorMax, nil
	case FormFactorMax, FormFactorMini, FormFactorCompact:
		return FormFactor(s), nil
	}
	return "", fmt.Errorf("unknown form factor %q", s)
}

// Bundle names a pre-built aggregate script shared by a family of widgets.
// Bundles are created by Registry.RegisterBundle and never change.
type Bundle struct {
	name    string
	locator locator.Locator
}

// Name returns the bundle's unique name.
func (b *Bundle) Name() string { return b.name }

// Locator returns the locator of the built aggregate script.
func (b *Bundle) Locator() locator.Locator { return b.locator }

// Widget binds a widget identity to its own script and to the bundle that
// must load before it. Widgets are created by Registry.RegisterWidget and
// never change.
type Widget struct {
	id         string
	script     locator.Locator
	bundle     *Bundle
	formFactor FormFactor
	stylesheet locator.Locator
}

// ID returns the widget identity.
func (w *Widget) ID() string { return w.id }

// ScriptLocator returns the locator of the widget's own script.
func (w *Widget) ScriptLocator() locator.Locator { return w.script }

// Bundle returns the bundle the widget's script depends on.
func (w *Widget) Bundle() *Bundle { return w.bundle }

// FormFactor returns the widget's layout class.
func (w *Widget) FormFactor() FormFactor { return w.formFactor }

// Stylesheet returns the widget's stylesheet locator. It is the zero
// Locator when the widget declares none.
func (w *Widget) Stylesheet() locator.Locator { return w.stylesheet }

// Option configures optional widget attributes at registration.
type Option func(*Widget)

// WithFormFactor overrides the default FormFactorMax.
func WithFormFactor(f FormFactor) Option {
	return func(w *Widget) { w.formFactor = f }
}

// WithStylesheet attaches a stylesheet locator.
func WithStylesheet(l locator.Locator) Option {
	return func(w *Widget) { w.stylesheet = l }
}
