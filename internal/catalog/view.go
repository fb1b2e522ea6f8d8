package catalog

import "github.com/zot/n4games/internal/widget"

// WidgetView is the wire form of a widget descriptor: everything a host
// needs to load the widget.
type WidgetView struct {
	ID           string `json:"id"`
	Script       string `json:"script"`
	ModuleID     string `json:"moduleId"`
	Bundle       string `json:"bundle"`
	BundleScript string `json:"bundleScript"`
	FormFactor   string `json:"formFactor"`
	Stylesheet   string `json:"stylesheet,omitempty"`
}

// BundleView is the wire form of a bundle descriptor.
type BundleView struct {
	Name    string `json:"name"`
	Locator string `json:"locator"`
}

// ViewOf builds the wire form of w.
func ViewOf(w *widget.Widget) WidgetView {
	return WidgetView{
		ID:           w.ID(),
		Script:       w.ScriptLocator().String(),
		ModuleID:     w.ScriptLocator().ModuleID(),
		Bundle:       w.Bundle().Name(),
		BundleScript: w.Bundle().Locator().String(),
		FormFactor:   string(w.FormFactor()),
		Stylesheet:   w.Stylesheet().String(),
	}
}

// BundleViewOf builds the wire form of b.
func BundleViewOf(b *widget.Bundle) BundleView {
	return BundleView{Name: b.Name(), Locator: b.Locator().String()}
}

// Views returns the wire form of every widget in reg, sorted by id.
func Views(reg *widget.Registry) ([]WidgetView, error) {
	widgets, err := reg.Widgets()
	if err != nil {
		return nil, err
	}
	views := make([]WidgetView, len(widgets))
	for i, w := range widgets {
		views[i] = ViewOf(w)
	}
	return views, nil
}

// ViewsOf returns the wire form of the named widgets, skipping unknown ids.
func ViewsOf(reg *widget.Registry, ids []string) []WidgetView {
	views := make([]WidgetView, 0, len(ids))
	for _, id := range ids {
		if w, err := reg.Resolve(id); err == nil {
			views = append(views, ViewOf(w))
		}
	}
	return views
}

// BundleViews returns the wire form of every bundle in reg, sorted by name.
func BundleViews(reg *widget.Registry) ([]BundleView, error) {
	bundles, err := reg.Bundles()
	if err != nil {
		return nil, err
	}
	views := make([]BundleView, len(bundles))
	for i, b := range bundles {
		views[i] = BundleViewOf(b)
	}
	return views, nil
}
