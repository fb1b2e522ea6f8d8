package catalog

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"github.com/zot/n4games/internal/locator"
)

// Lua manifests declare the catalog by calling two globals:
//
//	bundle("n4games", "module://n4games/rc/n4games.built.min.js")
//	for _, id in ipairs({"asteroid", "tetris"}) do
//	  widget(id, "module://n4games/rc/" .. id .. "Widget.js", "n4games",
//	         {stylesheet = "module://n4games/rc/" .. id .. ".css"})
//	end
//
// The optional fourth argument of widget accepts form_factor and stylesheet.

// LoadLua runs a Lua manifest file.
func LoadLua(path string) (*Manifest, error) {
	return runLua(func(L *lua.LState) error { return L.DoFile(path) })
}

// DecodeLua runs Lua manifest source.
func DecodeLua(src string) (*Manifest, error) {
	return runLua(func(L *lua.LState) error { return L.DoString(src) })
}

// luaManifest collects declarations made by a running script.
type luaManifest struct {
	manifest Manifest
	err      error // first declaration error; reported instead of the Lua trace
}

func (lm *luaManifest) fail(L *lua.LState, err error) {
	if lm.err == nil {
		lm.err = err
	}
	L.RaiseError("%s", err.Error())
}

func (lm *luaManifest) parseLocator(L *lua.LState, raw string) locator.Locator {
	loc, err := locator.Make(raw)
	if err != nil {
		lm.fail(L, err)
	}
	return loc
}

func (lm *luaManifest) bundle(L *lua.LState) int {
	name := L.CheckString(1)
	loc := lm.parseLocator(L, L.CheckString(2))
	lm.manifest.Bundles = append(lm.manifest.Bundles, BundleEntry{Name: name, Locator: loc})
	return 0
}

func (lm *luaManifest) widget(L *lua.LState) int {
	entry := WidgetEntry{
		ID:     L.CheckString(1),
		Script: lm.parseLocator(L, L.CheckString(2)),
		Bundle: L.CheckString(3),
	}
	if opts := L.OptTable(4, nil); opts != nil {
		if v, ok := opts.RawGetString("form_factor").(lua.LString); ok {
			entry.FormFactor = string(v)
		}
		if v, ok := opts.RawGetString("stylesheet").(lua.LString); ok {
			entry.Stylesheet = lm.parseLocator(L, string(v))
		}
	}
	lm.manifest.Widgets = append(lm.manifest.Widgets, entry)
	return 0
}

func runLua(run func(*lua.LState) error) (*Manifest, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	// Manifests only need the core libraries; no io or os.
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	lm := &luaManifest{}
	L.SetGlobal("bundle", L.NewFunction(lm.bundle))
	L.SetGlobal("widget", L.NewFunction(lm.widget))

	if err := run(L); err != nil {
		if lm.err != nil {
			return nil, lm.err
		}
		return nil, fmt.Errorf("lua: %w", err)
	}
	// pcall can swallow the raised error; the declaration is still invalid.
	if lm.err != nil {
		return nil, lm.err
	}
	return &lm.manifest, nil
}
