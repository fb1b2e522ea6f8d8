package locator

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestMake(t *testing.T) {
	tests := []struct {
		raw      string
		wantPath string
	}{
		{"module://n4games/rc/tetrisWidget.js", "n4games/rc/tetrisWidget.js"},
		{"n4games/rc/n4games.built.min.js", "n4games/rc/n4games.built.min.js"},
		{"module://n4games/rc/N4gamesWidget.js", "n4games/rc/N4gamesWidget.js"},
	}
	for _, tt := range tests {
		l, err := Make(tt.raw)
		if err != nil {
			t.Fatalf("Make(%q) failed: %v", tt.raw, err)
		}
		if l.Path() != tt.wantPath {
			t.Errorf("Make(%q).Path() = %q, want %q", tt.raw, l.Path(), tt.wantPath)
		}
		if l.Scheme() != Scheme {
			t.Errorf("Make(%q).Scheme() = %q, want %q", tt.raw, l.Scheme(), Scheme)
		}
	}
}

func TestMakeInvalid(t *testing.T) {
	bad := []string{
		"",
		"module://",
		"http://n4games/rc/x.js",
		"module://n4games/module://x.js",
		"/abs/path.js",
		"module:///abs.js",
		"n4games//rc.js",
		"n4games/../secret.js",
		"n4games/./x.js",
		`n4games\rc\x.js`,
		"n4games/rc/my widget.js",
		"n4games/rc/\xffwidget.js",
	}
	for _, raw := range bad {
		if _, err := Make(raw); !errors.Is(err, ErrInvalidLocator) {
			t.Errorf("Make(%q) error = %v, want ErrInvalidLocator", raw, err)
		}
	}
}

func TestEquality(t *testing.T) {
	a := MustMake("module://n4games/rc/tetrisWidget.js")
	b := MustMake("n4games/rc/tetrisWidget.js")
	c := MustMake("module://n4games/rc/asteroidWidget.js")

	if a != b {
		t.Error("locators with the same path should be equal")
	}
	if a == c {
		t.Error("locators with different paths should differ")
	}

	seen := map[Locator]bool{a: true}
	if !seen[b] {
		t.Error("equal locators should hash the same")
	}
}

func TestAccessors(t *testing.T) {
	l := MustMake("module://n4games/rc/tetrisWidget.js")

	if got := l.String(); got != "module://n4games/rc/tetrisWidget.js" {
		t.Errorf("String() = %q", got)
	}
	if got := l.Module(); got != "n4games" {
		t.Errorf("Module() = %q", got)
	}
	if got := l.Base(); got != "tetrisWidget.js" {
		t.Errorf("Base() = %q", got)
	}
	if got := l.ModuleID(); got != "nmodule/n4games/rc/tetrisWidget" {
		t.Errorf("ModuleID() = %q", got)
	}

	var zero Locator
	if !zero.IsZero() || zero.String() != "" || zero.ModuleID() != "" || zero.Base() != "" {
		t.Error("zero locator should render empty")
	}
}

func TestMustMakePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustMake should panic on invalid input")
		}
	}()
	MustMake("")
}

func TestTextMarshaling(t *testing.T) {
	type doc struct {
		Script Locator `json:"script"`
		Style  Locator `json:"style"`
	}

	in := doc{Script: MustMake("module://n4games/rc/snakeWidget.js")}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"script":"module://n4games/rc/snakeWidget.js","style":""}` {
		t.Errorf("Marshal = %s", data)
	}

	var out doc
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if out != in {
		t.Errorf("Unmarshal = %+v, want %+v", out, in)
	}

	if err := json.Unmarshal([]byte(`{"script":"ftp://x/y.js"}`), &out); !errors.Is(err, ErrInvalidLocator) {
		t.Errorf("Unmarshal bad locator error = %v, want ErrInvalidLocator", err)
	}
}
