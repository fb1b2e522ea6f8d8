// Package locator implements module resource locators, the
// "module://<module>/<path>" strings that name script assets.
package locator

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Scheme is the only scheme a Locator carries.
const Scheme = "module"

const separator = "://"

// ErrInvalidLocator reports an empty or malformed resource path.
var ErrInvalidLocator = errors.New("invalid resource locator")

// Locator is an immutable reference to a loadable script asset.
// Two locators are equal when their scheme and path are equal, so a
// Locator can be compared with == and used as a map key.
type Locator struct {
	scheme string
	path   string
}

// Make parses raw as either "module://<path>" or a bare relative path.
func Make(raw string) (Locator, error) {
	p := raw
	if i := strings.Index(raw, separator); i >= 0 {
		if raw[:i] != Scheme {
			return Locator{}, fmt.Errorf("%w: unsupported scheme %q in %q", ErrInvalidLocator, raw[:i], raw)
		}
		p = raw[i+len(separator):]
	}
	if err := validatePath(p); err != nil {
		return Locator{}, fmt.Errorf("%w: %q: %v", ErrInvalidLocator, raw, err)
	}
	return Locator{scheme: Scheme, path: p}, nil
}

// MustMake is Make for package-level declarations. It panics on error.
func MustMake(raw string) Locator {
	l, err := Make(raw)
	if err != nil {
		panic(err)
	}
	return l
}

func validatePath(p string) error {
	if p == "" {
		return errors.New("empty path")
	}
	if strings.Contains(p, separator) {
		return errors.New("embedded scheme separator")
	}
	if strings.HasPrefix(p, "/") {
		return errors.New("path must be relative")
	}
	if !utf8.ValidString(p) {
		return errors.New("invalid UTF-8")
	}
	for _, r := range p {
		if r == '\\' || unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("illegal character %q", r)
		}
	}
	for _, seg := range strings.Split(p, "/") {
		switch seg {
		case "":
			return errors.New("empty path segment")
		case ".", "..":
			return fmt.Errorf("relative segment %q", seg)
		}
	}
	return nil
}

// Scheme returns the locator scheme, or "" for the zero Locator.
func (l Locator) Scheme() string { return l.scheme }

// Path returns the relative path without the scheme prefix.
func (l Locator) Path() string { return l.path }

// IsZero reports whether l was never set.
func (l Locator) IsZero() bool { return l.path == "" }

// Module returns the first path segment, the module that owns the asset.
func (l Locator) Module() string {
	m, _, _ := strings.Cut(l.path, "/")
	return m
}

// Base returns the file name of the asset.
func (l Locator) Base() string {
	if l.path == "" {
		return ""
	}
	return path.Base(l.path)
}

// ModuleID returns the AMD module id browsers use to require the asset,
// e.g. "nmodule/n4games/rc/tetrisWidget" for module://n4games/rc/tetrisWidget.js.
func (l Locator) ModuleID() string {
	if l.path == "" {
		return ""
	}
	return "n" + Scheme + "/" + strings.TrimSuffix(l.path, ".js")
}

// String renders the locator as "module://<path>".
func (l Locator) String() string {
	if l.IsZero() {
		return ""
	}
	return l.scheme + separator + l.path
}

// MarshalText implements encoding.TextMarshaler.
func (l Locator) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty input leaves
// the zero Locator so optional fields can be omitted from manifests.
func (l *Locator) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*l = Locator{}
		return nil
	}
	parsed, err := Make(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
