// Package widget holds the widget catalog: immutable bundle and widget
// descriptors and the Registry that resolves widget identities to them.
//
// A Registry starts Uninitialized. Startup code registers bundles and then
// the widgets that depend on them, and calls MarkReady. From then on the
// catalog is an immutable snapshot that any number of goroutines may read
// without locking.
//
//	reg := widget.New()
//	reg.RegisterBundle("n4games", locator.MustMake("module://n4games/rc/n4games.built.min.js"))
//	reg.RegisterWidget("tetris", locator.MustMake("module://n4games/rc/tetrisWidget.js"), "n4games")
//	reg.MarkReady()
//	w, err := reg.Resolve("tetris")
package widget

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/zot/n4games/internal/locator"
)

var (
	// ErrInvalidID indicates an empty widget id or bundle name.
	ErrInvalidID = errors.New("widget: invalid identity")
	// ErrDuplicateBundle indicates a bundle name is already registered.
	ErrDuplicateBundle = errors.New("widget: duplicate bundle")
	// ErrDuplicateWidget indicates a widget id is already registered.
	ErrDuplicateWidget = errors.New("widget: duplicate widget")
	// ErrUnknownBundle indicates a widget names a bundle that is not registered.
	ErrUnknownBundle = errors.New("widget: unknown bundle")
	// ErrNotFound indicates a lookup of an unregistered widget or bundle.
	ErrNotFound = errors.New("widget: not found")
	// ErrNotInitialized indicates a query before MarkReady.
	ErrNotInitialized = errors.New("widget: registry not initialized")
	// ErrSealed indicates a registration after MarkReady on a registry
	// without late registration.
	ErrSealed = errors.New("widget: registry is ready and sealed")
)

// State is the registry lifecycle state.
type State int32

const (
	StateUninitialized State = iota
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLateRegistration lets registrations continue after MarkReady. Each one
// publishes a new snapshot; existing entries are never replaced.
func WithLateRegistration() RegistryOption {
	return func(r *Registry) { r.late = true }
}

// Registry maps widget ids to descriptors.
type Registry struct {
	mu    sync.Mutex // serializes writers
	draft *catalog   // pre-Ready working copy, guarded by mu
	late  bool

	published atomic.Pointer[catalog] // nil until MarkReady
}

// catalog is one immutable generation of the registry contents.
type catalog struct {
	bundles     map[string]*Bundle
	widgets     map[string]*Widget
	ids         []string // sorted
	bundleNames []string // sorted
}

func newCatalog() *catalog {
	return &catalog{
		bundles: make(map[string]*Bundle),
		widgets: make(map[string]*Widget),
	}
}

func (c *catalog) clone() *catalog {
	next := &catalog{
		bundles:     make(map[string]*Bundle, len(c.bundles)+1),
		widgets:     make(map[string]*Widget, len(c.widgets)+1),
		ids:         append([]string(nil), c.ids...),
		bundleNames: append([]string(nil), c.bundleNames...),
	}
	for k, v := range c.bundles {
		next.bundles[k] = v
	}
	for k, v := range c.widgets {
		next.widgets[k] = v
	}
	return next
}

func insertSorted(s []string, v string) []string {
	i := sort.SearchStrings(s, v)
	s = append(s, "")
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

// New creates an Uninitialized registry.
func New(opts ...RegistryOption) *Registry {
	r := &Registry{draft: newCatalog()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the current lifecycle state.
func (r *Registry) State() State {
	if r.published.Load() == nil {
		return StateUninitialized
	}
	return StateReady
}

// MarkReady publishes the registered catalog and moves the registry to
// StateReady. It reports whether this call made the transition.
func (r *Registry) MarkReady() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.published.Load() != nil {
		return false
	}
	r.published.Store(r.draft)
	r.draft = nil
	return true
}

// mutate applies fn to a copy of the current catalog and installs the copy
// only when fn succeeds.
func (r *Registry) mutate(fn func(*catalog) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.published.Load()
	if current == nil {
		next := r.draft.clone()
		if err := fn(next); err != nil {
			return err
		}
		r.draft = next
		return nil
	}
	if !r.late {
		return ErrSealed
	}
	next := current.clone()
	if err := fn(next); err != nil {
		return err
	}
	r.published.Store(next)
	return nil
}

// RegisterBundle registers an aggregate script bundle.
func (r *Registry) RegisterBundle(name string, loc locator.Locator) (*Bundle, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty bundle name", ErrInvalidID)
	}
	if loc.IsZero() {
		return nil, fmt.Errorf("bundle %q: %w: missing locator", name, locator.ErrInvalidLocator)
	}
	b := &Bundle{name: name, locator: loc}
	err := r.mutate(func(c *catalog) error {
		if _, exists := c.bundles[name]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateBundle, name)
		}
		c.bundles[name] = b
		c.bundleNames = insertSorted(c.bundleNames, name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// RegisterWidget registers a widget backed by script that depends on the
// already registered bundle bundleName.
func (r *Registry) RegisterWidget(id string, script locator.Locator, bundleName string, opts ...Option) (*Widget, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty widget id", ErrInvalidID)
	}
	if script.IsZero() {
		return nil, fmt.Errorf("widget %q: %w: missing script", id, locator.ErrInvalidLocator)
	}
	w := &Widget{id: id, script: script, formFactor: FormFactorMax}
	for _, opt := range opts {
		opt(w)
	}
	if _, err := ParseFormFactor(string(w.formFactor)); err != nil {
		return nil, fmt.Errorf("widget %q: %w", id, err)
	}

	err := r.mutate(func(c *catalog) error {
		if _, exists := c.widgets[id]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateWidget, id)
		}
		b, ok := c.bundles[bundleName]
		if !ok {
			return fmt.Errorf("%w: widget %q needs bundle %q", ErrUnknownBundle, id, bundleName)
		}
		w.bundle = b
		c.widgets[id] = w
		c.ids = insertSorted(c.ids, id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (r *Registry) snapshot() (*catalog, error) {
	c := r.published.Load()
	if c == nil {
		return nil, ErrNotInitialized
	}
	return c, nil
}

// Resolve returns the descriptor registered under id.
func (r *Registry) Resolve(id string) (*Widget, error) {
	c, err := r.snapshot()
	if err != nil {
		return nil, err
	}
	w, ok := c.widgets[id]
	if !ok {
		return nil, fmt.Errorf("%w: widget %q", ErrNotFound, id)
	}
	return w, nil
}

// List returns every registered widget id in lexicographic order.
// The caller owns the returned slice.
func (r *Registry) List() ([]string, error) {
	c, err := r.snapshot()
	if err != nil {
		return nil, err
	}
	return append([]string(nil), c.ids...), nil
}

// Widgets returns every descriptor, sorted by id.
func (r *Registry) Widgets() ([]*Widget, error) {
	c, err := r.snapshot()
	if err != nil {
		return nil, err
	}
	out := make([]*Widget, len(c.ids))
	for i, id := range c.ids {
		out[i] = c.widgets[id]
	}
	return out, nil
}

// Bundle returns the bundle registered under name.
func (r *Registry) Bundle(name string) (*Bundle, error) {
	c, err := r.snapshot()
	if err != nil {
		return nil, err
	}
	b, ok := c.bundles[name]
	if !ok {
		return nil, fmt.Errorf("%w: bundle %q", ErrNotFound, name)
	}
	return b, nil
}

// Bundles returns every bundle, sorted by name.
func (r *Registry) Bundles() ([]*Bundle, error) {
	c, err := r.snapshot()
	if err != nil {
		return nil, err
	}
	out := make([]*Bundle, len(c.bundleNames))
	for i, name := range c.bundleNames {
		out[i] = c.bundles[name]
	}
	return out, nil
}

// Len returns the number of registered widgets, including those registered
// before MarkReady.
func (r *Registry) Len() int {
	if c := r.published.Load(); c != nil {
		return len(c.ids)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if c := r.published.Load(); c != nil {
		return len(c.ids)
	}
	return len(r.draft.ids)
}
