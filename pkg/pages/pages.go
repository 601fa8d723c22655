// Package pages defines the form-driven pages the service serves. A
// Definition builds a fresh model.Form for a set of props and carries the
// validation schema its submissions are checked against.
package pages

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formpages/pkg/model"
	"github.com/goliatone/go-formpages/pkg/validation"
)

// ErrUnknownPage is returned when a page ID is not registered.
var ErrUnknownPage = errors.New("pages: unknown page")

// Props are the page inputs a caller supplies, such as the imported values
// of the identity page. Unknown props are ignored.
type Props map[string]string

// Get returns the trimmed prop value.
func (p Props) Get(key string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(p[key])
}

// Definition describes one page.
type Definition struct {
	ID string
	// Title is the human readable name used by listings.
	Title string
	// Build returns the form for props. Every call returns new slices so
	// callers may localise or rewrite the result in place.
	Build func(Props) model.Form
	// Defaults returns the initial values for props. Optional.
	Defaults func(Props) model.Values
	Schema   validation.Schema
	// SubmittedKey is the translation key of the notice shown after a
	// successful submit.
	SubmittedKey string
	// PropKeys lists the props Build reads, in display order.
	PropKeys []string
}

// Form builds the page form for props.
func (d Definition) Form(props Props) model.Form {
	if d.Build == nil {
		return model.Form{ID: d.ID}
	}
	form := d.Build(props)
	if form.ID == "" {
		form.ID = d.ID
	}
	return form
}

// InitialValues returns the page defaults for props, never nil.
func (d Definition) InitialValues(props Props) model.Values {
	if d.Defaults == nil {
		return model.Values{}
	}
	values := d.Defaults(props)
	if values == nil {
		return model.Values{}
	}
	return values
}

// Registry holds page definitions keyed by ID. Registration happens at
// start-up; lookups are safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	pages map[string]Definition
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{pages: make(map[string]Definition)}
}

// Default returns a registry with the bundled pages.
func Default() *Registry {
	r := NewRegistry()
	r.MustRegister(Example())
	r.MustRegister(Identity())
	return r
}

// Register adds def. IDs must be unique and the definition must be able to
// build a form.
func (r *Registry) Register(def Definition) error {
	id := strings.TrimSpace(def.ID)
	if id == "" {
		return errors.New("pages: definition id is required")
	}
	if def.Build == nil {
		return fmt.Errorf("pages: definition %q has no builder", id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.pages[id]; exists {
		return fmt.Errorf("pages: definition %q already registered", id)
	}
	def.ID = id
	r.pages[id] = def
	return nil
}

// MustRegister panics when Register fails.
func (r *Registry) MustRegister(def Definition) {
	if err := r.Register(def); err != nil {
		panic(err)
	}
}

// Lookup returns the definition registered under id.
func (r *Registry) Lookup(id string) (Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.pages[strings.TrimSpace(id)]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownPage, id)
	}
	return def, nil
}

// List returns the definitions sorted by ID.
func (r *Registry) List() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Definition, 0, len(r.pages))
	for _, def := range r.pages {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
