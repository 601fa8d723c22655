// Package jsonform renders a form and its current state as JSON so clients
// can draw the page themselves. Field order follows the form definition.
package jsonform

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-formpages/pkg/model"
	"github.com/goliatone/go-formpages/pkg/render"
	"github.com/goliatone/go-formpages/pkg/renderers/html"
)

// Name and ContentType identify the renderer in a render.Registry.
const (
	Name        = "json"
	ContentType = "application/json"
)

// Option customises the renderer.
type Option func(*Renderer)

// WithIndent pretty prints the payload.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

// Renderer implements render.Renderer with a JSON payload.
type Renderer struct {
	indent string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return ContentType
}

// Payload is the document Render produces.
type Payload struct {
	Form       model.Form           `json:"form"`
	Values     model.Values         `json:"values"`
	Visible    map[string]bool      `json:"visible,omitempty"`
	Watched    []string             `json:"watched,omitempty"`
	Errors     map[string][]string  `json:"errors,omitempty"`
	FormErrors []string             `json:"formErrors,omitempty"`
	Hidden     []render.HiddenField `json:"hidden,omitempty"`
	Notice     string               `json:"notice,omitempty"`
	Locale     string               `json:"locale,omitempty"`
}

// Render encodes form with the state in opts. Hints are sanitised the same
// way the HTML renderer does before they leave the server.
func (r *Renderer) Render(_ context.Context, form model.Form, opts render.RenderOptions) ([]byte, error) {
	form.Fields = sanitizeFields(form.Fields)

	values := opts.Values
	if values == nil {
		values = model.Values{}
	}
	payload := Payload{
		Form:       form,
		Values:     values,
		Visible:    opts.Visible,
		Watched:    opts.Watched,
		Errors:     opts.Errors,
		FormErrors: opts.FormErrors,
		Hidden:     render.SortedHiddenFields(opts.Hidden),
		Notice:     opts.Notice,
		Locale:     opts.Locale,
	}

	var (
		out []byte
		err error
	)
	if r.indent != "" {
		out, err = json.MarshalIndent(payload, "", r.indent)
	} else {
		out, err = json.Marshal(payload)
	}
	if err != nil {
		return nil, fmt.Errorf("json renderer: marshal payload: %w", err)
	}
	return out, nil
}

func sanitizeFields(fields []model.Field) []model.Field {
	if len(fields) == 0 {
		return fields
	}
	out := make([]model.Field, len(fields))
	for i, field := range fields {
		field.Hint = html.SanitizeHint(field.Hint)
		field.Children = sanitizeFields(field.Children)
		out[i] = field
	}
	return out
}
