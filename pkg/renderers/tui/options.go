package tui

import (
	"context"

	"github.com/goliatone/go-formpages/pkg/formstate"
	"github.com/goliatone/go-formpages/pkg/i18n"
	"github.com/goliatone/go-formpages/pkg/model"
)

// OutputFormat controls how collected values are serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits application/json payloads.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatFormURLEncoded emits application/x-www-form-urlencoded payloads.
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatPrettyText emits a human-friendly text summary.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// Theme captures optional prefixes the renderer applies to printed messages.
type Theme struct {
	HeadingPrefix string
	InfoPrefix    string
	ErrorPrefix   string
}

// ValidateFunc checks collected values and returns messages keyed by field
// path. A nil map means the values are valid.
type ValidateFunc func(ctx context.Context, values model.Values) (map[string][]string, error)

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithValidator runs fn once every visible field has been answered. Fields
// it reports are prompted again until it passes.
func WithValidator(fn ValidateFunc) Option {
	return func(r *Renderer) {
		r.validate = fn
	}
}

// WithTranslator resolves component chrome (yes/no labels, date parts).
func WithTranslator(t i18n.Translator, locale string) Option {
	return func(r *Renderer) {
		r.translator = t
		r.locale = locale
	}
}

// WithEngine swaps the form state engine used for visibility and resets.
func WithEngine(engine *formstate.Engine) Option {
	return func(r *Renderer) {
		if engine != nil {
			r.engine = engine
		}
	}
}

// WithExtras supplies page props visibility rules read through `extras.`.
func WithExtras(extras map[string]any) Option {
	return func(r *Renderer) {
		r.extras = extras
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}
