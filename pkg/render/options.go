package render

import (
	"github.com/goliatone/go-formpages/pkg/i18n"
	"github.com/goliatone/go-formpages/pkg/model"
)

// RenderOptions describe per-request state renderers use to draw a form
// without mutating the form definition.
type RenderOptions struct {
	// Locale selects the catalog used for component chrome (yes/no labels,
	// date part labels). Form strings are expected to be localised already,
	// see LocalizeForm.
	Locale     string
	Translator i18n.Translator
	// Values pre-populates controls. Date fields hold month/day/year maps.
	Values model.Values
	// Errors surfaces validation feedback keyed by field path. Paths below a
	// date field ("when.month") are shown on the date group.
	Errors map[string][]string
	// FormErrors are shown above the fields.
	FormErrors []string
	// Visible is the result of formstate.Engine.Visible. A nil map shows
	// every field.
	Visible map[string]bool
	// Watched lists fields whose change should trigger a refresh.
	Watched []string
	// Hidden carries extra hidden inputs such as a CSRF token.
	Hidden map[string]string
	// Notice is an informational banner (for example after a submit).
	Notice string
	// Theme is the resolved theme configuration; nil uses renderer defaults.
	Theme *ThemeConfig
	// Standalone wraps the form in a full HTML document.
	Standalone bool
}

// ThemeConfig is the renderer-facing view of a theme selection.
type ThemeConfig struct {
	Name        string
	Variant     string
	Tokens      map[string]string
	CSSVars     map[string]string
	Stylesheets []string
}

// IsVisible reports whether key is visible under opts. Missing keys are
// visible so renderers can be used without a visibility pass.
func (opts RenderOptions) IsVisible(key string) bool {
	if opts.Visible == nil {
		return true
	}
	shown, ok := opts.Visible[key]
	return !ok || shown
}
