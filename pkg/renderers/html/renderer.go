// Package html renders forms as server-side HTML through pongo2 templates.
//
// Each field is drawn by its component partial under templates/components.
// Fields hidden by visibility rules are not drawn, but their values are kept
// as hidden inputs so they survive a round trip. Inputs of watched fields
// carry data-fg-watch; the bundled runtime posts the form back with
// `_intent=refresh` when one of them changes.
package html

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/goliatone/go-formpages/pkg/formstate"
	"github.com/goliatone/go-formpages/pkg/model"
	"github.com/goliatone/go-formpages/pkg/render"
	rendertemplate "github.com/goliatone/go-formpages/pkg/render/template"
	"github.com/goliatone/go-formpages/pkg/render/template/pongo"
)

// Name is the registry name of the HTML renderer.
const Name = "html"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	assetPrefix      string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithAssetPrefix sets the URL prefix standalone pages load the stylesheet
// and runtime script from. Defaults to "/assets".
func WithAssetPrefix(prefix string) Option {
	return func(cfg *config) {
		cfg.assetPrefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	}
}

type Renderer struct {
	templates   rendertemplate.TemplateRenderer
	assetPrefix string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS(), assetPrefix: "/assets"}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := pongo.New(pongo.WithFS(cfg.templateFS), pongo.WithName("html"))
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}
	return &Renderer{templates: renderer, assetPrefix: cfg.assetPrefix}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render draws form with the per-request state in opts.
func (r *Renderer) Render(_ context.Context, form model.Form, opts render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}

	builder := newViewBuilder(opts)
	fields, err := r.renderFields(builder, form.Fields, "", opts)
	if err != nil {
		return nil, err
	}

	hidden := render.MergeHiddenFields(opts.Hidden, carried(form, opts)...)
	method := strings.ToLower(strings.TrimSpace(form.Method))
	if method == "" {
		method = "post"
	}
	submit := form.SubmitLabel
	if submit == "" {
		submit = builder.t("components.pagination.submit", "Submit")
	}

	data := map[string]any{
		"form": map[string]any{
			"id":           form.ID,
			"title":        form.Title,
			"action":       form.Action,
			"method":       method,
			"submit_label": submit,
		},
		"fields":        fields,
		"hidden":        hiddenList(hidden),
		"modals":        form.Modals,
		"errors":        opts.FormErrors,
		"notice":        opts.Notice,
		"chrome":        chromeClasses(),
		"intent_input":  formstate.IntentInput,
		"intent_submit": formstate.IntentSubmit,
		"intent_reload": formstate.IntentRefresh,
		"has_watch":     len(opts.Watched) > 0,
		"refresh_label": builder.t("components.pagination.refresh", "Update"),
		"locale":        opts.Locale,
	}

	name := "templates/form"
	if opts.Standalone {
		name = "templates/page"
		data["assets"] = map[string]any{
			"stylesheet": r.assetPrefix + "/" + StylesheetName,
			"script":     r.assetPrefix + "/" + RuntimeScriptName,
		}
		data["theme"] = themeData(opts.Theme)
	}

	result, err := r.templates.RenderTemplate(name, data)
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func (r *Renderer) renderFields(b viewBuilder, fields []model.Field, prefix string, opts render.RenderOptions) ([]string, error) {
	out := make([]string, 0, len(fields))
	for i, field := range fields {
		key := formstate.FieldKey(prefix, i, field)
		if !opts.IsVisible(key) {
			continue
		}
		view := b.field(field)
		if field.Kind == model.KindSection {
			children, err := r.renderFields(b, field.Children, formstate.IndexPath(prefix, i), opts)
			if err != nil {
				return nil, err
			}
			view.Children = strings.Join(children, "\n")
		}

		tmpl, ok := componentTemplates[field.Kind]
		if !ok {
			return nil, fmt.Errorf("html renderer: no component for field %q of kind %q", key, field.Kind)
		}
		markup, err := r.templates.RenderTemplate(tmpl, map[string]any{
			"field":  view,
			"chrome": chromeClasses(),
		})
		if err != nil {
			return nil, fmt.Errorf("html renderer: render field %q: %w", key, err)
		}
		out = append(out, strings.TrimSpace(markup))
	}
	return out, nil
}

var componentTemplates = map[model.FieldKind]string{
	model.KindText:        "templates/components/text",
	model.KindYesNo:       "templates/components/yesno",
	model.KindRadio:       "templates/components/radio",
	model.KindDropdown:    "templates/components/dropdown",
	model.KindDate:        "templates/components/date",
	model.KindImported:    "templates/components/imported",
	model.KindImportedBox: "templates/components/imported_box",
	model.KindSection:     "templates/components/section",
}

func hiddenList(fields map[string]string) []map[string]string {
	sorted := render.SortedHiddenFields(fields)
	out := make([]map[string]string, 0, len(sorted))
	for _, field := range sorted {
		out = append(out, map[string]string{"name": field.Name, "value": field.Value})
	}
	return out
}

func themeData(theme *render.ThemeConfig) map[string]any {
	if theme == nil {
		return map[string]any{}
	}
	keys := make([]string, 0, len(theme.CSSVars))
	for key := range theme.CSSVars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	vars := make([]map[string]string, 0, len(keys))
	for _, key := range keys {
		vars = append(vars, map[string]string{"name": key, "value": theme.CSSVars[key]})
	}
	return map[string]any{
		"name":        theme.Name,
		"variant":     theme.Variant,
		"vars":        vars,
		"stylesheets": theme.Stylesheets,
	}
}
