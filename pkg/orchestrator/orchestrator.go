package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formpages/pkg/formstate"
	"github.com/goliatone/go-formpages/pkg/i18n"
	"github.com/goliatone/go-formpages/pkg/model"
	"github.com/goliatone/go-formpages/pkg/pages"
	"github.com/goliatone/go-formpages/pkg/render"
	"github.com/goliatone/go-formpages/pkg/renderers/html"
	"github.com/goliatone/go-formpages/pkg/validation"
)

const defaultRendererName = "html"

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithPages injects the page registry.
func WithPages(registry *pages.Registry) Option {
	return func(o *Orchestrator) {
		o.pages = registry
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithEngine swaps the visibility and reset rule engine.
func WithEngine(engine *formstate.Engine) Option {
	return func(o *Orchestrator) {
		o.engine = engine
	}
}

// WithValidator swaps the schema validator.
func WithValidator(v *validation.Validator) Option {
	return func(o *Orchestrator) {
		o.validator = v
	}
}

// WithTranslator sets the translator used to localise forms and messages.
func WithTranslator(t i18n.Translator) Option {
	return func(o *Orchestrator) {
		o.translator = t
	}
}

// WithSubmitter sets where accepted submissions go.
func WithSubmitter(s pages.Submitter) Option {
	return func(o *Orchestrator) {
		o.submitter = s
	}
}

// WithSchemaTransformer registers a Transformer that can rewrite page forms
// after they are built and before they are localised.
func WithSchemaTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator runs a page through build, localise, state, validation and
// render or submit. Missing dependencies get the built-in implementations.
type Orchestrator struct {
	pages           *pages.Registry
	registry        *render.Registry
	defaultRenderer string
	engine          *formstate.Engine
	validator       *validation.Validator
	translator      i18n.Translator
	submitter       pages.Submitter
	transformer     Transformer
	logger          *zap.Logger
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		logger:          zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes a page render.
type Request struct {
	Page  string
	Props pages.Props
	// Locale selects the catalog; empty uses the default locale.
	Locale string
	// Renderer names the renderer to use. If empty, the orchestrator falls
	// back to the configured default renderer.
	Renderer string
	// Values replaces the page defaults when non-nil.
	Values model.Values
	Extras map[string]any
	// RenderOptions carries errors, hidden inputs, theme and notices. The
	// orchestrator fills in values, visibility and locale.
	RenderOptions render.RenderOptions
}

// Post is a browser form post.
type Post struct {
	Page   string
	Props  pages.Props
	Locale string
	Data   url.Values
	Extras map[string]any
}

// Outcome reports what happened to a post or API submission.
type Outcome struct {
	Page   pages.Definition
	Form   model.Form
	Values model.Values
	Errors validation.Errors
	Intent string
	// Submission is set when the values were accepted.
	Submission *pages.Submission
}

// Accepted reports whether the values were submitted.
func (out Outcome) Accepted() bool {
	return out.Submission != nil
}

// Pages exposes the page registry.
func (o *Orchestrator) Pages() *pages.Registry {
	return o.pages
}

// Renderers exposes the renderer registry.
func (o *Orchestrator) Renderers() *render.Registry {
	return o.registry
}

// Form builds the localised form for a page.
func (o *Orchestrator) Form(ctx context.Context, page string, props pages.Props, locale string) (pages.Definition, model.Form, error) {
	if ctx == nil {
		return pages.Definition{}, model.Form{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return pages.Definition{}, model.Form{}, err
	}
	if err := o.initialiseErr; err != nil {
		return pages.Definition{}, model.Form{}, err
	}

	def, err := o.pages.Lookup(page)
	if err != nil {
		return pages.Definition{}, model.Form{}, err
	}
	form := def.Form(props)
	if err := o.applyTransformer(ctx, &form); err != nil {
		return pages.Definition{}, model.Form{}, err
	}
	render.LocalizeForm(&form, o.locale(locale), o.translator)
	return def, form, nil
}

// Generate renders a page with the renderer named in req.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	def, form, err := o.Form(ctx, req.Page, req.Props, req.Locale)
	if err != nil {
		return nil, err
	}

	values := req.Values
	if values == nil {
		values = def.InitialValues(req.Props)
	}
	values = formstate.WithDefaults(values, formstate.Imported(form))

	opts, err := o.renderOptions(form, values, req.Locale, req.Extras, req.RenderOptions)
	if err != nil {
		return nil, err
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}
	output, err := renderer.Render(ctx, form, opts)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// RenderOutcome renders the form of a processed post again with its values
// and errors.
func (o *Orchestrator) RenderOutcome(ctx context.Context, out Outcome, rendererName, locale string, base render.RenderOptions) ([]byte, error) {
	if base.Errors == nil && len(out.Errors) > 0 {
		mapping := render.MapErrors(out.Form, out.Errors)
		base.Errors = mapping.Fields
		base.FormErrors = render.MergeFormErrors(base.FormErrors, mapping.Form...)
	}
	opts, err := o.renderOptions(out.Form, out.Values, locale, nil, base)
	if err != nil {
		return nil, err
	}
	renderer, err := o.rendererFor(rendererName)
	if err != nil {
		return nil, err
	}
	output, err := renderer.Render(ctx, out.Form, opts)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// Process handles a browser post. A refresh intent only applies reset rules
// so the page can be drawn again with the new visibility; a submit is
// validated and, when clean, handed to the submitter.
func (o *Orchestrator) Process(ctx context.Context, post Post) (Outcome, error) {
	def, form, err := o.Form(ctx, post.Page, post.Props, post.Locale)
	if err != nil {
		return Outcome{}, err
	}

	values, problems := formstate.Decode(form, post.Data)
	values = formstate.WithDefaults(values, formstate.Imported(form))
	previous := formstate.DecodePrevious(form, post.Data)

	values, err = o.engine.ApplyResets(form, previous, values, post.Extras)
	if err != nil {
		return Outcome{}, fmt.Errorf("orchestrator: %w", err)
	}

	out := Outcome{Page: def, Form: form, Values: values, Intent: formstate.Intent(post.Data)}
	if out.Intent == formstate.IntentRefresh {
		return out, nil
	}

	errs := o.validator.Problems(def.Schema, o.locale(post.Locale), problems)
	return o.finish(ctx, out, post.Locale, post.Extras, errs)
}

// SubmitValues validates and submits values that arrived already decoded,
// for example from the JSON API.
func (o *Orchestrator) SubmitValues(ctx context.Context, page string, props pages.Props, locale string, values model.Values) (Outcome, error) {
	def, form, err := o.Form(ctx, page, props, locale)
	if err != nil {
		return Outcome{}, err
	}
	values = formstate.WithDefaults(values, formstate.Imported(form))
	out := Outcome{Page: def, Form: form, Values: values, Intent: formstate.IntentSubmit}
	return o.finish(ctx, out, locale, nil, nil)
}

// Validate checks values against a page schema without submitting them.
func (o *Orchestrator) Validate(ctx context.Context, page, locale string, values model.Values) (validation.Errors, error) {
	def, err := o.pages.Lookup(page)
	if err != nil {
		return nil, err
	}
	visible, err := o.engine.Visible(def.Form(nil), values, nil)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	errs, err := o.validator.Validate(ctx, def.Schema, shownValues(values, visible), validation.Options{Locale: o.locale(locale)})
	if err != nil {
		return nil, fmt.Errorf("orchestrator: validate %s: %w", page, err)
	}
	return errs, nil
}

// finish validates the visible part of out.Values and submits it when clean.
// Hidden fields keep their values in the submission but are never checked,
// since the user has no way to see or correct their errors.
func (o *Orchestrator) finish(ctx context.Context, out Outcome, locale string, extras map[string]any, errs validation.Errors) (Outcome, error) {
	visible, err := o.engine.Visible(out.Form, out.Values, extras)
	if err != nil {
		return out, fmt.Errorf("orchestrator: %w", err)
	}
	errs = dropHidden(errs, visible)

	found, err := o.validator.Validate(ctx, out.Page.Schema, shownValues(out.Values, visible), validation.Options{
		Locale: o.locale(locale),
		Extras: extras,
	})
	if err != nil {
		return out, fmt.Errorf("orchestrator: validate %s: %w", out.Page.ID, err)
	}
	for path, messages := range found {
		if errs.Has(path) {
			continue
		}
		if errs == nil {
			errs = validation.Errors{}
		}
		for _, msg := range messages {
			errs.Add(path, msg)
		}
	}

	if len(errs) > 0 {
		out.Errors = errs
		if r, ok := o.submitter.(rejecter); ok {
			r.Rejected(out.Page.ID, errs)
		}
		return out, nil
	}

	sub := pages.NewSubmission(out.Page.ID, o.locale(locale), out.Values)
	if err := o.submitter.Submit(ctx, sub); err != nil {
		return out, fmt.Errorf("orchestrator: submit %s: %w", out.Page.ID, err)
	}
	out.Submission = &sub
	return out, nil
}

// shownValues copies values without the fields visible marks as hidden.
func shownValues(values model.Values, visible map[string]bool) model.Values {
	out := make(model.Values, len(values))
	for name, value := range values {
		if shown, ok := visible[name]; ok && !shown {
			continue
		}
		out[name] = value
	}
	return out
}

// dropHidden removes errors whose top level field is hidden. Paths of date
// parts ("field.month") are matched by their field name.
func dropHidden(errs validation.Errors, visible map[string]bool) validation.Errors {
	if len(errs) == 0 {
		return errs
	}
	out := validation.Errors{}
	for path, messages := range errs {
		name, _, _ := strings.Cut(path, ".")
		if shown, ok := visible[name]; ok && !shown {
			continue
		}
		out[path] = messages
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// rejecter is implemented by submitters that want to hear about submissions
// that failed validation.
type rejecter interface {
	Rejected(page string, errs map[string][]string)
}

func (o *Orchestrator) renderOptions(form model.Form, values model.Values, locale string, extras map[string]any, opts render.RenderOptions) (render.RenderOptions, error) {
	visible, err := o.engine.Visible(form, values, extras)
	if err != nil {
		return opts, fmt.Errorf("orchestrator: %w", err)
	}
	watched, err := o.engine.Watched(form)
	if err != nil {
		return opts, fmt.Errorf("orchestrator: %w", err)
	}
	opts.Values = values
	opts.Visible = visible
	opts.Watched = watched
	opts.Locale = o.locale(locale)
	if opts.Translator == nil {
		opts.Translator = o.translator
	}
	return opts, nil
}

func (o *Orchestrator) locale(locale string) string {
	if locale == "" {
		return i18n.DefaultLocale
	}
	return locale
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}

	renderer, err := o.registry.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", names[0], err)
	}
	return renderer, nil
}

func (o *Orchestrator) applyTransformer(ctx context.Context, form *model.Form) error {
	if o.transformer == nil || form == nil {
		return nil
	}
	if err := o.transformer.Transform(ctx, form); err != nil {
		return fmt.Errorf("orchestrator: transform form: %w", err)
	}
	return nil
}

func (o *Orchestrator) applyDefaults() {
	if o.pages == nil {
		o.pages = pages.Default()
	}
	if o.engine == nil {
		o.engine = formstate.New()
	}
	if o.translator == nil {
		catalog, err := i18n.Default()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: load catalogs: %w", err)
		} else {
			o.translator = catalog
		}
	}
	if o.validator == nil {
		o.validator = validation.New(validation.WithTranslator(o.translator))
	}
	if o.submitter == nil {
		o.submitter = pages.NewLogSubmitter(o.logger)
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := html.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		} else {
			o.registry.MustRegister(renderer)
		}
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
}
