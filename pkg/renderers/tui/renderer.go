// Package tui fills forms interactively in a terminal. Visibility is worked
// out again after every answer, so dependent questions appear as soon as
// the answer they depend on is given. Once every visible question has been
// answered the configured validator runs and the fields it rejects are asked
// again.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"sort"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formpages/pkg/dates"
	"github.com/goliatone/go-formpages/pkg/formstate"
	"github.com/goliatone/go-formpages/pkg/i18n"
	"github.com/goliatone/go-formpages/pkg/model"
	"github.com/goliatone/go-formpages/pkg/render"
)

// Renderer implements render.Renderer for terminal sessions: Render prompts
// for every visible field and returns the collected values serialized in
// the configured OutputFormat.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	engine       *formstate.Engine
	validate     ValidateFunc
	translator   i18n.Translator
	locale       string
	extras       map[string]any
	theme        Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) *Renderer {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		theme:        Theme{HeadingPrefix: "== ", ErrorPrefix: "! "},
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver()
	}
	if r.engine == nil {
		r.engine = formstate.New()
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render runs Fill seeded with opts.Values and serializes the result.
func (r *Renderer) Render(ctx context.Context, form model.Form, opts render.RenderOptions) ([]byte, error) {
	values, err := r.Fill(ctx, form, opts.Values)
	if err != nil {
		return nil, err
	}
	return r.Serialize(form, values)
}

// Fill prompts until every visible field has been answered and the
// validator, when configured, accepts the values.
func (r *Renderer) Fill(ctx context.Context, form model.Form, initial model.Values) (model.Values, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	s := &session{r: r, form: form, values: formstate.WithDefaults(initial, formstate.Imported(form))}
	if err := s.walk(ctx, form.Fields, "", nil); err != nil {
		return nil, err
	}

	for r.validate != nil {
		errs, err := r.validate(ctx, s.values)
		if err != nil {
			return nil, fmt.Errorf("tui: validate: %w", err)
		}
		if len(errs) == 0 {
			break
		}

		s.errors = errs
		s.prompted = 0
		if err := s.walk(ctx, form.Fields, "", invalidFields(errs)); err != nil {
			return nil, err
		}
		if s.prompted == 0 {
			return s.values, fmt.Errorf("%w: %s", ErrUnresolved, strings.Join(sortedKeys(errs), ", "))
		}
	}
	return s.values, nil
}

type session struct {
	r        *Renderer
	form     model.Form
	values   model.Values
	errors   map[string][]string
	prompted int
}

// walk prompts for the visible fields in order. When only is non-nil just
// those fields are asked again and structural output is skipped.
func (s *session) walk(ctx context.Context, fields []model.Field, prefix string, only map[string]bool) error {
	for i, field := range fields {
		visible, err := s.r.engine.Visible(s.form, s.values, s.r.extras)
		if err != nil {
			return fmt.Errorf("tui: %w", err)
		}
		key := formstate.FieldKey(prefix, i, field)
		if shown, ok := visible[key]; ok && !shown {
			continue
		}

		switch field.Kind {
		case model.KindSection:
			if only == nil && field.Label != "" {
				if err := s.r.driver.Info(ctx, s.r.theme.HeadingPrefix+field.Label); err != nil {
					return err
				}
			}
			if err := s.walk(ctx, field.Children, formstate.IndexPath(prefix, i), only); err != nil {
				return err
			}
			continue
		case model.KindImportedBox:
			if only != nil {
				continue
			}
			for _, entry := range field.Children {
				if err := s.r.driver.Info(ctx, s.r.theme.InfoPrefix+entry.Label+": "+entry.Value); err != nil {
					return err
				}
			}
			continue
		case model.KindImported:
			continue
		}

		if !field.HoldsValue() || (only != nil && !only[field.Name]) {
			continue
		}
		for _, message := range render.FieldErrors(s.errors, field.Name) {
			if err := s.r.driver.Info(ctx, s.r.theme.ErrorPrefix+field.Label+": "+message); err != nil {
				return err
			}
		}
		if err := s.prompt(ctx, field); err != nil {
			return err
		}
		s.prompted++
	}
	return nil
}

func (s *session) prompt(ctx context.Context, field model.Field) error {
	previous := s.values.Clone()
	next := s.values.Clone()

	var err error
	switch field.Kind {
	case model.KindYesNo:
		err = s.promptYesNo(ctx, field, next)
	case model.KindRadio, model.KindDropdown:
		err = s.promptChoice(ctx, field, next)
	case model.KindDate:
		err = s.promptDate(ctx, field, next)
	default:
		err = s.promptText(ctx, field, next)
	}
	if err != nil {
		return err
	}

	reset, err := s.r.engine.ApplyResets(s.form, previous, next, s.r.extras)
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	s.values = reset
	return nil
}

func (s *session) promptText(ctx context.Context, field model.Field, values model.Values) error {
	current, _ := values[field.Name].(string)
	resp, err := s.r.driver.Input(ctx, InputConfig{
		Message: field.Label,
		Default: current,
		Help:    plainHint(field.Hint),
	})
	if err != nil {
		return err
	}
	if strings.TrimSpace(resp) == "" {
		delete(values, field.Name)
		return nil
	}
	values[field.Name] = resp
	return nil
}

func (s *session) promptYesNo(ctx context.Context, field model.Field, values model.Values) error {
	defaultIndex := 0
	if v, ok := values[field.Name].(bool); ok && !v {
		defaultIndex = 1
	}
	idx, err := s.r.driver.Select(ctx, SelectConfig{
		Message:      field.Label,
		Options:      []string{s.t("components.yesNo.yes", "Yes"), s.t("components.yesNo.no", "No")},
		DefaultIndex: defaultIndex,
		Help:         plainHint(field.Hint),
	})
	if err != nil {
		return err
	}
	switch idx {
	case 0:
		values[field.Name] = true
	case 1:
		values[field.Name] = false
	default:
		delete(values, field.Name)
	}
	return nil
}

func (s *session) promptChoice(ctx context.Context, field model.Field, values model.Values) error {
	current, _ := values[field.Name].(string)

	var labels, options []string
	if field.Kind == model.KindDropdown && field.StartEmpty {
		labels = append(labels, s.t("components.dropdown.empty", model.EmptyOption))
		options = append(options, "")
	}
	defaultIndex := 0
	for _, opt := range field.Options {
		if opt.Value == current {
			defaultIndex = len(options)
		}
		labels = append(labels, opt.Label)
		options = append(options, opt.Value)
	}

	idx, err := s.r.driver.Select(ctx, SelectConfig{
		Message:      field.Label,
		Options:      labels,
		DefaultIndex: defaultIndex,
		Help:         plainHint(field.Hint),
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(options) || options[idx] == "" {
		delete(values, field.Name)
		return nil
	}
	values[field.Name] = options[idx]
	return nil
}

func (s *session) promptDate(ctx context.Context, field model.Field, values model.Values) error {
	current := dates.FromMap(values[field.Name])
	parts := []struct {
		key      string
		labelKey string
		fallback string
		value    int
	}{
		{dates.MonthKey, "components.dateInput.month", "Month", current.Month},
		{dates.DayKey, "components.dateInput.day", "Day", current.Day},
		{dates.YearKey, "components.dateInput.year", "Year", current.Year},
	}

	out := map[string]any{}
	for _, part := range parts {
		def := ""
		if part.value != 0 {
			def = strconv.Itoa(part.value)
		}
		message := field.Label + " (" + s.t(part.labelKey, part.fallback) + ")"
		for {
			resp, err := s.r.driver.Input(ctx, InputConfig{Message: message, Default: def, Validator: validateNumber})
			if err != nil {
				return err
			}
			resp = strings.TrimSpace(resp)
			if resp == "" {
				break
			}
			n, err := strconv.Atoi(resp)
			if err != nil {
				if err := s.r.driver.Info(ctx, s.r.theme.ErrorPrefix+s.t("validation.number", "Enter a number")); err != nil {
					return err
				}
				continue
			}
			out[part.key] = n
			break
		}
	}
	if len(out) == 0 {
		delete(values, field.Name)
		return nil
	}
	values[field.Name] = out
	return nil
}

func (s *session) t(key, fallback string) string {
	return i18n.Must(s.r.translator, s.r.locale, key, fallback)
}

func validateNumber(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if _, err := strconv.Atoi(value); err != nil {
		return errors.New("enter a number")
	}
	return nil
}

var plainPolicy = bluemonday.StrictPolicy()

// plainHint strips hint markup for terminal display.
func plainHint(hint string) string {
	if strings.TrimSpace(hint) == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(plainPolicy.Sanitize(hint)))
}

func invalidFields(errs map[string][]string) map[string]bool {
	out := make(map[string]bool, len(errs))
	for path := range errs {
		name, _, _ := strings.Cut(path, ".")
		out[name] = true
	}
	return out
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Serialize encodes values in the configured OutputFormat.
func (r *Renderer) Serialize(form model.Form, values model.Values) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(formstate.Encode(form, values).Encode()), nil
	case OutputFormatPrettyText:
		var b strings.Builder
		for _, field := range form.ValueFields() {
			value, ok := values[field.Name]
			if !ok {
				continue
			}
			if field.Kind == model.KindDate {
				value = dates.FromMap(value).String()
			}
			fmt.Fprintf(&b, "%s: %v\n", field.Name, value)
		}
		return []byte(b.String()), nil
	default:
		payload, err := json.MarshalIndent(values, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("tui: encode values: %w", err)
		}
		return payload, nil
	}
}
