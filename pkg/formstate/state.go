// Package formstate tracks a form's current values between renders: it
// decodes posted inputs into model.Values, applies reset rules when watched
// fields change, and works out which fields are currently visible.
package formstate

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-formpages/pkg/dates"
	"github.com/goliatone/go-formpages/pkg/model"
	"github.com/goliatone/go-formpages/pkg/visibility"
	"github.com/goliatone/go-formpages/pkg/visibility/expr"
)

// Reserved input names the renderers emit next to field inputs.
const (
	IntentInput    = "_intent"
	PreviousPrefix = "_prev."

	IntentSubmit  = "submit"
	IntentRefresh = "refresh"
)

// Engine evaluates visibility and reset rules for forms.
type Engine struct {
	evaluator visibility.Evaluator
	resolver  visibility.DependencyResolver
}

// Option configures an Engine.
type Option func(*Engine)

// WithEvaluator swaps the rule evaluator. When the evaluator also implements
// visibility.DependencyResolver it is used for Watched as well.
func WithEvaluator(e visibility.Evaluator) Option {
	return func(engine *Engine) {
		if e == nil {
			return
		}
		engine.evaluator = e
		if resolver, ok := e.(visibility.DependencyResolver); ok {
			engine.resolver = resolver
		}
	}
}

// New constructs an Engine backed by the expr evaluator.
func New(options ...Option) *Engine {
	evaluator := expr.New()
	engine := &Engine{evaluator: evaluator, resolver: evaluator}
	for _, opt := range options {
		if opt != nil {
			opt(engine)
		}
	}
	return engine
}

// Problem tags reported by Decode. They line up with the validation tags so
// callers can turn them into messages the same way.
const (
	ProblemNumber  = "number"
	ProblemBoolean = "boolean"
)

// Decode reads the form's value-bearing inputs from posted data. It returns
// the decoded values plus parse problems keyed by field path (for example a
// non-numeric date part). Yes/no inputs are tri-state: "true", "false" or
// absent.
func Decode(form model.Form, data url.Values) (model.Values, map[string]string) {
	values := model.Values{}
	problems := map[string]string{}

	for _, field := range form.ValueFields() {
		switch field.Kind {
		case model.KindYesNo:
			raw := strings.TrimSpace(data.Get(field.Name))
			if raw == "" {
				continue
			}
			parsed, err := strconv.ParseBool(raw)
			if err != nil {
				problems[field.Name] = ProblemBoolean
				continue
			}
			values[field.Name] = parsed
		case model.KindDate:
			parts := map[string]any{}
			for _, key := range []string{dates.MonthKey, dates.DayKey, dates.YearKey} {
				path := field.Name + "." + key
				raw := strings.TrimSpace(data.Get(path))
				if raw == "" {
					continue
				}
				n, err := strconv.Atoi(raw)
				if err != nil {
					problems[path] = ProblemNumber
					continue
				}
				parts[key] = n
			}
			if len(parts) > 0 {
				values[field.Name] = parts
			}
		default:
			raw := data.Get(field.Name)
			if strings.TrimSpace(raw) == "" {
				continue
			}
			if field.Kind == model.KindDropdown && raw == model.EmptyOption {
				continue
			}
			if field.Kind != model.KindText {
				raw = strings.TrimSpace(raw)
			}
			values[field.Name] = raw
		}
	}

	if len(problems) == 0 {
		problems = nil
	}
	return values, problems
}

// DecodePrevious reads the snapshot of values the form was last rendered
// with. Renderers emit it as `_prev.<name>` hidden inputs so ApplyResets can
// tell which watched fields changed.
func DecodePrevious(form model.Form, data url.Values) model.Values {
	prefixed := url.Values{}
	for key, vals := range data {
		if name, ok := strings.CutPrefix(key, PreviousPrefix); ok {
			prefixed[name] = vals
		}
	}
	values, _ := Decode(form, prefixed)
	return values
}

// Intent returns the submit intent carried by the post.
func Intent(data url.Values) string {
	if strings.TrimSpace(data.Get(IntentInput)) == IntentRefresh {
		return IntentRefresh
	}
	return IntentSubmit
}

// WithDefaults overlays values onto defaults. Defaults that are nil are left
// unset.
func WithDefaults(defaults, values model.Values) model.Values {
	out := model.Values{}
	for key, value := range defaults {
		if value != nil {
			out[key] = value
		}
	}
	for key, value := range values.Clone() {
		out[key] = value
	}
	return out
}

// Encode is the inverse of Decode: it renders values as the inputs Decode
// reads back. Fields without a value are omitted.
func Encode(form model.Form, values model.Values) url.Values {
	out := url.Values{}
	for _, field := range form.ValueFields() {
		value, ok := values[field.Name]
		if !ok || value == nil {
			continue
		}
		switch v := value.(type) {
		case bool:
			out.Set(field.Name, strconv.FormatBool(v))
		case map[string]any:
			parts := dates.FromMap(v)
			for key, n := range map[string]int{dates.MonthKey: parts.Month, dates.DayKey: parts.Day, dates.YearKey: parts.Year} {
				if n != 0 {
					out.Set(field.Name+"."+key, strconv.Itoa(n))
				}
			}
		case string:
			if v != "" {
				out.Set(field.Name, v)
			}
		default:
			out.Set(field.Name, fmt.Sprint(v))
		}
	}
	return out
}
