// Package validation checks submitted form values against a declarative
// schema.
//
// A Schema pairs a typed values struct annotated with go-playground/validator
// tags (`required`, `oneof`, `eqfield`, ...) with the rules struct tags cannot
// express: conditional requirements written in the visibility rule language
// and required date triples. Date validity is checked for every dates.Parts
// the validator walks. Failures come back as Errors keyed by the dotted field
// path the renderers use, with messages already translated.
package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-formpages/pkg/dates"
	"github.com/goliatone/go-formpages/pkg/i18n"
	"github.com/goliatone/go-formpages/pkg/model"
	"github.com/goliatone/go-formpages/pkg/visibility"
	"github.com/goliatone/go-formpages/pkg/visibility/expr"
)

// Message keys used when a schema does not override the message.
const (
	KeyRequired    = "validation.required"
	KeyOneOf       = "validation.oneOf"
	KeyMismatch    = "validation.mismatch"
	KeyNumber      = "validation.number"
	KeyBoolean     = "validation.boolean"
	KeyInvalid     = "validation.invalid"
	KeyInvalidDate = "components:dateInput.error.invalid"
)

// TagValidDate is the tag reported for impossible calendar dates.
const TagValidDate = "validdate"

var defaultMessageKeys = map[string]string{
	"required":   KeyRequired,
	"oneof":      KeyOneOf,
	"eqfield":    KeyMismatch,
	TagValidDate: KeyInvalidDate,
	"number":     KeyNumber,
	"boolean":    KeyBoolean,
}

// Schema describes how one form's values are validated.
type Schema struct {
	// New returns a pointer to the typed values struct. JSON tags must match
	// the form field names.
	New func() any
	// RequiredWhen maps a field name to a rule; when the rule holds the field
	// must have a value.
	RequiredWhen map[string]string
	// RequiredDates lists date fields whose month, day and year are required.
	RequiredDates []string
	// Messages overrides messages. Keys are "field.tag" or "field"; values are
	// translation keys or literal text.
	Messages map[string]string
}

// Options carries per-call inputs.
type Options struct {
	Locale string
	Extras map[string]any
}

// Validator runs schemas. It is safe for concurrent use.
type Validator struct {
	validate   *validator.Validate
	evaluator  visibility.Evaluator
	translator i18n.Translator
}

// Option configures a Validator.
type Option func(*Validator)

// WithTranslator sets the translator used for messages.
func WithTranslator(t i18n.Translator) Option {
	return func(v *Validator) {
		v.translator = t
	}
}

// WithEvaluator overrides the rule evaluator used for RequiredWhen.
func WithEvaluator(e visibility.Evaluator) Option {
	return func(v *Validator) {
		if e != nil {
			v.evaluator = e
		}
	}
}

// New constructs a Validator.
func New(options ...Option) *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)
	validate.RegisterStructValidation(validateDateParts, dates.Parts{})

	v := &Validator{
		validate:  validate,
		evaluator: expr.New(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

// validateDateParts flags partially or wrongly filled dates on the month
// input, matching where date inputs show their error.
func validateDateParts(sl validator.StructLevel) {
	parts, ok := sl.Current().Interface().(dates.Parts)
	if !ok || parts.IsZero() {
		return
	}
	// Without a month the date is only reported as incomplete, by RequiredDates.
	if parts.Month != 0 && !dates.IsValid(parts) {
		sl.ReportError(parts.Month, dates.MonthKey, "Month", TagValidDate, "")
	}
}

// Validate checks values against schema. The returned error is reserved for
// misconfigured schemas; user input problems are reported through Errors.
func (v *Validator) Validate(ctx context.Context, schema Schema, values model.Values, opts Options) (Errors, error) {
	if schema.New == nil {
		return nil, errors.New("validation: schema has no values constructor")
	}
	target := schema.New()
	if reflect.ValueOf(target).Kind() != reflect.Pointer {
		return nil, fmt.Errorf("validation: schema constructor must return a pointer, got %T", target)
	}

	errs := Errors{}
	if err := decodeInto(values, target); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return nil, fmt.Errorf("validation: decode values: %w", err)
		}
		errs.Add(typeErr.Field, v.Message(schema, opts.Locale, typeErr.Field, typeTag(typeErr.Type)))
	}

	if err := v.validate.StructCtx(ctx, target); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, fmt.Errorf("validation: %w", err)
		}
		for _, fe := range fieldErrs {
			path := trimRootNamespace(fe.Namespace())
			if errs.Has(path) {
				continue
			}
			errs.Add(path, v.Message(schema, opts.Locale, path, fe.Tag()))
		}
	}

	for _, name := range schema.RequiredDates {
		parts := dates.FromMap(values[name])
		for _, part := range []struct {
			key   string
			value int
		}{{dates.MonthKey, parts.Month}, {dates.DayKey, parts.Day}, {dates.YearKey, parts.Year}} {
			path := name + "." + part.key
			if part.value == 0 && !errs.Has(path) {
				errs.Add(path, v.Message(schema, opts.Locale, path, "required"))
			}
		}
	}

	if err := v.checkRequiredWhen(schema, values, opts, errs); err != nil {
		return nil, err
	}

	if len(errs) == 0 {
		return nil, nil
	}
	return errs, nil
}

func (v *Validator) checkRequiredWhen(schema Schema, values model.Values, opts Options, errs Errors) error {
	if len(schema.RequiredWhen) == 0 {
		return nil
	}
	ctx := visibility.Context{Values: values, Extras: opts.Extras}
	fields := make([]string, 0, len(schema.RequiredWhen))
	for field := range schema.RequiredWhen {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		rule := schema.RequiredWhen[field]
		required, err := v.evaluator.Eval(field, rule, ctx)
		if err != nil {
			return fmt.Errorf("validation: required-when rule for %s: %w", field, err)
		}
		if required && isEmpty(values[field]) && !errs.Has(field) {
			errs.Add(field, v.Message(schema, opts.Locale, field, "required"))
		}
	}
	return nil
}

// Problems converts decode problems (path -> validator tag, as produced by
// formstate.Decode) into translated Errors.
func (v *Validator) Problems(schema Schema, locale string, problems map[string]string) Errors {
	if len(problems) == 0 {
		return nil
	}
	errs := Errors{}
	for path, tag := range problems {
		errs.Add(path, v.Message(schema, locale, path, tag))
	}
	return errs
}

// Message resolves the message for a failed tag on path: a schema override
// first, then the default key for the tag.
func (v *Validator) Message(schema Schema, locale, path, tag string) string {
	candidates := []string{path + "." + tag, path}
	for _, key := range candidates {
		if msg, ok := schema.Messages[key]; ok {
			return i18n.Must(v.translator, locale, msg, msg)
		}
	}
	key, ok := defaultMessageKeys[tag]
	if !ok {
		key = KeyInvalid
	}
	return i18n.Must(v.translator, locale, key, fallbackText(key))
}

func fallbackText(key string) string {
	switch key {
	case KeyRequired:
		return "This field is required"
	case KeyOneOf:
		return "Select one of the listed options"
	case KeyMismatch:
		return "The values do not match"
	case KeyNumber:
		return "Enter a number"
	case KeyBoolean:
		return "Select yes or no"
	case KeyInvalidDate:
		return "Please enter a valid date"
	default:
		return "This value is not valid"
	}
}

// typeTag names the tag reported when a value cannot be decoded into t.
func typeTag(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "invalid"
	}
	switch t.Kind() {
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	default:
		return "invalid"
	}
}

func decodeInto(values model.Values, target any) error {
	payload, err := json.Marshal(values)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	return dec.Decode(target)
}

// trimRootNamespace drops the struct type name validator prefixes to every
// namespace ("ExampleValues.bestBeverage" -> "bestBeverage").
func trimRootNamespace(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == "" || v == model.EmptyOption
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}
