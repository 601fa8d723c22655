package formstate

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/goliatone/go-formpages/pkg/model"
	"github.com/goliatone/go-formpages/pkg/visibility"
)

// ApplyResets runs the reset rules of every field whose value differs
// between previous and next. Matching rules remove their target fields from
// the returned copy of next, returning them to their unset default.
func (e *Engine) ApplyResets(form model.Form, previous, next model.Values, extras map[string]any) (model.Values, error) {
	out := next.Clone()
	ctx := visibility.Context{Values: out, Extras: extras}

	var err error
	form.Walk(func(field *model.Field, _ *model.Field) bool {
		if err != nil || len(field.Resets) == 0 || !field.HoldsValue() {
			return err == nil
		}
		if reflect.DeepEqual(previous[field.Name], next[field.Name]) {
			return true
		}
		for _, rule := range field.Resets {
			matched, evalErr := e.evaluator.Eval(field.Name, rule.When, ctx)
			if evalErr != nil {
				err = fmt.Errorf("formstate: reset rule on %s: %w", field.Name, evalErr)
				return false
			}
			if !matched {
				continue
			}
			for _, target := range rule.Fields {
				delete(out, target)
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Visible evaluates VisibleWhen for every named or structural field. A field
// nested inside a hidden parent is hidden too. The result is keyed by field
// name; unnamed structural fields are keyed by their index path ("#2.0").
func (e *Engine) Visible(form model.Form, values model.Values, extras map[string]any) (map[string]bool, error) {
	ctx := visibility.Context{Values: values, Extras: extras}
	out := make(map[string]bool)
	if err := e.visible(form.Fields, "", true, ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) visible(fields []model.Field, prefix string, parentVisible bool, ctx visibility.Context, out map[string]bool) error {
	for i, field := range fields {
		key := FieldKey(prefix, i, field)
		shown := parentVisible
		if shown && field.VisibleWhen != "" {
			ok, err := e.evaluator.Eval(key, field.VisibleWhen, ctx)
			if err != nil {
				return fmt.Errorf("formstate: visibility rule on %s: %w", key, err)
			}
			shown = ok
		}
		out[key] = shown
		if len(field.Children) > 0 {
			if err := e.visible(field.Children, IndexPath(prefix, i), shown, ctx, out); err != nil {
				return err
			}
		}
	}
	return nil
}

// FieldKey returns the key Visible uses for a field: its name when it has
// one, otherwise its index path.
func FieldKey(prefix string, index int, field model.Field) string {
	if field.Name != "" {
		return field.Name
	}
	return IndexPath(prefix, index)
}

// IndexPath is the prefix Visible uses for the children of the field at
// index under prefix.
func IndexPath(prefix string, index int) string {
	if prefix == "" {
		return fmt.Sprintf("#%d", index)
	}
	return fmt.Sprintf("%s.%d", prefix, index)
}

// Watched lists, in sorted order, the fields read by any visibility or reset
// rule. Renderers mark these inputs so a change triggers a refresh.
func (e *Engine) Watched(form model.Form) ([]string, error) {
	if e.resolver == nil {
		return nil, nil
	}
	seen := make(map[string]struct{})
	var err error
	collect := func(rule string) {
		if rule == "" || err != nil {
			return
		}
		deps, depErr := e.resolver.Dependencies(rule)
		if depErr != nil {
			err = fmt.Errorf("formstate: watched fields: %w", depErr)
			return
		}
		for _, dep := range deps {
			seen[dep] = struct{}{}
		}
	}

	form.Walk(func(field *model.Field, _ *model.Field) bool {
		collect(field.VisibleWhen)
		if len(field.Resets) > 0 && field.Name != "" {
			seen[field.Name] = struct{}{}
		}
		for _, rule := range field.Resets {
			collect(rule.When)
		}
		return err == nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// Imported returns the display values of named imported entries. They are
// read-only, so callers overlay them on decoded input.
func Imported(form model.Form) model.Values {
	out := model.Values{}
	form.Walk(func(field *model.Field, _ *model.Field) bool {
		if field.Kind == model.KindImported && field.Name != "" && field.Value != "" {
			out[field.Name] = field.Value
		}
		return true
	})
	return out
}
