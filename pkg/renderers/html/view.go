package html

import (
	"net/url"
	"sort"
	"strconv"

	"github.com/goliatone/go-formpages/pkg/dates"
	"github.com/goliatone/go-formpages/pkg/formstate"
	"github.com/goliatone/go-formpages/pkg/i18n"
	"github.com/goliatone/go-formpages/pkg/model"
	"github.com/goliatone/go-formpages/pkg/render"
)

type optionView struct {
	Label    string `json:"label"`
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

type datePartView struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Label   string `json:"label"`
	Value   string `json:"value"`
	Invalid bool   `json:"invalid"`
	Size    int    `json:"size"`
}

type entryView struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type fieldView struct {
	Kind       string         `json:"kind"`
	Name       string         `json:"name"`
	Label      string         `json:"label"`
	Hint       string         `json:"hint,omitempty"`
	InputType  string         `json:"input_type,omitempty"`
	Value      string         `json:"value,omitempty"`
	Errors     []string       `json:"errors,omitempty"`
	Watch      bool           `json:"watch"`
	Required   bool           `json:"required"`
	Options    []optionView   `json:"options,omitempty"`
	EmptyLabel string         `json:"empty_label,omitempty"`
	EmptyValue string         `json:"empty_value,omitempty"`
	Parts      []datePartView `json:"parts,omitempty"`
	Entries    []entryView    `json:"entries,omitempty"`
	Children   string         `json:"children,omitempty"`
}

type viewBuilder struct {
	opts    render.RenderOptions
	watched map[string]bool
}

func newViewBuilder(opts render.RenderOptions) viewBuilder {
	watched := make(map[string]bool, len(opts.Watched))
	for _, name := range opts.Watched {
		watched[name] = true
	}
	return viewBuilder{opts: opts, watched: watched}
}

func (b viewBuilder) t(key, fallback string) string {
	return i18n.Must(b.opts.Translator, b.opts.Locale, key, fallback)
}

func (b viewBuilder) field(field model.Field) fieldView {
	view := fieldView{
		Kind:      string(field.Kind),
		Name:      field.Name,
		Label:     field.Label,
		Hint:      SanitizeHint(field.Hint),
		InputType: field.InputType,
		Errors:    render.FieldErrors(b.opts.Errors, field.Name),
		Watch:     b.watched[field.Name],
		Required:  field.Required,
	}
	value := b.opts.Values[field.Name]

	switch field.Kind {
	case model.KindText:
		if view.InputType == "" {
			view.InputType = "text"
		}
		if s, ok := value.(string); ok {
			view.Value = s
		}
	case model.KindYesNo:
		if v, ok := value.(bool); ok {
			view.Value = strconv.FormatBool(v)
		}
		view.Options = []optionView{
			{Label: b.t("components.yesNo.yes", "Yes"), Value: "true", Selected: view.Value == "true"},
			{Label: b.t("components.yesNo.no", "No"), Value: "false", Selected: view.Value == "false"},
		}
	case model.KindRadio, model.KindDropdown:
		selected, _ := value.(string)
		view.Value = selected
		for _, opt := range field.Options {
			view.Options = append(view.Options, optionView{
				Label:    opt.Label,
				Value:    opt.Value,
				Selected: selected != "" && opt.Value == selected,
			})
		}
		if field.Kind == model.KindDropdown && field.StartEmpty {
			view.EmptyLabel = b.t("components.dropdown.empty", model.EmptyOption)
			view.EmptyValue = model.EmptyOption
		}
	case model.KindDate:
		parts := dates.FromMap(value)
		view.Parts = []datePartView{
			b.datePart(field.Name, dates.MonthKey, "components.dateInput.month", "Month", parts.Month, 2),
			b.datePart(field.Name, dates.DayKey, "components.dateInput.day", "Day", parts.Day, 2),
			b.datePart(field.Name, dates.YearKey, "components.dateInput.year", "Year", parts.Year, 4),
		}
	case model.KindImported:
		view.Value = field.Value
	case model.KindImportedBox:
		for _, child := range field.Children {
			if child.Kind == model.KindImported {
				view.Entries = append(view.Entries, entryView{Label: child.Label, Value: child.Value})
			}
		}
	}
	return view
}

func (b viewBuilder) datePart(field, key, labelKey, fallback string, value, size int) datePartView {
	path := field + "." + key
	part := datePartView{
		Key:     key,
		Name:    path,
		Label:   b.t(labelKey, fallback),
		Invalid: len(b.opts.Errors[path]) > 0,
		Size:    size,
	}
	if value != 0 {
		part.Value = strconv.Itoa(value)
	}
	return part
}

// carried returns hidden inputs for values the page must keep but does not
// show: values of hidden fields, plus the `_prev.` snapshot of every watched
// field used to detect changes on the next post.
func carried(form model.Form, opts render.RenderOptions) []render.HiddenField {
	var out []render.HiddenField
	add := func(prefix string, values url.Values) {
		keys := make([]string, 0, len(values))
		for key := range values {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			out = append(out, render.Hidden(prefix+key, values.Get(key)))
		}
	}

	var hidden []model.Field
	collectHidden(form.Fields, "", opts, false, &hidden)
	add("", formstate.Encode(model.Form{Fields: hidden}, opts.Values))

	if len(opts.Watched) > 0 {
		watched := make(model.Values, len(opts.Watched))
		for _, name := range opts.Watched {
			if value, ok := opts.Values[name]; ok {
				watched[name] = value
			}
		}
		add(formstate.PreviousPrefix, formstate.Encode(form, watched))
	}
	return out
}

func collectHidden(fields []model.Field, prefix string, opts render.RenderOptions, parentHidden bool, out *[]model.Field) {
	for i, field := range fields {
		hidden := parentHidden || !opts.IsVisible(formstate.FieldKey(prefix, i, field))
		if hidden && field.HoldsValue() && field.Kind != model.KindImported {
			*out = append(*out, model.Field{Name: field.Name, Kind: field.Kind})
		}
		if len(field.Children) > 0 {
			collectHidden(field.Children, formstate.IndexPath(prefix, i), opts, hidden, out)
		}
	}
}
