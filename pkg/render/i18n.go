package render

import (
	"strings"

	"github.com/goliatone/go-formpages/pkg/i18n"
	"github.com/goliatone/go-formpages/pkg/model"
)

// LocalizeForm rewrites the form in place, resolving every `*Key` attribute
// through t. The plain attribute is the fallback when a key is missing; with
// neither present the key itself is shown.
//
// Hints are interpolated with `href` and `modal` taken from the modal the
// field links to, so catalog entries can embed the help link.
func LocalizeForm(form *model.Form, locale string, t i18n.Translator) {
	if form == nil {
		return
	}

	form.Title = localize(t, locale, form.TitleKey, form.Title)
	form.SubmitLabel = localize(t, locale, form.SubmitLabelKey, form.SubmitLabel)

	modals := make(map[string]model.Modal, len(form.Modals))
	for i := range form.Modals {
		modal := &form.Modals[i]
		modal.Heading = localize(t, locale, modal.HeadingKey, modal.Heading)
		modal.Continue = localize(t, locale, modal.ContinueKey, modal.Continue)
		modal.Cancel = localize(t, locale, modal.CancelKey, modal.Cancel)
		modals[modal.ID] = *modal
	}

	form.Walk(func(field *model.Field, _ *model.Field) bool {
		field.Label = localize(t, locale, field.LabelKey, field.Label)
		if field.HintKey != "" {
			var args []any
			if modal, ok := modals[field.ModalID]; ok {
				args = append(args, map[string]any{"href": modal.Href, "modal": modal.ID})
			}
			field.Hint = localize(t, locale, field.HintKey, field.Hint, args...)
		}
		for i := range field.Options {
			opt := &field.Options[i]
			opt.Label = localize(t, locale, opt.LabelKey, opt.Label)
		}
		return true
	})
}

func localize(t i18n.Translator, locale, key, fallback string, args ...any) string {
	if strings.TrimSpace(key) == "" {
		return fallback
	}
	return i18n.Must(t, locale, key, fallback, args...)
}
