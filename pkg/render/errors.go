package render

import (
	"sort"
	"strings"

	"github.com/goliatone/go-formpages/pkg/dates"
	"github.com/goliatone/go-formpages/pkg/model"
)

// ErrorMapping splits an error payload into field-level and form-level
// messages keyed by the dotted field paths renderers understand.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MapErrors normalises error payloads (dotted paths, JSON pointers such as
// "/body/when/month", bracketed keys) onto the form's field paths. Unknown
// paths become form-level errors so messages are never dropped.
func MapErrors(form model.Form, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{}
	if len(payload) == 0 {
		return mapping
	}

	known := fieldPaths(form)
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, raw := range keys {
		messages := normalizeMessages(payload[raw])
		if len(messages) == 0 {
			continue
		}
		path := matchPath(raw, known)
		if path == "" {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		if mapping.Fields == nil {
			mapping.Fields = make(map[string][]string)
		}
		mapping.Fields[path] = normalizeMessages(append(mapping.Fields[path], messages...))
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// MergeFormErrors concatenates form-level errors, trimming and removing
// duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// FieldErrors returns the messages for name and any sub-path under it, so a
// date group shows the errors of its month, day and year inputs.
func FieldErrors(errs map[string][]string, name string) []string {
	if len(errs) == 0 || name == "" {
		return nil
	}
	var out []string
	out = append(out, errs[name]...)
	for _, part := range []string{dates.MonthKey, dates.DayKey, dates.YearKey} {
		out = append(out, errs[name+"."+part]...)
	}
	return normalizeMessages(out)
}

func fieldPaths(form model.Form) map[string]struct{} {
	paths := make(map[string]struct{})
	for _, field := range form.ValueFields() {
		paths[field.Name] = struct{}{}
		if field.Kind == model.KindDate {
			for _, part := range []string{dates.MonthKey, dates.DayKey, dates.YearKey} {
				paths[field.Name+"."+part] = struct{}{}
			}
		}
	}
	return paths
}

var wrapperSegments = map[string]struct{}{
	"body":    {},
	"request": {},
	"payload": {},
	"data":    {},
	"values":  {},
}

func matchPath(raw string, known map[string]struct{}) string {
	segments := splitPath(raw)
	for len(segments) > 0 {
		if _, ok := wrapperSegments[strings.ToLower(segments[0])]; !ok {
			break
		}
		segments = segments[1:]
	}
	for end := len(segments); end > 0; end-- {
		candidate := strings.Join(segments[:end], ".")
		if _, ok := known[candidate]; ok {
			return candidate
		}
	}
	return ""
}

func splitPath(raw string) []string {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimLeft(clean, "#$./")
	clean = strings.NewReplacer("[", ".", "]", "", "'", "", `"`, "").Replace(clean)
	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := parts[:0]
	for _, part := range parts {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
