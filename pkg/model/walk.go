package model

// HoldsValue reports whether the field contributes an entry to Values.
func (f Field) HoldsValue() bool {
	switch f.Kind {
	case KindSection, KindImportedBox:
		return false
	default:
		return f.Name != ""
	}
}

// OptionValues returns the raw option values in declaration order.
func (f Field) OptionValues() []string {
	if len(f.Options) == 0 {
		return nil
	}
	out := make([]string, 0, len(f.Options))
	for _, opt := range f.Options {
		out = append(out, opt.Value)
	}
	return out
}

// WalkFunc receives every field in depth-first order along with its parent
// (nil for top-level fields). Returning false skips the field's children.
type WalkFunc func(field *Field, parent *Field) bool

// Walk visits the form's fields depth-first. Fields are passed by pointer so
// callers such as the localiser can rewrite them in place.
func (f *Form) Walk(fn WalkFunc) {
	if f == nil || fn == nil {
		return
	}
	walkFields(f.Fields, nil, fn)
}

func walkFields(fields []Field, parent *Field, fn WalkFunc) {
	for i := range fields {
		field := &fields[i]
		if !fn(field, parent) {
			continue
		}
		if len(field.Children) > 0 {
			walkFields(field.Children, field, fn)
		}
	}
}

// Lookup returns the first field with the given name.
func (f Form) Lookup(name string) (Field, bool) {
	var (
		found Field
		ok    bool
	)
	f.Walk(func(field *Field, _ *Field) bool {
		if ok {
			return false
		}
		if field.Name == name && name != "" {
			found, ok = *field, true
			return false
		}
		return true
	})
	return found, ok
}

// ValueFields lists every value-bearing field in document order.
func (f Form) ValueFields() []Field {
	var out []Field
	f.Walk(func(field *Field, _ *Field) bool {
		if field.HoldsValue() {
			out = append(out, *field)
		}
		return true
	})
	return out
}
