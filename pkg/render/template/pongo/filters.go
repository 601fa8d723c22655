package pongo

import (
	"strings"
	"unicode"

	"github.com/flosch/pongo2/v6"
)

func registerDefaultFilters() {
	if !pongo2.FilterExists("trim") {
		_ = pongo2.RegisterFilter("trim", filterTrim)
	}
	if !pongo2.FilterExists("domid") {
		_ = pongo2.RegisterFilter("domid", filterDOMID)
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

// filterDOMID turns a field path such as "dateOfBirth.month" into an id
// attribute value ("fg-dateOfBirth-month"). An optional parameter replaces
// the "fg" prefix.
func filterDOMID(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	prefix := "fg"
	if param != nil && !param.IsNil() && param.String() != "" {
		prefix = param.String()
	}
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteByte('-')
	for _, r := range strings.TrimSpace(in.String()) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return pongo2.AsValue(b.String()), nil
}
