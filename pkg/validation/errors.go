package validation

import (
	"sort"
	"strings"
)

// Errors maps a dotted field path to its messages.
type Errors map[string][]string

// Add appends a message for path, ignoring blanks and duplicates.
func (e Errors) Add(path, message string) {
	path = strings.TrimSpace(path)
	message = strings.TrimSpace(message)
	if path == "" || message == "" {
		return
	}
	for _, existing := range e[path] {
		if existing == message {
			return
		}
	}
	e[path] = append(e[path], message)
}

// Has reports whether path already carries a message.
func (e Errors) Has(path string) bool {
	return len(e[path]) > 0
}

// Fields returns the failing paths in sorted order.
func (e Errors) Fields() []string {
	out := make([]string, 0, len(e))
	for path := range e {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// Error summarises the failing fields so Errors can travel as an error.
func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation: no errors"
	}
	return "validation: invalid fields: " + strings.Join(e.Fields(), ", ")
}
