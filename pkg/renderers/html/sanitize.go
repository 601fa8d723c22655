package html

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	hintPolicyOnce sync.Once
	hintPolicy     *bluemonday.Policy
)

// SanitizeHint strips hint markup down to inline text formatting and links.
// Links may carry data-fg-modal-open so the runtime can route them through a
// confirmation modal.
func SanitizeHint(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(hintSanitizer().Sanitize(trimmed))
}

func hintSanitizer() *bluemonday.Policy {
	hintPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("strong", "em", "b", "i", "br", "span")
		policy.AllowAttrs("href", "data-fg-modal-open").OnElements("a")
		policy.AllowURLSchemes("https", "http", "mailto")
		policy.RequireParseableURLs(true)
		policy.AddTargetBlankToFullyQualifiedLinks(true)
		hintPolicy = policy
	})
	return hintPolicy
}
