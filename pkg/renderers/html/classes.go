package html

// ChromeClass is a CSS class the templates put on structural elements. The
// names follow the U.S. Web Design System so USWDS stylesheets apply.
type ChromeClass string

const (
	ClassForm         ChromeClass = "usa-form fp-form"
	ClassFormGroup    ChromeClass = "usa-form-group"
	ClassGroupError   ChromeClass = "usa-form-group--error"
	ClassErrorMessage ChromeClass = "usa-error-message"
	ClassSummary      ChromeClass = "usa-alert usa-alert--error fp-errors"
	ClassNotice       ChromeClass = "usa-alert usa-alert--success fp-notice"
	ClassImportedBox  ChromeClass = "fp-imported"
	ClassSection      ChromeClass = "fp-section"
	ClassButton       ChromeClass = "usa-button"
)

func chromeClasses() map[string]string {
	return map[string]string{
		"form":          string(ClassForm),
		"group":         string(ClassFormGroup),
		"group_error":   string(ClassGroupError),
		"error_message": string(ClassErrorMessage),
		"summary":       string(ClassSummary),
		"notice":        string(ClassNotice),
		"imported":      string(ClassImportedBox),
		"section":       string(ClassSection),
		"button":        string(ClassButton),
	}
}
