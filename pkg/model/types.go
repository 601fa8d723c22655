package model

// FieldKind enumerates the field components a form can be composed from.
type FieldKind string

const (
	KindText        FieldKind = "text"
	KindYesNo       FieldKind = "yesNo"
	KindRadio       FieldKind = "radio"
	KindDropdown    FieldKind = "dropdown"
	KindDate        FieldKind = "date"
	KindImported    FieldKind = "imported"
	KindImportedBox FieldKind = "importedBox"
	KindSection     FieldKind = "section"
)

// EmptyOption is the sentinel value a dropdown submits when nothing has been
// picked yet. It is treated as unset.
const EmptyOption = "- Select -"

// Option is a single choice offered by radio and dropdown fields.
type Option struct {
	Label    string `json:"label"`
	LabelKey string `json:"labelKey,omitempty"`
	Value    string `json:"value"`
}

// ResetRule clears Fields back to their default whenever the owning field
// changes to a value satisfying When.
type ResetRule struct {
	When   string   `json:"when"`
	Fields []string `json:"fields"`
}

// Field models a single component inside a form. Label doubles as the
// question for yes/no fields and as the legend for radio and date groups.
type Field struct {
	Name        string      `json:"name,omitempty"`
	Kind        FieldKind   `json:"kind"`
	Label       string      `json:"label,omitempty"`
	LabelKey    string      `json:"labelKey,omitempty"`
	Hint        string      `json:"hint,omitempty"`
	HintKey     string      `json:"hintKey,omitempty"`
	InputType   string      `json:"inputType,omitempty"`
	Options     []Option    `json:"options,omitempty"`
	StartEmpty  bool        `json:"startEmpty,omitempty"`
	Required    bool        `json:"required,omitempty"`
	VisibleWhen string      `json:"visibleWhen,omitempty"`
	Resets      []ResetRule `json:"resets,omitempty"`
	Children    []Field     `json:"children,omitempty"`
	// Value is the display value of an imported entry.
	Value   string `json:"value,omitempty"`
	ModalID string `json:"modalId,omitempty"`
}

// Modal describes a confirmation dialog a hint link can open.
type Modal struct {
	ID          string `json:"id"`
	Heading     string `json:"heading,omitempty"`
	HeadingKey  string `json:"headingKey,omitempty"`
	Continue    string `json:"continue,omitempty"`
	ContinueKey string `json:"continueKey,omitempty"`
	Cancel      string `json:"cancel,omitempty"`
	CancelKey   string `json:"cancelKey,omitempty"`
	Href        string `json:"href"`
}

// Form is the top-level representation renderers consume.
type Form struct {
	ID             string            `json:"id"`
	Title          string            `json:"title,omitempty"`
	TitleKey       string            `json:"titleKey,omitempty"`
	Action         string            `json:"action"`
	Method         string            `json:"method"`
	SubmitLabel    string            `json:"submitLabel,omitempty"`
	SubmitLabelKey string            `json:"submitLabelKey,omitempty"`
	Fields         []Field           `json:"fields"`
	Modals         []Modal           `json:"modals,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// Values is the flat mapping from field name to its current value. Scalars are
// strings or bools; date fields hold a map with month, day and year ints.
// Unset fields are absent.
type Values map[string]any

// Clone returns a shallow copy with nested date maps copied as well.
func (v Values) Clone() Values {
	if v == nil {
		return Values{}
	}
	out := make(Values, len(v))
	for key, value := range v {
		if nested, ok := value.(map[string]any); ok {
			copied := make(map[string]any, len(nested))
			for k, n := range nested {
				copied[k] = n
			}
			out[key] = copied
			continue
		}
		out[key] = value
	}
	return out
}
