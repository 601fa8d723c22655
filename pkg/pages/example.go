package pages

import (
	"github.com/goliatone/go-formpages/pkg/dates"
	"github.com/goliatone/go-formpages/pkg/model"
	"github.com/goliatone/go-formpages/pkg/validation"
)

// ExampleID identifies the developer example form.
const ExampleID = "example"

// Form library choices offered by the example form.
const (
	LibraryFormik        = "formik"
	LibraryReactHookForm = "reactHookForm"
)

// ExampleValues is the typed shape of an example form submission.
type ExampleValues struct {
	DoYouLikeForms             *bool       `json:"doYouLikeForms" validate:"required"`
	WhenDidYouStartLikingForms dates.Parts `json:"whenDidYouStartLikingForms"`
	FormLibraryPreference      string      `json:"formLibraryPreference" validate:"required,oneof=formik reactHookForm"`
	WhyIsFormikBad             string      `json:"whyIsFormikBad"`
	BestBeverage               string      `json:"bestBeverage" validate:"required,ne=- Select -"`
}

// Example returns the definition of the example form that exercises every
// field component.
func Example() Definition {
	return Definition{
		ID:           ExampleID,
		Title:        "Example form",
		Build:        buildExample,
		Defaults:     func(Props) model.Values { return model.Values{} },
		SubmittedKey: "pages.example.submitted",
		Schema: validation.Schema{
			New: func() any { return &ExampleValues{} },
			RequiredWhen: map[string]string{
				"whyIsFormikBad": `formLibraryPreference == "reactHookForm"`,
			},
			RequiredDates: []string{"whenDidYouStartLikingForms"},
			Messages: map[string]string{
				"bestBeverage": "pages.example.errors.bestBeverage",
			},
		},
	}
}

func buildExample(Props) model.Form {
	return model.Form{
		ID:    ExampleID,
		Title: "Example form",
		Fields: []model.Field{
			{
				Kind: model.KindImportedBox,
				Children: []model.Field{
					{Kind: model.KindImported, Label: "Profession", Value: "Software Engineer"},
					{Kind: model.KindImported, Label: "Hobbies", Value: "Entomology"},
				},
			},
			{Name: "doYouLikeForms", Kind: model.KindYesNo, Label: "Do you like forms?", Required: true},
			{Name: "whenDidYouStartLikingForms", Kind: model.KindDate, Label: "What exact day you start liking forms?", Required: true},
			{
				Name:     "formLibraryPreference",
				Kind:     model.KindRadio,
				Label:    "Which form Library is better?",
				Required: true,
				Options: []model.Option{
					{Label: LibraryFormik, Value: LibraryFormik},
					{Label: LibraryReactHookForm, Value: LibraryReactHookForm},
				},
				Resets: []model.ResetRule{
					{When: `formLibraryPreference == "formik"`, Fields: []string{"whyIsFormikBad"}},
				},
			},
			{
				Name:        "whyIsFormikBad",
				Kind:        model.KindText,
				Label:       "Why is Formik bad?",
				InputType:   "text",
				VisibleWhen: `formLibraryPreference && formLibraryPreference != "formik"`,
			},
			{
				Name:       "bestBeverage",
				Kind:       model.KindDropdown,
				Label:      "Which beverage is best while coding?",
				StartEmpty: true,
				Required:   true,
				Options: []model.Option{
					{Label: "Water", Value: "water"},
					{Label: "Kombucha", Value: "kombucha"},
					{Label: "Coffee", Value: "coffee"},
					{Label: "Tea", Value: "tea"},
					{Label: "Soda", Value: "soda"},
				},
			},
		},
	}
}
