package pages

import (
	"github.com/goliatone/go-formpages/pkg/dates"
	"github.com/goliatone/go-formpages/pkg/model"
	"github.com/goliatone/go-formpages/pkg/validation"
)

// IdentityID identifies the identity intake page.
const IdentityID = "identity"

// Props read by the identity page.
const (
	PropImportedDateOfBirth = "importedDateOfBirth"
	PropImportedSSN         = "importedSsn"
)

// ImmigrationHelpModalID is the dialog opened from the registration number
// hint.
const ImmigrationHelpModalID = "alien-registration-number-link-modal"

// ImmigrationHelpURL is where the help dialog sends the user.
const ImmigrationHelpURL = "https://www.immigrationhelp.org/learning-center/what-is-an-alien-registration-number/"

// Work authorization answers.
const (
	WorkAuthUSCitizenOrNational             = "usCitizenOrNational"
	WorkAuthPermanentResident               = "permanentResident"
	WorkAuthH1BVisa                         = "h1bVisa"
	WorkAuthEmploymentAuthorizationDocument = "employmentAuthorizationDocument"
	WorkAuthNotLegallyAllowedToWorkInUS     = "notLegallyAllowedToWorkInUS"
)

// WorkAuthorizationTypes lists the work authorization answers in display
// order.
var WorkAuthorizationTypes = []string{
	WorkAuthUSCitizenOrNational,
	WorkAuthPermanentResident,
	WorkAuthH1BVisa,
	WorkAuthEmploymentAuthorizationDocument,
	WorkAuthNotLegallyAllowedToWorkInUS,
}

// IdentityValues is the typed shape of an identity submission. Date of birth
// and SSN stay strings because they usually arrive imported as display text.
type IdentityValues struct {
	DateOfBirth                           string      `json:"dateOfBirth"`
	SSN                                   string      `json:"ssn"`
	HasDriversLicenseOrStateID            *bool       `json:"hasDriversLicenseOrStateId"`
	DriversLicenseOrStateIDNumber         string      `json:"driversLicenseOrStateIdNumber"`
	WorkAuthorizationType                 string      `json:"workAuthorizationType" validate:"omitempty,oneof=usCitizenOrNational permanentResident h1bVisa employmentAuthorizationDocument notLegallyAllowedToWorkInUS"`
	ImmigrationDocumentFirstName          string      `json:"immigrationDocumentFirstName"`
	ImmigrationDocumentMiddleInitial      string      `json:"immigrationDocumentMiddleInitial"`
	ImmigrationDocumentLastName           string      `json:"immigrationDocumentLastName"`
	HasUscisOrAlienRegistrationNumber     *bool       `json:"hasUscisOrAlienRegistrationNumber"`
	UscisOrAlienRegistrationNumber        string      `json:"uscisOrAlienRegistrationNumber"`
	ConfirmUscisOrAlienRegistrationNumber string      `json:"confirmUscisOrAlienRegistrationNumber" validate:"omitempty,eqfield=UscisOrAlienRegistrationNumber"`
	CountryOfOrigin                       string      `json:"countryOfOrigin"`
	ImmigrationDocumentIssueDate          dates.Parts `json:"immigrationDocumentIssueDate"`
	ImmigrationDocumentExpirationDate     dates.Parts `json:"immigrationDocumentExpirationDate"`
}

// countries offered by the country of origin dropdown, keyed by ISO 3166
// code.
var countries = []model.Option{
	{Label: "China", Value: "CN"},
	{Label: "Cuba", Value: "CU"},
	{Label: "Dominican Republic", Value: "DO"},
	{Label: "El Salvador", Value: "SV"},
	{Label: "Guatemala", Value: "GT"},
	{Label: "Honduras", Value: "HN"},
	{Label: "India", Value: "IN"},
	{Label: "Mexico", Value: "MX"},
	{Label: "Philippines", Value: "PH"},
	{Label: "Vietnam", Value: "VN"},
}

// Identity returns the definition of the identity intake page.
func Identity() Definition {
	return Definition{
		ID:           IdentityID,
		Title:        "Identity",
		Build:        buildIdentity,
		Defaults:     identityDefaults,
		SubmittedKey: "pages.identity.submitted",
		PropKeys:     []string{PropImportedDateOfBirth, PropImportedSSN},
		Schema: validation.Schema{
			New: func() any { return &IdentityValues{} },
		},
	}
}

func identityDefaults(props Props) model.Values {
	values := model.Values{}
	if dob := props.Get(PropImportedDateOfBirth); dob != "" {
		values["dateOfBirth"] = dob
	}
	if ssn := props.Get(PropImportedSSN); ssn != "" {
		values["ssn"] = ssn
	}
	return values
}

func question(name string) string {
	return "pages.identity.questions." + name + ".label"
}

func buildIdentity(props Props) model.Form {
	var (
		imported []model.Field
		fields   []model.Field
	)
	for _, entry := range []struct{ name, prop string }{
		{"dateOfBirth", PropImportedDateOfBirth},
		{"ssn", PropImportedSSN},
	} {
		if value := props.Get(entry.prop); value != "" {
			imported = append(imported, model.Field{
				Name:     entry.name,
				Kind:     model.KindImported,
				LabelKey: question(entry.name),
				Value:    value,
			})
			continue
		}
		fields = append(fields, model.Field{
			Name:      entry.name,
			Kind:      model.KindText,
			LabelKey:  question(entry.name),
			InputType: "text",
		})
	}
	if len(imported) > 0 {
		fields = append([]model.Field{{
			Kind:     model.KindImportedBox,
			LabelKey: "pages.identity.importedHeading",
			Children: imported,
		}}, fields...)
	}

	workAuthOptions := make([]model.Option, 0, len(WorkAuthorizationTypes))
	for _, option := range WorkAuthorizationTypes {
		workAuthOptions = append(workAuthOptions, model.Option{
			LabelKey: "pages.identity.questions.workAuthorizationType.options." + option,
			Label:    option,
			Value:    option,
		})
	}

	fields = append(fields,
		model.Field{Name: "hasDriversLicenseOrStateId", Kind: model.KindYesNo, LabelKey: question("hasDriversLicenseOrStateId")},
		model.Field{
			Name:        "driversLicenseOrStateIdNumber",
			Kind:        model.KindText,
			LabelKey:    question("driversLicenseOrStateIdNumber"),
			InputType:   "text",
			VisibleWhen: "hasDriversLicenseOrStateId",
		},
		model.Field{
			Name:     "workAuthorizationType",
			Kind:     model.KindRadio,
			LabelKey: question("workAuthorizationType"),
			Options:  workAuthOptions,
		},
		model.Field{
			Kind:        model.KindSection,
			LabelKey:    "pages.identity.immigrationDocumentSectionTitle",
			VisibleWhen: `workAuthorizationType && workAuthorizationType != "usCitizenOrNational"`,
			Children: []model.Field{
				{Name: "immigrationDocumentFirstName", Kind: model.KindText, LabelKey: question("immigrationDocumentFirstName"), InputType: "text"},
				{Name: "immigrationDocumentMiddleInitial", Kind: model.KindText, LabelKey: question("immigrationDocumentMiddleInitial"), InputType: "text"},
				{Name: "immigrationDocumentLastName", Kind: model.KindText, LabelKey: question("immigrationDocumentLastName"), InputType: "text"},
				{
					Name:     "hasUscisOrAlienRegistrationNumber",
					Kind:     model.KindYesNo,
					LabelKey: question("hasUscisOrAlienRegistrationNumber"),
					HintKey:  "pages.identity.questions.hasUscisOrAlienRegistrationNumber.hint",
					ModalID:  ImmigrationHelpModalID,
				},
				{Name: "uscisOrAlienRegistrationNumber", Kind: model.KindText, LabelKey: question("uscisOrAlienRegistrationNumber"), InputType: "text"},
				{Name: "confirmUscisOrAlienRegistrationNumber", Kind: model.KindText, LabelKey: question("confirmUscisOrAlienRegistrationNumber"), InputType: "text"},
				{
					Name:       "countryOfOrigin",
					Kind:       model.KindDropdown,
					LabelKey:   question("countryOfOrigin"),
					StartEmpty: true,
					Options:    append([]model.Option(nil), countries...),
				},
				{Name: "immigrationDocumentIssueDate", Kind: model.KindDate, LabelKey: question("immigrationDocumentIssueDate")},
				{Name: "immigrationDocumentExpirationDate", Kind: model.KindDate, LabelKey: question("immigrationDocumentExpirationDate")},
			},
		},
	)

	return model.Form{
		ID:             IdentityID,
		TitleKey:       "pages.identity.heading",
		SubmitLabelKey: "components.pagination.next",
		SubmitLabel:    "Next",
		Fields:         fields,
		Modals: []model.Modal{{
			ID:          ImmigrationHelpModalID,
			HeadingKey:  "pages.identity.immigrationHelpModal.heading",
			ContinueKey: "pages.identity.immigrationHelpModal.continue",
			CancelKey:   "pages.identity.immigrationHelpModal.cancel",
			Href:        ImmigrationHelpURL,
		}},
	}
}
