package pages

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formpages/pkg/formstate"
	"github.com/goliatone/go-formpages/pkg/i18n"
	"github.com/goliatone/go-formpages/pkg/model"
	"github.com/goliatone/go-formpages/pkg/testsupport"
	"github.com/goliatone/go-formpages/pkg/validation"
)

func validate(t *testing.T, def Definition, values model.Values, locale string) validation.Errors {
	t.Helper()
	catalog, err := i18n.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	errs, err := validation.New(validation.WithTranslator(catalog)).
		Validate(context.Background(), def.Schema, values, validation.Options{Locale: locale})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	return errs
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	registry := Default()
	var ids []string
	for _, def := range registry.List() {
		ids = append(ids, def.ID)
	}
	if diff := cmp.Diff([]string{ExampleID, IdentityID}, ids); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}

	if _, err := registry.Lookup("missing"); !errors.Is(err, ErrUnknownPage) {
		t.Fatalf("expected ErrUnknownPage, got %v", err)
	}
	if err := registry.Register(Example()); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if err := registry.Register(Definition{ID: "empty"}); err == nil {
		t.Fatalf("expected definition without builder to fail")
	}
}

func TestExampleValidation(t *testing.T) {
	t.Parallel()

	def := Example()
	errs := validate(t, def, model.Values{}, "en")
	want := validation.Errors{
		"doYouLikeForms":                   {"This field is required"},
		"whenDidYouStartLikingForms.month": {"This field is required"},
		"whenDidYouStartLikingForms.day":   {"This field is required"},
		"whenDidYouStartLikingForms.year":  {"This field is required"},
		"formLibraryPreference":            {"This field is required"},
		"bestBeverage":                     {"You must select your beverage of choice"},
	}
	if diff := cmp.Diff(want, errs); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	errs = validate(t, def, model.Values{
		"doYouLikeForms":             true,
		"whenDidYouStartLikingForms": map[string]any{"month": 2, "day": 29, "year": 2021},
		"formLibraryPreference":      LibraryReactHookForm,
		"bestBeverage":               "coffee",
	}, "es")
	want = validation.Errors{
		"whenDidYouStartLikingForms.month": {"Ingrese una fecha válida"},
		"whyIsFormikBad":                   {"Este campo es obligatorio"},
	}
	if diff := cmp.Diff(want, errs); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	errs = validate(t, def, model.Values{
		"doYouLikeForms":             false,
		"whenDidYouStartLikingForms": map[string]any{"month": 2, "day": 29, "year": 2020},
		"formLibraryPreference":      LibraryFormik,
		"bestBeverage":               "tea",
	}, "en")
	if len(errs) != 0 {
		t.Fatalf("expected valid submission, got %v", errs)
	}
}

func TestExampleVisibilityAndReset(t *testing.T) {
	t.Parallel()

	form := Example().Form(nil)
	engine := formstate.New()

	visible, err := engine.Visible(form, model.Values{"formLibraryPreference": LibraryFormik}, nil)
	if err != nil {
		t.Fatalf("visible: %v", err)
	}
	if visible["whyIsFormikBad"] {
		t.Fatalf("expected whyIsFormikBad hidden for formik")
	}

	visible, err = engine.Visible(form, model.Values{"formLibraryPreference": LibraryReactHookForm}, nil)
	if err != nil {
		t.Fatalf("visible: %v", err)
	}
	if !visible["whyIsFormikBad"] {
		t.Fatalf("expected whyIsFormikBad visible for reactHookForm")
	}

	previous := model.Values{"formLibraryPreference": LibraryReactHookForm, "whyIsFormikBad": "verbose"}
	next := model.Values{"formLibraryPreference": LibraryFormik, "whyIsFormikBad": "verbose"}
	reset, err := engine.ApplyResets(form, previous, next, nil)
	if err != nil {
		t.Fatalf("apply resets: %v", err)
	}
	if _, ok := reset["whyIsFormikBad"]; ok {
		t.Fatalf("expected whyIsFormikBad to be reset, got %v", reset)
	}

	watched, err := engine.Watched(form)
	if err != nil {
		t.Fatalf("watched: %v", err)
	}
	if diff := cmp.Diff([]string{"formLibraryPreference"}, watched); diff != "" {
		t.Fatalf("watched mismatch (-want +got):\n%s", diff)
	}
}

func TestIdentityImportedProps(t *testing.T) {
	t.Parallel()

	def := Identity()
	props := Props{PropImportedDateOfBirth: "01/02/1990", PropImportedSSN: " 123-45-6789 "}
	form := def.Form(props)

	if form.Fields[0].Kind != model.KindImportedBox {
		t.Fatalf("expected imported box first, got %s", form.Fields[0].Kind)
	}
	if diff := cmp.Diff(model.Values{"dateOfBirth": "01/02/1990", "ssn": "123-45-6789"}, formstate.Imported(form)); diff != "" {
		t.Fatalf("imported mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(model.Values{"dateOfBirth": "01/02/1990", "ssn": "123-45-6789"}, def.InitialValues(props)); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}

	bare := def.Form(Props{PropImportedSSN: "123-45-6789"})
	dob, ok := bare.Lookup("dateOfBirth")
	if !ok || dob.Kind != model.KindText {
		t.Fatalf("expected editable date of birth when not imported, got %+v", dob)
	}
	ssn, _ := bare.Lookup("ssn")
	if ssn.Kind != model.KindImported {
		t.Fatalf("expected imported ssn, got %s", ssn.Kind)
	}
	if len(def.InitialValues(nil)) != 0 {
		t.Fatalf("expected no defaults without props")
	}
}

func TestIdentityImmigrationSection(t *testing.T) {
	t.Parallel()

	form := Identity().Form(nil)
	engine := formstate.New()

	for _, tc := range []struct {
		workAuth string
		want     bool
	}{
		{"", false},
		{WorkAuthUSCitizenOrNational, false},
		{WorkAuthPermanentResident, true},
		{WorkAuthNotLegallyAllowedToWorkInUS, true},
	} {
		values := model.Values{}
		if tc.workAuth != "" {
			values["workAuthorizationType"] = tc.workAuth
		}
		visible, err := engine.Visible(form, values, nil)
		if err != nil {
			t.Fatalf("visible: %v", err)
		}
		if got := visible["countryOfOrigin"]; got != tc.want {
			t.Errorf("workAuthorizationType=%q: country visible %v, want %v", tc.workAuth, got, tc.want)
		}
	}

	visible, err := engine.Visible(form, model.Values{"hasDriversLicenseOrStateId": true}, nil)
	if err != nil {
		t.Fatalf("visible: %v", err)
	}
	if !visible["driversLicenseOrStateIdNumber"] {
		t.Fatalf("expected license number visible when answered yes")
	}

	field, _ := form.Lookup("hasUscisOrAlienRegistrationNumber")
	if field.ModalID != ImmigrationHelpModalID || form.Modals[0].Href != ImmigrationHelpURL {
		t.Fatalf("expected help modal wiring, got %+v / %+v", field, form.Modals)
	}
	if form.SubmitLabelKey != "components.pagination.next" {
		t.Fatalf("expected next button, got %q", form.SubmitLabelKey)
	}
}

func TestIdentityValidation(t *testing.T) {
	t.Parallel()

	def := Identity()
	if errs := validate(t, def, model.Values{}, "en"); len(errs) != 0 {
		t.Fatalf("expected empty identity submission to pass, got %v", errs)
	}

	errs := validate(t, def, model.Values{
		"workAuthorizationType":                 "tourist",
		"uscisOrAlienRegistrationNumber":        "A123",
		"confirmUscisOrAlienRegistrationNumber": "A124",
		"immigrationDocumentIssueDate":          map[string]any{"month": 13, "day": 1, "year": 2020},
	}, "en")
	want := validation.Errors{
		"workAuthorizationType":                 {"Select one of the listed options"},
		"confirmUscisOrAlienRegistrationNumber": {"The values do not match"},
		"immigrationDocumentIssueDate.month":    {"Please enter a valid date"},
	}
	if diff := cmp.Diff(want, errs); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildReturnsFreshForms(t *testing.T) {
	t.Parallel()

	for _, def := range Default().List() {
		first := def.Form(nil)
		first.Fields[0].Label = "changed"
		first.Fields[len(first.Fields)-1].Options = nil
		second := def.Form(nil)
		if second.Fields[0].Label == "changed" {
			t.Fatalf("%s: builder shares field slices between calls", def.ID)
		}
	}
}

func TestLogSubmitter(t *testing.T) {
	t.Parallel()

	logger, logs := testsupport.ObservedLogger()
	submitter := NewLogSubmitter(logger)
	sub := NewSubmission(ExampleID, "en", model.Values{"bestBeverage": "tea"})

	if err := submitter.Submit(context.Background(), sub); err != nil {
		t.Fatalf("submit: %v", err)
	}
	submitter.Rejected(ExampleID, map[string][]string{"bestBeverage": {"required"}})

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected two log entries, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["id"] != sub.ID.String() || fields["page"] != ExampleID {
		t.Fatalf("unexpected log fields %v", fields)
	}
	if entries[1].Message != "form rejected" {
		t.Fatalf("unexpected message %q", entries[1].Message)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := submitter.Submit(ctx, sub); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}
