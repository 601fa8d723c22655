package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleForm() Form {
	return Form{
		ID: "sample",
		Fields: []Field{
			{Kind: KindImportedBox, Children: []Field{
				{Kind: KindImported, Label: "Profession", Value: "Engineer"},
				{Kind: KindImported, Name: "ssn", Label: "SSN", Value: "123"},
			}},
			{Name: "likes", Kind: KindYesNo},
			{Kind: KindSection, Label: "More", Children: []Field{
				{Name: "first", Kind: KindText},
				{Name: "when", Kind: KindDate},
			}},
		},
	}
}

func TestFormValueFieldsOrder(t *testing.T) {
	t.Parallel()

	form := sampleForm()
	var names []string
	for _, field := range form.ValueFields() {
		names = append(names, field.Name)
	}

	want := []string{"ssn", "likes", "first", "when"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("value fields mismatch (-want +got):\n%s", diff)
	}
}

func TestFormLookupNested(t *testing.T) {
	t.Parallel()

	form := sampleForm()
	field, ok := form.Lookup("when")
	if !ok {
		t.Fatalf("expected nested field to be found")
	}
	if field.Kind != KindDate {
		t.Fatalf("unexpected kind %q", field.Kind)
	}
	if _, ok := form.Lookup("missing"); ok {
		t.Fatalf("expected missing field lookup to fail")
	}
}

func TestFormWalkSkipsChildren(t *testing.T) {
	t.Parallel()

	form := sampleForm()
	var visited []string
	form.Walk(func(field *Field, _ *Field) bool {
		visited = append(visited, string(field.Kind))
		return field.Kind != KindSection
	})

	want := []string{"importedBox", "imported", "imported", "yesNo", "section"}
	if diff := cmp.Diff(want, visited); diff != "" {
		t.Fatalf("walk mismatch (-want +got):\n%s", diff)
	}
}

func TestValuesCloneCopiesDates(t *testing.T) {
	t.Parallel()

	original := Values{"when": map[string]any{"month": 1}, "likes": true}
	clone := original.Clone()
	clone["when"].(map[string]any)["month"] = 2

	if original["when"].(map[string]any)["month"] != 1 {
		t.Fatalf("expected clone to copy nested date map")
	}
}
