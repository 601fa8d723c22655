package openapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formpages/pkg/model"
	"github.com/goliatone/go-formpages/pkg/pages"
)

func TestBuildDescribesEveryPage(t *testing.T) {
	t.Parallel()

	doc, err := Build(pages.Default(), Options{Title: "forms"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := Validate(context.Background(), doc); err != nil {
		t.Fatalf("validate: %v", err)
	}

	for _, path := range []string{"/api/forms/example", "/api/forms/identity"} {
		item := doc.Paths.Find(path)
		if item == nil || item.Post == nil {
			t.Fatalf("expected POST operation at %s", path)
		}
	}
	op := doc.Paths.Find("/api/forms/example").Post
	if op.OperationID != "submitExample" {
		t.Fatalf("unexpected operation id %q", op.OperationID)
	}
	for _, status := range []int{http.StatusOK, http.StatusUnprocessableEntity} {
		if op.Responses.Status(status) == nil {
			t.Fatalf("expected %d response", status)
		}
	}

	if _, err := Build(nil, Options{}); err == nil {
		t.Fatalf("expected error for nil registry")
	}
}

func TestRequestSchemaFromForm(t *testing.T) {
	t.Parallel()

	schema := RequestSchema(pages.Example().Form(nil))
	if diff := cmp.Diff([]string{"doYouLikeForms", "whenDidYouStartLikingForms", "formLibraryPreference", "bestBeverage"}, schema.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}

	beverage := schema.Properties["bestBeverage"].Value
	if diff := cmp.Diff([]any{"water", "kombucha", "coffee", "tea", "soda"}, beverage.Enum); diff != "" {
		t.Fatalf("enum mismatch (-want +got):\n%s", diff)
	}
	if !schema.Properties["doYouLikeForms"].Value.Type.Is("boolean") {
		t.Fatalf("expected yes/no as boolean")
	}
	date := schema.Properties["whenDidYouStartLikingForms"].Value
	if len(date.Properties) != 3 || len(date.Required) != 3 {
		t.Fatalf("expected month/day/year object, got %+v", date)
	}
	year := date.Properties["year"].Value
	if year.Min == nil || *year.Min != 1000 || year.Max == nil || *year.Max != 9999 {
		t.Fatalf("expected four digit year bounds, got %v..%v", year.Min, year.Max)
	}

	imported := RequestSchema(model.Form{Fields: []model.Field{{
		Kind:     model.KindImportedBox,
		Children: []model.Field{{Name: "ssn", Kind: model.KindImported, Label: "SSN"}},
	}}})
	ssn := imported.Properties["ssn"].Value
	if !ssn.ReadOnly || ssn.Title != "SSN" {
		t.Fatalf("expected read-only imported property, got %+v", ssn)
	}
}

func TestMarshal(t *testing.T) {
	t.Parallel()

	doc, err := Build(pages.Default(), Options{BasePath: "/v1/forms/"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	out, err := Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded struct {
		OpenAPI string         `json:"openapi"`
		Paths   map[string]any `json:"paths"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.OpenAPI != "3.0.3" {
		t.Fatalf("unexpected version %q", decoded.OpenAPI)
	}
	if _, ok := decoded.Paths["/v1/forms/identity"]; !ok {
		t.Fatalf("expected base path applied, got %v", decoded.Paths)
	}
}
