// Package openapi describes the JSON submit API of every page as an OpenAPI
// 3 document built with kin-openapi. Request schemas are derived from the
// page forms so the document never drifts from what the server accepts.
package openapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formpages/pkg/dates"
	"github.com/goliatone/go-formpages/pkg/model"
	"github.com/goliatone/go-formpages/pkg/pages"
)

// DefaultBasePath is where the JSON submit endpoints are mounted.
const DefaultBasePath = "/api/forms"

// Options configure Build.
type Options struct {
	Title   string
	Version string
	// BasePath prefixes every page path. Defaults to DefaultBasePath.
	BasePath string
}

// Build returns a document with one POST operation per page.
func Build(registry *pages.Registry, opts Options) (*openapi3.T, error) {
	if registry == nil {
		return nil, fmt.Errorf("openapi: page registry is nil")
	}
	if opts.Title == "" {
		opts.Title = "formpages"
	}
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}
	base := strings.TrimRight(opts.BasePath, "/")
	if base == "" {
		base = DefaultBasePath
	}

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   opts.Title,
			Version: opts.Version,
		},
		Paths: openapi3.NewPaths(),
	}
	for _, def := range registry.List() {
		doc.AddOperation(base+"/"+def.ID, http.MethodPost, Operation(def))
	}
	return doc, nil
}

// Operation describes the submit endpoint of one page.
func Operation(def pages.Definition) *openapi3.Operation {
	form := def.Form(nil)

	op := openapi3.NewOperation()
	op.OperationID = "submit" + exportName(def.ID)
	op.Summary = "Submit the " + def.Title + " page"
	op.Tags = []string{"forms"}
	op.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().
			WithRequired(true).
			WithJSONSchema(RequestSchema(form)),
	}
	op.AddResponse(http.StatusOK, openapi3.NewResponse().
		WithDescription("Submission accepted").
		WithJSONSchema(openapi3.NewObjectSchema().
			WithProperty("id", openapi3.NewStringSchema().WithFormat("uuid"))))
	op.AddResponse(http.StatusUnprocessableEntity, openapi3.NewResponse().
		WithDescription("Validation failed; messages keyed by field path").
		WithJSONSchema(openapi3.NewObjectSchema().
			WithProperty("errors", openapi3.NewObjectSchema().
				WithAdditionalProperties(openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema())))))
	op.AddResponse(http.StatusNotFound, openapi3.NewResponse().WithDescription("Unknown page"))
	return op
}

// RequestSchema derives the JSON body schema from a form's value fields.
func RequestSchema(form model.Form) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	for _, field := range form.ValueFields() {
		schema.WithProperty(field.Name, fieldSchema(field))
		if field.Required {
			schema.Required = append(schema.Required, field.Name)
		}
	}
	return schema
}

func fieldSchema(field model.Field) *openapi3.Schema {
	var schema *openapi3.Schema
	switch field.Kind {
	case model.KindYesNo:
		schema = openapi3.NewBoolSchema()
	case model.KindRadio, model.KindDropdown:
		schema = openapi3.NewStringSchema()
		if values := field.OptionValues(); len(values) > 0 {
			enum := make([]any, 0, len(values))
			for _, value := range values {
				enum = append(enum, value)
			}
			schema.WithEnum(enum...)
		}
	case model.KindDate:
		schema = openapi3.NewObjectSchema().
			WithProperty(dates.MonthKey, openapi3.NewIntegerSchema().WithMin(1).WithMax(12)).
			WithProperty(dates.DayKey, openapi3.NewIntegerSchema().WithMin(1).WithMax(31)).
			WithProperty(dates.YearKey, openapi3.NewIntegerSchema().WithMin(dates.MinYear).WithMax(dates.MaxYear))
		if field.Required {
			schema.Required = []string{dates.MonthKey, dates.DayKey, dates.YearKey}
		}
	case model.KindImported:
		schema = openapi3.NewStringSchema()
		schema.ReadOnly = true
	default:
		schema = openapi3.NewStringSchema()
	}
	if field.Label != "" {
		schema.Title = field.Label
	}
	return schema
}

// Validate checks the document against the OpenAPI 3 rules.
func Validate(ctx context.Context, doc *openapi3.T) error {
	if err := doc.Validate(ctx); err != nil {
		return fmt.Errorf("openapi: validate document: %w", err)
	}
	return nil
}

// Marshal renders the document as indented JSON.
func Marshal(doc *openapi3.T) ([]byte, error) {
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("openapi: marshal document: %w", err)
	}
	return out, nil
}

func exportName(id string) string {
	var b strings.Builder
	upper := true
	for _, r := range id {
		if r == '-' || r == '_' || r == ' ' {
			upper = true
			continue
		}
		if upper {
			b.WriteString(strings.ToUpper(string(r)))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
