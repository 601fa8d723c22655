// Package model defines the declarative form model shared by page
// definitions, the form state helpers, validation, and renderers.
//
// A Form is a tree of Fields. Value-bearing fields (text, yes/no, radio,
// dropdown, date and named imported entries) contribute one entry to the flat
// values map keyed by Field.Name. Structural fields (sections and imported
// boxes) only group children. Conditional rendering is expressed through
// Field.VisibleWhen, a rule string evaluated by pkg/visibility against the
// current values, and Field.Resets, which clears dependent fields when the
// owning field changes. Any `*Key` attribute names a translation key that
// pkg/i18n resolves before rendering; the plain attribute is the fallback.
package model
