package i18n

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultCatalogTranslatesNamespacedKeys(t *testing.T) {
	t.Parallel()

	catalog, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	got, err := catalog.Translate("en", "components:dateInput.error.invalid")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "Please enter a valid date" {
		t.Fatalf("unexpected message %q", got)
	}

	got, err = catalog.Translate("es-MX", "pages.identity.heading")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "Información de identidad" {
		t.Fatalf("expected base language fallback, got %q", got)
	}

	got, err = catalog.Translate("fr", "components.yesNo.yes")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "Yes" {
		t.Fatalf("expected fallback locale, got %q", got)
	}
}

func TestCatalogLocalesCoverSameKeys(t *testing.T) {
	t.Parallel()

	catalog, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	for key := range catalog.messages["en"] {
		if _, ok := catalog.messages["es"][key]; !ok {
			t.Errorf("es catalog missing key %q", key)
		}
	}
}

func TestCatalogMissingKey(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog("en")
	if err := catalog.Load("en", []byte("greeting: hi")); err != nil {
		t.Fatalf("Load: %v", err)
	}
	_, err := catalog.Translate("en", "farewell")
	if !errors.Is(err, ErrMissingTranslation) {
		t.Fatalf("expected ErrMissingTranslation, got %v", err)
	}
	if got := Must(catalog, "en", "farewell", "bye"); got != "bye" {
		t.Fatalf("expected fallback, got %q", got)
	}
	if got := Must(nil, "en", "farewell", ""); got != "farewell" {
		t.Fatalf("expected key when no fallback, got %q", got)
	}
}

func TestCatalogInterpolation(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog("en")
	if err := catalog.Load("en", []byte(`link: 'See <a href="{{href}}">help</a>'`)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	got, err := catalog.Translate("en", "link", map[string]any{"href": "/help"})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != `See <a href="/help">help</a>` {
		t.Fatalf("unexpected interpolation %q", got)
	}
}

func TestNegotiate(t *testing.T) {
	t.Parallel()

	catalog, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	cases := map[string]string{
		"":                          "en",
		"es-MX,es;q=0.9,en;q=0.8":   "es",
		"en-GB":                     "en",
		"de-DE":                     "en",
		"not a valid header;;q=abc": "en",
	}
	for header, want := range cases {
		if got := catalog.Negotiate(header); got != want {
			t.Errorf("Negotiate(%q) = %q, want %q", header, got, want)
		}
	}

	if diff := cmp.Diff([]string{"en", "es"}, catalog.Locales()); diff != "" {
		t.Fatalf("locales mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsInvalidLocale(t *testing.T) {
	t.Parallel()

	if err := NewCatalog("").Load("", []byte("a: b")); err == nil {
		t.Fatalf("expected error for empty locale")
	}
	if err := NewCatalog("").Load("en", []byte("a: [")); err == nil {
		t.Fatalf("expected error for malformed yaml")
	}
}
