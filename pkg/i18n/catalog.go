// Package i18n loads the translation catalogs used by form pages and resolves
// keys for a locale.
//
// Catalogs are YAML documents whose nested maps flatten into dotted keys
// ("pages.identity.heading"). Keys may also be written with a namespace
// separator ("pages:identity.heading"); the first colon is treated as a dot.
// Messages can interpolate named arguments with `{{name}}` placeholders.
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var embeddedLocales embed.FS

// DefaultLocale is used when negotiation finds no better match.
const DefaultLocale = "en"

var (
	// ErrMissingTranslation is returned when a key exists in no catalog.
	ErrMissingTranslation = errors.New("i18n: missing translation")
	// ErrUnknownLocale is returned when a catalog for the locale is not loaded.
	ErrUnknownLocale = errors.New("i18n: unknown locale")
)

// Translator resolves a key for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// Catalog is an in-memory Translator holding one flattened message table per
// locale. It is safe for concurrent reads once loaded.
type Catalog struct {
	mu       sync.RWMutex
	messages map[string]map[string]string
	fallback string
	matcher  language.Matcher
	tags     []language.Tag
}

// NewCatalog returns an empty catalog using fallback as the default locale.
func NewCatalog(fallback string) *Catalog {
	if strings.TrimSpace(fallback) == "" {
		fallback = DefaultLocale
	}
	return &Catalog{
		messages: make(map[string]map[string]string),
		fallback: fallback,
	}
}

// Default returns a catalog populated from the embedded locale files.
func Default() (*Catalog, error) {
	catalog := NewCatalog(DefaultLocale)
	if err := catalog.LoadFS(embeddedLocales, "locales"); err != nil {
		return nil, err
	}
	return catalog, nil
}

// LoadFS loads every *.yaml file in dir; the file name (minus extension) is
// the locale.
func (c *Catalog) LoadFS(files fs.FS, dir string) error {
	entries, err := fs.ReadDir(files, dir)
	if err != nil {
		return fmt.Errorf("i18n: read %s: %w", dir, err)
	}
	for _, entry := range entries {
		name := entry.Name()
		ext := path.Ext(name)
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		data, err := fs.ReadFile(files, path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("i18n: read %s: %w", name, err)
		}
		if err := c.Load(strings.TrimSuffix(name, ext), data); err != nil {
			return err
		}
	}
	return nil
}

// Load parses a YAML document and merges it into the locale's table.
func (c *Catalog) Load(locale string, data []byte) error {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return errors.New("i18n: locale is required")
	}
	if _, err := language.Parse(locale); err != nil {
		return fmt.Errorf("i18n: invalid locale %q: %w", locale, err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("i18n: parse %s: %w", locale, err)
	}

	flat := make(map[string]string)
	flatten("", doc, flat)

	c.mu.Lock()
	defer c.mu.Unlock()
	table, ok := c.messages[locale]
	if !ok {
		table = make(map[string]string, len(flat))
		c.messages[locale] = table
	}
	for key, msg := range flat {
		table[key] = msg
	}
	c.rebuildMatcherLocked()
	return nil
}

func flatten(prefix string, node any, out map[string]string) {
	switch typed := node.(type) {
	case map[string]any:
		for key, value := range typed {
			flatten(joinKey(prefix, key), value, out)
		}
	case nil:
	default:
		out[prefix] = fmt.Sprint(typed)
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func (c *Catalog) rebuildMatcherLocked() {
	locales := make([]string, 0, len(c.messages))
	for locale := range c.messages {
		locales = append(locales, locale)
	}
	sort.Strings(locales)
	// The fallback goes first so the matcher uses it as its default.
	tags := []language.Tag{language.Make(c.fallback)}
	for _, locale := range locales {
		if locale == c.fallback {
			continue
		}
		tags = append(tags, language.Make(locale))
	}
	c.tags = tags
	c.matcher = language.NewMatcher(tags)
}

// Locales lists the loaded locales, fallback first.
func (c *Catalog) Locales() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.tags))
	for _, tag := range c.tags {
		out = append(out, tag.String())
	}
	return out
}

// Negotiate picks the best loaded locale for an Accept-Language header or a
// plain locale string such as "es-MX".
func (c *Catalog) Negotiate(accept string) string {
	c.mu.RLock()
	matcher, tags := c.matcher, c.tags
	c.mu.RUnlock()

	if matcher == nil || strings.TrimSpace(accept) == "" {
		return c.fallback
	}
	desired, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(desired) == 0 {
		return c.fallback
	}
	_, index, confidence := matcher.Match(desired...)
	if confidence == language.No {
		return c.fallback
	}
	return tags[index].String()
}

// Translate implements Translator. Unknown locales fall back to the catalog
// fallback locale; a key missing from both yields ErrMissingTranslation.
func (c *Catalog) Translate(locale, key string, args ...any) (string, error) {
	key = normaliseKey(key)
	if key == "" {
		return "", ErrMissingTranslation
	}

	c.mu.RLock()
	msg, ok := c.lookupLocked(locale, key)
	c.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingTranslation, key)
	}
	return interpolate(msg, args), nil
}

func (c *Catalog) lookupLocked(locale, key string) (string, bool) {
	for _, candidate := range []string{locale, baseLocale(locale), c.fallback} {
		if candidate == "" {
			continue
		}
		if msg, ok := c.messages[candidate][key]; ok {
			return msg, true
		}
	}
	return "", false
}

// Has reports whether locale (or its base language) has a catalog.
func (c *Catalog) Has(locale string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, exact := c.messages[locale]
	_, base := c.messages[baseLocale(locale)]
	return exact || base
}

func baseLocale(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return ""
	}
	base, _ := tag.Base()
	return base.String()
}

func normaliseKey(key string) string {
	key = strings.TrimSpace(key)
	if idx := strings.Index(key, ":"); idx > 0 {
		key = key[:idx] + "." + key[idx+1:]
	}
	return key
}

// interpolate replaces {{name}} placeholders using the first map argument.
func interpolate(msg string, args []any) string {
	if len(args) == 0 || !strings.Contains(msg, "{{") {
		return msg
	}
	for _, arg := range args {
		params, ok := arg.(map[string]any)
		if !ok {
			continue
		}
		for name, value := range params {
			msg = strings.ReplaceAll(msg, "{{"+name+"}}", fmt.Sprint(value))
		}
	}
	return msg
}

// Func adapts a function into a Translator.
type Func func(locale, key string, args ...any) (string, error)

// Translate delegates to the function.
func (fn Func) Translate(locale, key string, args ...any) (string, error) {
	return fn(locale, key, args...)
}

// Must translates key, falling back to fallback (or the key itself) on error.
func Must(t Translator, locale, key, fallback string, args ...any) string {
	if t != nil && strings.TrimSpace(key) != "" {
		if msg, err := t.Translate(locale, key, args...); err == nil && strings.TrimSpace(msg) != "" {
			return msg
		}
	}
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return key
}
