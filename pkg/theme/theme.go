// Package theme resolves go-theme manifests into the CSS variables and
// stylesheets the HTML renderer applies to standalone pages.
//
// Token keys map onto the variables the bundled stylesheet reads: the token
// "color-primary" becomes "--fp-color-primary".
package theme

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	gotheme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formpages/pkg/render"
)

// Names of the bundled theme and its variants.
const (
	DefaultName = "uswds"
	VariantDark = "dark"
)

// CSSVarPrefix is prepended to token keys.
const CSSVarPrefix = "--fp-"

// stylesheetAssetPrefix marks asset files that should be linked as extra
// stylesheets.
const stylesheetAssetPrefix = "stylesheet."

var (
	ErrUnknownTheme   = errors.New("theme: unknown theme")
	ErrUnknownVariant = errors.New("theme: unknown variant")
)

// USWDS returns the bundled manifest: the default palette and a dark
// variant.
func USWDS() *gotheme.Manifest {
	return &gotheme.Manifest{
		Name:    DefaultName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"color-base":     "#1b1b1b",
			"color-primary":  "#005ea2",
			"color-error":    "#b50909",
			"color-surface":  "#ffffff",
			"color-imported": "#f0f0f0",
			"spacing":        "1rem",
		},
		Templates: map[string]string{
			"forms.page": "templates/page.html",
			"forms.form": "templates/form.html",
		},
		Assets: gotheme.Assets{
			Prefix: "/assets",
			Files: map[string]string{
				"stylesheet": "formpages.css",
				"runtime":    "formpages.js",
			},
		},
		Variants: map[string]gotheme.Variant{
			VariantDark: {
				Tokens: map[string]string{
					"color-base":     "#f0f0f0",
					"color-primary":  "#73b3e7",
					"color-error":    "#f8dfe2",
					"color-surface":  "#1b1b1b",
					"color-imported": "#2e2e2e",
				},
			},
		},
	}
}

// Selector implements gotheme.ThemeSelector over a fixed set of manifests.
type Selector struct {
	manifests      map[string]*gotheme.Manifest
	provider       gotheme.ThemeProvider
	defaultTheme   string
	defaultVariant string
}

var _ gotheme.ThemeSelector = (*Selector)(nil)

// NewSelector registers manifests and remembers the defaults used when a
// caller asks for an empty theme name. With no manifests the bundled USWDS
// manifest is used.
func NewSelector(defaultTheme, defaultVariant string, manifests ...*gotheme.Manifest) (*Selector, error) {
	if len(manifests) == 0 {
		manifests = []*gotheme.Manifest{USWDS()}
	}
	registry := gotheme.NewRegistry()
	s := &Selector{
		manifests:      make(map[string]*gotheme.Manifest, len(manifests)),
		provider:       registry,
		defaultTheme:   strings.TrimSpace(defaultTheme),
		defaultVariant: strings.TrimSpace(defaultVariant),
	}
	for _, manifest := range manifests {
		if manifest == nil {
			continue
		}
		if err := registry.Register(manifest); err != nil {
			return nil, fmt.Errorf("theme: register %q: %w", manifest.Name, err)
		}
		s.manifests[manifest.Name] = manifest
	}
	if s.defaultTheme == "" {
		s.defaultTheme = manifests[0].Name
	}
	if _, ok := s.manifests[s.defaultTheme]; !ok {
		return nil, fmt.Errorf("%w: default %q", ErrUnknownTheme, s.defaultTheme)
	}
	return s, nil
}

// Provider exposes the go-theme registry holding the manifests.
func (s *Selector) Provider() gotheme.ThemeProvider {
	return s.provider
}

// Names lists the registered themes.
func (s *Selector) Names() []string {
	out := make([]string, 0, len(s.manifests))
	for name := range s.manifests {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Select picks a manifest and variant. Empty arguments fall back to the
// selector defaults; the default variant is only applied together with the
// default theme.
func (s *Selector) Select(name, variant string, _ ...gotheme.QueryOption) (*gotheme.Selection, error) {
	name = strings.TrimSpace(name)
	variant = strings.TrimSpace(variant)
	if name == "" {
		name = s.defaultTheme
		if variant == "" {
			variant = s.defaultVariant
		}
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("%w: %q for theme %q", ErrUnknownVariant, variant, name)
		}
	}
	return &gotheme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// Config flattens a selection into the renderer configuration. Variant
// tokens and assets override the base manifest.
func Config(selection *gotheme.Selection) *render.ThemeConfig {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	manifest := selection.Manifest

	tokens := mergeStringMaps(manifest.Tokens, nil)
	files := mergeStringMaps(manifest.Assets.Files, nil)
	prefix := manifest.Assets.Prefix
	if variant, ok := manifest.Variants[selection.Variant]; ok {
		tokens = mergeStringMaps(tokens, variant.Tokens)
		files = mergeStringMaps(files, variant.Assets.Files)
		if variant.Assets.Prefix != "" {
			prefix = variant.Assets.Prefix
		}
	}

	cfg := &render.ThemeConfig{
		Name:    selection.Theme,
		Variant: selection.Variant,
		Tokens:  tokens,
		CSSVars: make(map[string]string, len(tokens)),
	}
	for key, value := range tokens {
		cfg.CSSVars[CSSVarPrefix+strings.TrimPrefix(key, "--")] = value
	}

	keys := make([]string, 0, len(files))
	for key := range files {
		if strings.HasPrefix(key, stylesheetAssetPrefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		cfg.Stylesheets = append(cfg.Stylesheets, assetURL(prefix, files[key]))
	}
	return cfg
}

// Resolve selects and flattens in one step.
func (s *Selector) Resolve(name, variant string) (*render.ThemeConfig, error) {
	selection, err := s.Select(name, variant)
	if err != nil {
		return nil, err
	}
	return Config(selection), nil
}

func assetURL(prefix, file string) string {
	if strings.HasPrefix(file, "/") || strings.Contains(file, "://") {
		return file
	}
	if prefix == "" {
		return "/" + strings.TrimPrefix(file, "/")
	}
	return path.Join(prefix, file)
}

func mergeStringMaps(dst, src map[string]string) map[string]string {
	out := make(map[string]string, len(dst)+len(src))
	for key, value := range dst {
		out[key] = value
	}
	for key, value := range src {
		out[key] = value
	}
	return out
}
