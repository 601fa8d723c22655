// Package stories is the preview harness: each Story renders one page with
// fixed props in isolation, the way a storybook entry does.
package stories

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formpages/pkg/pages"
	"github.com/goliatone/go-formpages/pkg/render/template/pongo"
)

// ErrUnknownStory is returned when a story ID is not registered.
var ErrUnknownStory = errors.New("stories: unknown story")

// Story is one preview entry.
type Story struct {
	ID string `json:"id"`
	// Title groups stories with slashes, for example "Pages/Identity".
	Title  string      `json:"title"`
	Name   string      `json:"name"`
	Page   string      `json:"page"`
	Props  pages.Props `json:"props,omitempty"`
	Locale string      `json:"locale,omitempty"`
}

// Group returns the title segment before the last slash.
func (s Story) Group() string {
	if idx := strings.LastIndex(s.Title, "/"); idx > 0 {
		return s.Title[:idx]
	}
	return ""
}

// Registry keeps stories in registration order.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	stories map[string]Story
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{stories: make(map[string]Story)}
}

// Default returns the bundled stories.
func Default() *Registry {
	r := NewRegistry()
	r.MustRegister(Story{ID: "example-reacthookform", Title: "Example/ReactHookForm", Name: "ReactHookForm", Page: pages.ExampleID})
	r.MustRegister(Story{ID: "pages-identity", Title: "Pages/Identity", Name: "Identity", Page: pages.IdentityID})
	r.MustRegister(Story{
		ID:    "pages-identity-imported",
		Title: "Pages/Identity",
		Name:  "Imported values",
		Page:  pages.IdentityID,
		Props: pages.Props{
			pages.PropImportedDateOfBirth: "04/12/1987",
			pages.PropImportedSSN:         "***-**-6789",
		},
	})
	r.MustRegister(Story{ID: "pages-identity-es", Title: "Pages/Identity", Name: "Spanish", Page: pages.IdentityID, Locale: "es"})
	return r
}

// Register adds story.
func (r *Registry) Register(story Story) error {
	story.ID = strings.TrimSpace(story.ID)
	if story.ID == "" {
		return errors.New("stories: id is required")
	}
	if strings.TrimSpace(story.Page) == "" {
		return fmt.Errorf("stories: story %q has no page", story.ID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.stories[story.ID]; exists {
		return fmt.Errorf("stories: story %q already registered", story.ID)
	}
	r.stories[story.ID] = story
	r.order = append(r.order, story.ID)
	return nil
}

// MustRegister panics when Register fails.
func (r *Registry) MustRegister(story Story) {
	if err := r.Register(story); err != nil {
		panic(err)
	}
}

// Lookup returns the story registered under id.
func (r *Registry) Lookup(id string) (Story, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	story, ok := r.stories[id]
	if !ok {
		return Story{}, fmt.Errorf("%w: %q", ErrUnknownStory, id)
	}
	return story, nil
}

// List returns the stories in registration order.
func (r *Registry) List() []Story {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Story, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.stories[id])
	}
	return out
}

// Check verifies every story points at a page in registry.
func (r *Registry) Check(registry *pages.Registry) error {
	var errs []error
	for _, story := range r.List() {
		if _, err := registry.Lookup(story.Page); err != nil {
			errs = append(errs, fmt.Errorf("stories: %s: %w", story.ID, err))
		}
	}
	return errors.Join(errs...)
}

//go:embed templates/*.html
var templateFS embed.FS

// Index renders the story listing. Links point at prefix + "/" + story ID.
type Index struct {
	engine *pongo.Engine
}

// NewIndex prepares the index template.
func NewIndex() (*Index, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("stories: templates: %w", err)
	}
	engine, err := pongo.New(pongo.WithFS(sub), pongo.WithName("stories"))
	if err != nil {
		return nil, fmt.Errorf("stories: template engine: %w", err)
	}
	return &Index{engine: engine}, nil
}

type groupView struct {
	Title   string  `json:"title"`
	Stories []Story `json:"stories"`
}

// Render draws the index for stories.
func (i *Index) Render(heading, prefix string, stories []Story) (string, error) {
	groups := map[string][]Story{}
	for _, story := range stories {
		groups[story.Group()] = append(groups[story.Group()], story)
	}
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	views := make([]groupView, 0, len(names))
	for _, name := range names {
		views = append(views, groupView{Title: name, Stories: groups[name]})
	}

	out, err := i.engine.RenderTemplate("index", map[string]any{
		"heading": heading,
		"prefix":  strings.TrimRight(prefix, "/"),
		"groups":  views,
	})
	if err != nil {
		return "", fmt.Errorf("stories: render index: %w", err)
	}
	return out, nil
}
