package render

import (
	"fmt"
	"mime"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Registry stores renderers by name and by the media type they produce.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]Renderer
	fallback  string
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		renderers: make(map[string]Renderer),
	}
}

// Register adds a renderer by its Name(). Duplicate names return an error.
// The first renderer registered becomes the fallback for Negotiate.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return fmt.Errorf("render: renderer is required")
	}
	name := renderer.Name()
	if name == "" {
		return fmt.Errorf("render: renderer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.renderers[name]; exists {
		return fmt.Errorf("render: renderer %q already registered", name)
	}
	r.renderers[name] = renderer
	if r.fallback == "" {
		r.fallback = name
	}
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(renderer Renderer) {
	if err := r.Register(renderer); err != nil {
		panic(err)
	}
}

// Get retrieves a renderer by name.
func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	renderer, ok := r.renderers[name]
	if !ok {
		return nil, fmt.Errorf("render: renderer %q not found", name)
	}
	return renderer, nil
}

// Negotiate picks a renderer for an Accept header, trying media types by
// descending q weight and header order among equal weights. Types with q=0
// are skipped. It falls back to the first registered renderer.
func (r *Registry) Negotiate(accept string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, wanted := range acceptedTypes(accept) {
		for _, name := range r.sortedNamesLocked() {
			candidate := r.renderers[name]
			produced, _, err := mime.ParseMediaType(candidate.ContentType())
			if err == nil && produced == wanted {
				return candidate, nil
			}
		}
	}
	if r.fallback == "" {
		return nil, fmt.Errorf("render: no renderers registered")
	}
	return r.renderers[r.fallback], nil
}

type acceptedType struct {
	media string
	q     float64
}

// acceptedTypes parses an Accept header into media types ordered by q.
func acceptedTypes(accept string) []string {
	var entries []acceptedType
	for _, part := range strings.Split(accept, ",") {
		media, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		q := 1.0
		if raw, ok := params["q"]; ok {
			parsed, err := strconv.ParseFloat(raw, 64)
			if err != nil || parsed < 0 || parsed > 1 {
				continue
			}
			q = parsed
		}
		if q == 0 {
			continue
		}
		entries = append(entries, acceptedType{media: media, q: q})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].q > entries[j].q
	})
	out := make([]string, len(entries))
	for i, entry := range entries {
		out[i] = entry.media
	}
	return out
}

// List returns a sorted list of renderer names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedNamesLocked()
}

func (r *Registry) sortedNamesLocked() []string {
	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
