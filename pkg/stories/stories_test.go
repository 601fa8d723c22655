package stories

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formpages/pkg/pages"
)

func TestDefaultStories(t *testing.T) {
	t.Parallel()

	registry := Default()
	var titles []string
	for _, story := range registry.List() {
		titles = append(titles, story.Title)
	}
	want := []string{"Example/ReactHookForm", "Pages/Identity", "Pages/Identity", "Pages/Identity"}
	if diff := cmp.Diff(want, titles); diff != "" {
		t.Fatalf("titles mismatch (-want +got):\n%s", diff)
	}
	if err := registry.Check(pages.Default()); err != nil {
		t.Fatalf("check: %v", err)
	}

	story, err := registry.Lookup("pages-identity-imported")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if story.Props.Get(pages.PropImportedSSN) == "" || story.Group() != "Pages" {
		t.Fatalf("unexpected story %+v", story)
	}
	if _, err := registry.Lookup("missing"); !errors.Is(err, ErrUnknownStory) {
		t.Fatalf("expected ErrUnknownStory, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	if err := registry.Register(Story{ID: " "}); err == nil {
		t.Fatalf("expected missing id error")
	}
	if err := registry.Register(Story{ID: "a"}); err == nil {
		t.Fatalf("expected missing page error")
	}
	registry.MustRegister(Story{ID: "a", Page: "nowhere"})
	if err := registry.Register(Story{ID: "a", Page: "nowhere"}); err == nil {
		t.Fatalf("expected duplicate error")
	}
	if err := registry.Check(pages.Default()); !errors.Is(err, pages.ErrUnknownPage) {
		t.Fatalf("expected unknown page error, got %v", err)
	}
}

func TestIndexRender(t *testing.T) {
	t.Parallel()

	index, err := NewIndex()
	if err != nil {
		t.Fatalf("new index: %v", err)
	}
	out, err := index.Render("Stories", "/dev/stories/", Default().List())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, fragment := range []string{
		"<h1>Stories</h1>",
		"<h2>Example</h2>",
		"<h2>Pages</h2>",
		`<a href="/dev/stories/pages-identity-imported">Imported values</a>`,
	} {
		if !strings.Contains(out, fragment) {
			t.Errorf("expected index to contain %q\n%s", fragment, out)
		}
	}
	if strings.Index(out, "<h2>Example</h2>") > strings.Index(out, "<h2>Pages</h2>") {
		t.Fatalf("expected groups in sorted order")
	}
}
