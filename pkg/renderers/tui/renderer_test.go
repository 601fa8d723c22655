package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formpages/pkg/model"
	"github.com/goliatone/go-formpages/pkg/render"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	infoMessages []string
	prompts      []string
	inputPos     int
	selectPos    int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	s.prompts = append(s.prompts, cfg.Message)
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	s.prompts = append(s.prompts, cfg.Message)
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func exampleForm() model.Form {
	return model.Form{
		ID: "example",
		Fields: []model.Field{
			{Kind: model.KindImportedBox, Children: []model.Field{
				{Kind: model.KindImported, Label: "Profession", Value: "Software Engineer"},
			}},
			{Name: "likes", Kind: model.KindYesNo, Label: "Do you like forms?"},
			{Name: "since", Kind: model.KindDate, Label: "Since"},
			{
				Name:    "preference",
				Kind:    model.KindRadio,
				Label:   "Library",
				Options: []model.Option{{Label: "formik", Value: "formik"}, {Label: "reactHookForm", Value: "reactHookForm"}},
				Resets:  []model.ResetRule{{When: `preference == "formik"`, Fields: []string{"why"}}},
			},
			{Name: "why", Kind: model.KindText, Label: "Why?", VisibleWhen: `preference && preference != "formik"`},
			{
				Name:       "drink",
				Kind:       model.KindDropdown,
				Label:      "Drink",
				StartEmpty: true,
				Options:    []model.Option{{Label: "Water", Value: "water"}, {Label: "Tea", Value: "tea"}},
			},
		},
	}
}

func TestFillPromptsVisibleFieldsInOrder(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"4", "x", "12", "2020", "less boilerplate"},
		selectIdx: []int{0, 1, 1},
	}
	r := New(WithPromptDriver(driver))

	values, err := r.Fill(context.Background(), exampleForm(), nil)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}

	want := model.Values{
		"likes":      true,
		"since":      map[string]any{"month": 4, "day": 12, "year": 2020},
		"preference": "reactHookForm",
		"why":        "less boilerplate",
		"drink":      "water",
	}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}

	wantPrompts := []string{
		"Do you like forms?",
		"Since (Month)", "Since (Day)", "Since (Day)", "Since (Year)",
		"Library", "Why?", "Drink",
	}
	if diff := cmp.Diff(wantPrompts, driver.prompts); diff != "" {
		t.Fatalf("prompts mismatch (-want +got):\n%s", diff)
	}
	if driver.infoMessages[0] != "Profession: Software Engineer" {
		t.Fatalf("expected imported entries to be printed first, got %v", driver.infoMessages)
	}
}

func TestFillSkipsHiddenFieldsAndAppliesResets(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"", "", ""},
		selectIdx: []int{1, 0, 0},
	}
	r := New(WithPromptDriver(driver))

	values, err := r.Fill(context.Background(), exampleForm(), model.Values{"why": "stale"})
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if diff := cmp.Diff(model.Values{"likes": false, "preference": "formik"}, values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	for _, prompt := range driver.prompts {
		if prompt == "Why?" {
			t.Fatalf("hidden field should not be prompted")
		}
	}
}

func TestFillRepromptsInvalidFields(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"", "", "", "2", "30", "2021", "2", "28", "2021"},
		selectIdx: []int{0, 0, 1},
	}
	calls := 0
	validate := func(_ context.Context, values model.Values) (map[string][]string, error) {
		calls++
		since, _ := values["since"].(map[string]any)
		switch {
		case since == nil:
			return map[string][]string{"since.month": {"This field is required"}}, nil
		case since["day"] == 30:
			return map[string][]string{"since.month": {"Please enter a valid date"}}, nil
		}
		return nil, nil
	}
	r := New(WithPromptDriver(driver), WithValidator(validate))

	values, err := r.Fill(context.Background(), exampleForm(), nil)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected validator to run three times, ran %d", calls)
	}
	if diff := cmp.Diff(map[string]any{"month": 2, "day": 28, "year": 2021}, values["since"]); diff != "" {
		t.Fatalf("date mismatch (-want +got):\n%s", diff)
	}
	joined := strings.Join(driver.infoMessages, "\n")
	if !strings.Contains(joined, "! Since: Please enter a valid date") {
		t.Fatalf("expected validation message to be shown, got %q", joined)
	}
}

func TestFillUnresolvedErrors(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"", "", ""},
		selectIdx: []int{0, 0, 0},
	}
	validate := func(context.Context, model.Values) (map[string][]string, error) {
		return map[string][]string{"why": {"This field is required"}}, nil
	}
	r := New(WithPromptDriver(driver), WithValidator(validate))

	_, err := r.Fill(context.Background(), exampleForm(), nil)
	if !errors.Is(err, ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved, got %v", err)
	}
}

func TestRenderSerializesValues(t *testing.T) {
	script := func() *stubDriver {
		return &stubDriver{inputs: []string{"1", "2", "2003"}, selectIdx: []int{0, 0, 2}}
	}

	jsonOut, err := New(WithPromptDriver(script())).Render(context.Background(), exampleForm(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render json: %v", err)
	}
	if !strings.Contains(string(jsonOut), `"drink": "tea"`) {
		t.Fatalf("unexpected json output %s", jsonOut)
	}

	formOut, err := New(WithPromptDriver(script()), WithOutputFormat(OutputFormatFormURLEncoded)).
		Render(context.Background(), exampleForm(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render form: %v", err)
	}
	want := "drink=tea&likes=true&preference=formik&since.day=2&since.month=1&since.year=2003"
	if string(formOut) != want {
		t.Fatalf("want %q got %q", want, formOut)
	}

	pretty := New(WithPromptDriver(script()), WithOutputFormat(OutputFormatPrettyText))
	if pretty.ContentType() != "text/plain" {
		t.Fatalf("unexpected content type %s", pretty.ContentType())
	}
	prettyOut, err := pretty.Render(context.Background(), exampleForm(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render pretty: %v", err)
	}
	if !strings.Contains(string(prettyOut), "since: 01/02/2003\n") {
		t.Fatalf("unexpected pretty output %q", prettyOut)
	}
}

func TestPlainHint(t *testing.T) {
	got := plainHint(`It starts with an A. <a href="https://example.com">Need help &amp; more?</a>`)
	if got != "It starts with an A. Need help & more?" {
		t.Fatalf("unexpected plain hint %q", got)
	}
}
