package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/goliatone/go-formpages/pkg/i18n"
	"github.com/goliatone/go-formpages/pkg/model"
	"github.com/goliatone/go-formpages/pkg/openapi"
	"github.com/goliatone/go-formpages/pkg/orchestrator"
	"github.com/goliatone/go-formpages/pkg/pages"
	"github.com/goliatone/go-formpages/pkg/render"
	"github.com/goliatone/go-formpages/pkg/renderers/html"
	"github.com/goliatone/go-formpages/pkg/renderers/jsonform"
	"github.com/goliatone/go-formpages/pkg/stories"
	"github.com/goliatone/go-formpages/pkg/theme"
)

const maxBodyBytes = 1 << 20

type queryKey struct{}

// carriedParams are the request parameters a page keeps across posts and
// redirects, besides its props.
var carriedParams = []string{"lang", "theme", "variant"}

// carry builds the query a page keeps in its form action and in the
// redirect after a submit: its props plus lang, theme and variant.
func carry(props pages.Props, query url.Values) url.Values {
	out := url.Values{}
	for key, value := range props {
		if value = strings.TrimSpace(value); value != "" {
			out.Set(key, value)
		}
	}
	for _, key := range carriedParams {
		if value := strings.TrimSpace(query.Get(key)); value != "" {
			out.Set(key, value)
		}
	}
	return out
}

func withQuery(ctx context.Context, query url.Values) context.Context {
	return context.WithValue(ctx, queryKey{}, query)
}

// queryInAction keeps the carried query in the form action so posts rebuild
// the same form, imported entries included.
func queryInAction(ctx context.Context, form *model.Form) error {
	query, _ := ctx.Value(queryKey{}).(url.Values)
	if len(query) == 0 || form.Action == "" {
		return nil
	}
	form.Action += "?" + query.Encode()
	return nil
}

func propsFrom(def pages.Definition, query url.Values) pages.Props {
	props := pages.Props{}
	for _, key := range def.PropKeys {
		if value := strings.TrimSpace(query.Get(key)); value != "" {
			props[key] = value
		}
	}
	return props
}

// locale picks ?lang= when the catalog has it, then Accept-Language, then the
// configured default.
func (s *Server) locale(r *http.Request) string {
	if lang := strings.TrimSpace(r.URL.Query().Get("lang")); lang != "" && s.catalog.Has(lang) {
		return lang
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		return s.catalog.Negotiate(accept)
	}
	return s.cfg.Locale
}

func (s *Server) pageOptions(r *http.Request) (render.RenderOptions, error) {
	query := r.URL.Query()
	cfg, err := s.themes.Resolve(query.Get("theme"), query.Get("variant"))
	if err != nil {
		return render.RenderOptions{}, err
	}
	opts := render.RenderOptions{Standalone: true, Theme: cfg}
	if token := s.cfg.Server.CSRFToken; token != "" {
		opts.Hidden = render.MergeHiddenFields(nil, render.CSRFToken(CSRFInput, token))
	}
	return opts, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	s.docOnce.Do(func() {
		doc, err := openapi.Build(s.pages, openapi.Options{Title: "formpages", BasePath: APIPrefix})
		if err != nil {
			s.docErr = err
			return
		}
		s.docJSON, s.docErr = openapi.Marshal(doc)
	})
	if s.docErr != nil {
		s.fail(w, s.docErr)
		return
	}
	s.write(w, http.StatusOK, "application/json", s.docJSON)
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	def, ok := s.lookup(w, r)
	if !ok {
		return
	}
	opts, err := s.pageOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	renderer, err := s.orch.Renderers().Negotiate(r.Header.Get("Accept"))
	if err != nil {
		s.fail(w, err)
		return
	}
	props := propsFrom(def, r.URL.Query())
	out, err := s.orch.Generate(withQuery(r.Context(), carry(props, r.URL.Query())), orchestrator.Request{
		Page:          def.ID,
		Props:         props,
		Locale:        s.locale(r),
		Renderer:      renderer.Name(),
		RenderOptions: opts,
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	s.write(w, http.StatusOK, renderer.ContentType(), out)
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	def, ok := s.lookup(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form body", http.StatusBadRequest)
		return
	}
	if token := s.cfg.Server.CSRFToken; token != "" && r.PostForm.Get(CSRFInput) != token {
		http.Error(w, "invalid csrf token", http.StatusForbidden)
		return
	}
	opts, err := s.pageOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	props := propsFrom(def, r.URL.Query())
	locale := s.locale(r)
	query := carry(props, r.URL.Query())
	ctx := withQuery(r.Context(), query)
	out, err := s.orch.Process(ctx, orchestrator.Post{
		Page:   def.ID,
		Props:  props,
		Locale: locale,
		Data:   r.PostForm,
	})
	if err != nil {
		s.fail(w, err)
		return
	}

	if out.Accepted() {
		query.Set("id", out.Submission.ID.String())
		target := fmt.Sprintf("%s/%s/submitted?%s", FormsPrefix, url.PathEscape(def.ID), query.Encode())
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	status := http.StatusOK
	if len(out.Errors) > 0 {
		status = http.StatusUnprocessableEntity
	}
	body, err := s.orch.RenderOutcome(ctx, out, html.Name, locale, opts)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.write(w, status, "text/html; charset=utf-8", body)
}

func (s *Server) handleSubmitted(w http.ResponseWriter, r *http.Request) {
	def, ok := s.lookup(w, r)
	if !ok {
		return
	}
	opts, err := s.pageOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	locale := s.locale(r)
	opts.Notice = i18n.Must(s.catalog, locale, def.SubmittedKey, "Form submitted.")
	props := propsFrom(def, r.URL.Query())
	out, err := s.orch.Generate(withQuery(r.Context(), carry(props, r.URL.Query())), orchestrator.Request{
		Page:          def.ID,
		Props:         props,
		Locale:        locale,
		Renderer:      html.Name,
		RenderOptions: opts,
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	s.write(w, http.StatusOK, "text/html; charset=utf-8", out)
}

func (s *Server) handleAPIForm(w http.ResponseWriter, r *http.Request) {
	def, ok := s.lookup(w, r)
	if !ok {
		return
	}
	props := propsFrom(def, r.URL.Query())
	out, err := s.orch.Generate(withQuery(r.Context(), carry(props, nil)), orchestrator.Request{
		Page:     def.ID,
		Props:    props,
		Locale:   s.locale(r),
		Renderer: jsonform.Name,
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	s.write(w, http.StatusOK, jsonform.ContentType, out)
}

type apiAccepted struct {
	ID string `json:"id"`
}

type apiRejected struct {
	Errors map[string][]string `json:"errors,omitempty"`
	Error  string              `json:"error,omitempty"`
}

func (s *Server) handleAPISubmit(w http.ResponseWriter, r *http.Request) {
	def, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var values model.Values
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&values); err != nil {
		s.writeJSON(w, http.StatusBadRequest, apiRejected{Error: "request body must be a JSON object"})
		return
	}

	out, err := s.orch.SubmitValues(r.Context(), def.ID, propsFrom(def, r.URL.Query()), s.locale(r), values)
	if err != nil {
		s.fail(w, err)
		return
	}
	if !out.Accepted() {
		s.writeJSON(w, http.StatusUnprocessableEntity, apiRejected{Errors: out.Errors})
		return
	}
	s.writeJSON(w, http.StatusOK, apiAccepted{ID: out.Submission.ID.String()})
}

func (s *Server) handleStoryIndex(w http.ResponseWriter, r *http.Request) {
	heading := i18n.Must(s.catalog, s.locale(r), "pages.stories.heading", "Stories")
	out, err := s.index.Render(heading, StoriesPrefix, s.stories.List())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.write(w, http.StatusOK, "text/html; charset=utf-8", []byte(out))
}

func (s *Server) handleStory(w http.ResponseWriter, r *http.Request) {
	story, err := s.stories.Lookup(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, stories.ErrUnknownStory) {
			http.NotFound(w, r)
			return
		}
		s.fail(w, err)
		return
	}
	opts, err := s.pageOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	locale := story.Locale
	if locale == "" {
		locale = s.locale(r)
	}
	props := story.Props
	query := carry(props, r.URL.Query())
	if story.Locale != "" {
		query.Set("lang", story.Locale)
	}
	out, err := s.orch.Generate(withQuery(r.Context(), query), orchestrator.Request{
		Page:          story.Page,
		Props:         props,
		Locale:        locale,
		Renderer:      html.Name,
		RenderOptions: opts,
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	s.write(w, http.StatusOK, "text/html; charset=utf-8", out)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (pages.Definition, bool) {
	def, err := s.pages.Lookup(chi.URLParam(r, "id"))
	if err != nil {
		if strings.HasPrefix(r.URL.Path, APIPrefix) {
			s.writeJSON(w, http.StatusNotFound, apiRejected{Error: err.Error()})
		} else {
			http.NotFound(w, r)
		}
		return pages.Definition{}, false
	}
	return def, true
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, pages.ErrUnknownPage) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if errors.Is(err, theme.ErrUnknownTheme) || errors.Is(err, theme.ErrUnknownVariant) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.logger.Error("request failed", zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (s *Server) write(w http.ResponseWriter, status int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		s.logger.Debug("write response", zap.Error(err))
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.write(w, status, "application/json", body)
}
