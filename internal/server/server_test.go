package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formpages/internal/config"
	"github.com/goliatone/go-formpages/pkg/pages"
	"github.com/goliatone/go-formpages/pkg/testsupport"
)

type recorder struct {
	mu          sync.Mutex
	submissions []pages.Submission
}

func (r *recorder) Submit(_ context.Context, sub pages.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submissions = append(r.submissions, sub)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.submissions)
}

func newTestServer(t *testing.T, mutate func(*config.Config)) (*Server, *recorder) {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	rec := &recorder{}
	srv, err := New(cfg, WithLogger(testsupport.Logger(t)), WithSubmitter(rec))
	require.NoError(t, err)
	return srv, rec
}

func do(t *testing.T, srv *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	return rr
}

func postForm(path string, data url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(data.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func validExample() url.Values {
	return url.Values{
		"_intent":                          {"submit"},
		"doYouLikeForms":                   {"true"},
		"whenDidYouStartLikingForms.month": {"2"},
		"whenDidYouStartLikingForms.day":   {"29"},
		"whenDidYouStartLikingForms.year":  {"2020"},
		"formLibraryPreference":            {"formik"},
		"bestBeverage":                     {"tea"},
	}
}

func TestHealthAndAssets(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rr := do(t, srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())

	rr = do(t, srv, httptest.NewRequest(http.MethodGet, "/assets/formpages.css", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/css")
}

func TestRenderForm(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rr := do(t, srv, httptest.NewRequest(http.MethodGet, "/forms/identity?importedSsn=123-45-6789", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	body := rr.Body.String()
	assert.Contains(t, body, "<!DOCTYPE html>")
	assert.Contains(t, body, `action="/forms/identity?importedSsn=123-45-6789"`)
	assert.Contains(t, body, "123-45-6789")
	assert.Contains(t, body, `href="/assets/formpages.css"`)
	assert.Contains(t, body, `data-theme="uswds"`)

	rr = do(t, srv, httptest.NewRequest(http.MethodGet, "/forms/nope", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRenderFormLocaleAndTheme(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/forms/identity?variant=dark", nil)
	req.Header.Set("Accept-Language", "es-MX,es;q=0.9")
	rr := do(t, srv, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Información de identidad")
	assert.Contains(t, rr.Body.String(), `data-theme-variant="dark"`)

	rr = do(t, srv, httptest.NewRequest(http.MethodGet, "/forms/identity?lang=es", nil))
	assert.Contains(t, rr.Body.String(), "Información de identidad")

	rr = do(t, srv, httptest.NewRequest(http.MethodGet, "/forms/identity?theme=material", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRenderFormNegotiatesJSON(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/forms/example", nil)
	req.Header.Set("Accept", "application/json")
	rr := do(t, srv, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var payload struct {
		Form struct {
			ID     string `json:"id"`
			Action string `json:"action"`
		} `json:"form"`
		Watched []string `json:"watched"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	assert.Equal(t, "example", payload.Form.ID)
	assert.Equal(t, "/forms/example", payload.Form.Action)
	assert.Equal(t, []string{"formLibraryPreference"}, payload.Watched)
}

func TestPostRefreshAndErrors(t *testing.T) {
	srv, rec := newTestServer(t, nil)

	rr := do(t, srv, postForm("/forms/example", url.Values{
		"_intent":                     {"refresh"},
		"formLibraryPreference":       {"reactHookForm"},
		"_prev.formLibraryPreference": {"formik"},
	}))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `id="fg-whyIsFormikBad"`)
	assert.NotContains(t, rr.Body.String(), "You must select your beverage of choice")

	rr = do(t, srv, postForm("/forms/example", url.Values{"_intent": {"submit"}}))
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "You must select your beverage of choice")
	assert.Equal(t, 0, rec.count())
}

func TestPostAcceptedRedirects(t *testing.T) {
	srv, rec := newTestServer(t, nil)

	rr := do(t, srv, postForm("/forms/example?lang=es", validExample()))
	require.Equal(t, http.StatusSeeOther, rr.Code)
	location, err := url.Parse(rr.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/forms/example/submitted", location.Path)
	assert.Equal(t, "es", location.Query().Get("lang"))
	require.Equal(t, 1, rec.count())
	assert.Equal(t, "es", rec.submissions[0].Locale)
	assert.Equal(t, rec.submissions[0].ID.String(), location.Query().Get("id"))

	rr = do(t, srv, httptest.NewRequest(http.MethodGet, "/forms/example/submitted", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Form submitted.")
}

func TestPostIgnoresHiddenFieldErrors(t *testing.T) {
	srv, rec := newTestServer(t, nil)

	data := url.Values{
		"_intent":                               {"submit"},
		"workAuthorizationType":                 {"permanentResident"},
		"uscisOrAlienRegistrationNumber":        {"A1"},
		"confirmUscisOrAlienRegistrationNumber": {"A2"},
	}
	rr := do(t, srv, postForm("/forms/identity", data))
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "The values do not match")
	assert.Equal(t, 0, rec.count())

	data.Set("workAuthorizationType", "usCitizenOrNational")
	rr = do(t, srv, postForm("/forms/identity", data))
	require.Equal(t, http.StatusSeeOther, rr.Code, rr.Body.String())
	require.Equal(t, 1, rec.count())
	values := rec.submissions[0].Values
	assert.Equal(t, "usCitizenOrNational", values["workAuthorizationType"])
	assert.Equal(t, "A1", values["uscisOrAlienRegistrationNumber"])
	assert.Equal(t, "A2", values["confirmUscisOrAlienRegistrationNumber"])
}

func TestSubmittedPageKeepsPropsAndTheme(t *testing.T) {
	srv, rec := newTestServer(t, nil)

	rr := do(t, srv, httptest.NewRequest(http.MethodGet, "/forms/identity?importedSsn=123-45-6789&variant=dark&lang=es", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `action="/forms/identity?importedSsn=123-45-6789&amp;lang=es&amp;variant=dark"`)

	rr = do(t, srv, postForm("/forms/identity?importedSsn=123-45-6789&variant=dark&lang=es", url.Values{"_intent": {"submit"}}))
	require.Equal(t, http.StatusSeeOther, rr.Code, rr.Body.String())
	require.Equal(t, 1, rec.count())
	assert.Equal(t, "123-45-6789", rec.submissions[0].Values["ssn"])

	location, err := url.Parse(rr.Header().Get("Location"))
	require.NoError(t, err)
	query := location.Query()
	assert.Equal(t, "/forms/identity/submitted", location.Path)
	assert.Equal(t, "123-45-6789", query.Get("importedSsn"))
	assert.Equal(t, "dark", query.Get("variant"))
	assert.Equal(t, "es", query.Get("lang"))

	rr = do(t, srv, httptest.NewRequest(http.MethodGet, location.String(), nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `<dd class="fp-imported__value">123-45-6789</dd>`)
	assert.NotContains(t, body, `id="fg-ssn"`)
	assert.Contains(t, body, `data-theme-variant="dark"`)
	assert.Contains(t, body, "Información de identidad")
}

func TestPostRequiresCSRF(t *testing.T) {
	srv, rec := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.CSRFToken = "tok"
	})

	rr := do(t, srv, httptest.NewRequest(http.MethodGet, "/forms/example", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `name="_csrf"`)

	rr = do(t, srv, postForm("/forms/example", validExample()))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	data := validExample()
	data.Set(CSRFInput, "tok")
	rr = do(t, srv, postForm("/forms/example", data))
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, 1, rec.count())
}

func TestAPI(t *testing.T) {
	srv, rec := newTestServer(t, nil)

	post := func(path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return do(t, srv, req)
	}

	rr := post("/api/forms/example", `{
		"doYouLikeForms": false,
		"whenDidYouStartLikingForms": {"month": 1, "day": 31, "year": 1999},
		"formLibraryPreference": "formik",
		"bestBeverage": "coffee"
	}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var accepted struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &accepted))
	require.Equal(t, 1, rec.count())
	assert.Equal(t, rec.submissions[0].ID.String(), accepted.ID)

	rr = post("/api/forms/example", `{"formLibraryPreference": "reactHookForm"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	var rejected struct {
		Errors map[string][]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rejected))
	assert.Equal(t, []string{"This field is required"}, rejected.Errors["whyIsFormikBad"])
	assert.Equal(t, []string{"You must select your beverage of choice"}, rejected.Errors["bestBeverage"])

	rr = post("/api/forms/example", `{"doYouLikeForms": "yes", "whenDidYouStartLikingForms": {"day": 12, "year": 2020}}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	rejected.Errors = nil
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rejected))
	assert.Equal(t, []string{"Select yes or no"}, rejected.Errors["doYouLikeForms"])
	assert.Equal(t, []string{"This field is required"}, rejected.Errors["whenDidYouStartLikingForms.month"])

	rr = post("/api/forms/example", `not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = post("/api/forms/missing", `{}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	rr = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/forms/identity?importedSsn=123-45-6789", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"ssn":"123-45-6789"`)
}

func TestOpenAPI(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	for i := 0; i < 2; i++ {
		rr := do(t, srv, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		var doc struct {
			Paths map[string]any `json:"paths"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &doc))
		assert.Contains(t, doc.Paths, "/api/forms/identity")
		assert.Contains(t, doc.Paths, "/api/forms/example")
	}
}

func TestStories(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rr := do(t, srv, httptest.NewRequest(http.MethodGet, "/dev/stories", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `href="/dev/stories/pages-identity"`)

	rr = do(t, srv, httptest.NewRequest(http.MethodGet, "/dev/stories/pages-identity-es", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Información de identidad")

	rr = do(t, srv, httptest.NewRequest(http.MethodGet, "/dev/stories/nope", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	disabled, _ := newTestServer(t, func(cfg *config.Config) {
		cfg.Stories.Enabled = false
	})
	rr = do(t, disabled, httptest.NewRequest(http.MethodGet, "/dev/stories", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestServeShutsDown(t *testing.T) {
	srv, _ := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.ShutdownTimeout = time.Second
	})
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, listener) }()

	resp, err := http.Get("http://" + listener.Addr().String() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
