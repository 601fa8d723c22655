// Package server exposes the form pages over HTTP.
//
// Browser pages live under /forms, the JSON API under /api/forms, and the
// story harness under /dev/stories when enabled.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/goliatone/go-formpages/internal/config"
	"github.com/goliatone/go-formpages/pkg/i18n"
	"github.com/goliatone/go-formpages/pkg/orchestrator"
	"github.com/goliatone/go-formpages/pkg/pages"
	"github.com/goliatone/go-formpages/pkg/render"
	"github.com/goliatone/go-formpages/pkg/renderers/html"
	"github.com/goliatone/go-formpages/pkg/renderers/jsonform"
	"github.com/goliatone/go-formpages/pkg/stories"
	"github.com/goliatone/go-formpages/pkg/theme"
)

// Paths the router mounts.
const (
	FormsPrefix   = "/forms"
	APIPrefix     = "/api/forms"
	StoriesPrefix = "/dev/stories"
	AssetsPrefix  = "/assets"
	CSRFInput     = "_csrf"
)

// Option customises a Server.
type Option func(*Server)

// WithLogger sets the logger used for request and submission logs.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPages replaces the page registry.
func WithPages(registry *pages.Registry) Option {
	return func(s *Server) {
		s.pages = registry
	}
}

// WithStories replaces the story registry.
func WithStories(registry *stories.Registry) Option {
	return func(s *Server) {
		s.stories = registry
	}
}

// WithSubmitter replaces where accepted submissions go.
func WithSubmitter(submitter pages.Submitter) Option {
	return func(s *Server) {
		s.submitter = submitter
	}
}

// Server wires the orchestrator into a chi router.
type Server struct {
	cfg       config.Config
	logger    *zap.Logger
	pages     *pages.Registry
	stories   *stories.Registry
	submitter pages.Submitter
	catalog   *i18n.Catalog
	themes    *theme.Selector
	index     *stories.Index
	orch      *orchestrator.Orchestrator
	router    chi.Router

	docOnce sync.Once
	docJSON []byte
	docErr  error
}

// New builds a Server from cfg.
func New(cfg config.Config, options ...Option) (*Server, error) {
	s := &Server{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.pages == nil {
		s.pages = pages.Default()
	}
	if s.stories == nil {
		s.stories = stories.Default()
	}
	if s.submitter == nil {
		s.submitter = pages.NewLogSubmitter(s.logger)
	}
	if cfg.Stories.Enabled {
		if err := s.stories.Check(s.pages); err != nil {
			return nil, err
		}
	}

	catalog, err := i18n.Default()
	if err != nil {
		return nil, fmt.Errorf("server: load catalogs: %w", err)
	}
	s.catalog = catalog

	themes, err := theme.NewSelector(cfg.Theme.Name, cfg.Theme.Variant, theme.USWDS())
	if err != nil {
		return nil, fmt.Errorf("server: themes: %w", err)
	}
	if _, err := themes.Resolve("", ""); err != nil {
		return nil, fmt.Errorf("server: default theme: %w", err)
	}
	s.themes = themes

	htmlRenderer, err := html.New(html.WithAssetPrefix(AssetsPrefix))
	if err != nil {
		return nil, fmt.Errorf("server: html renderer: %w", err)
	}
	renderers := render.NewRegistry()
	renderers.MustRegister(htmlRenderer)
	renderers.MustRegister(jsonform.New())

	index, err := stories.NewIndex()
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	s.index = index

	s.orch = orchestrator.New(
		orchestrator.WithPages(s.pages),
		orchestrator.WithRegistry(renderers),
		orchestrator.WithTranslator(catalog),
		orchestrator.WithSubmitter(s.submitter),
		orchestrator.WithLogger(s.logger),
		orchestrator.WithSchemaTransformer(orchestrator.Chain(
			orchestrator.ActionTransformer(FormsPrefix+"/{id}"),
			orchestrator.TransformerFunc(queryInAction),
		)),
	)
	s.router = s.routes()
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger.Named("http")))

	r.Get("/healthz", s.handleHealth)
	r.Get("/openapi.json", s.handleOpenAPI)

	r.Handle(AssetsPrefix+"/*", http.StripPrefix(AssetsPrefix+"/", http.FileServer(http.FS(html.AssetsFS()))))

	r.Route(FormsPrefix, func(r chi.Router) {
		r.Get("/{id}", s.handleForm)
		r.Post("/{id}", s.handlePost)
		r.Get("/{id}/submitted", s.handleSubmitted)
	})
	r.Route(APIPrefix, func(r chi.Router) {
		r.Get("/{id}", s.handleAPIForm)
		r.Post("/{id}", s.handleAPISubmit)
	})
	if s.cfg.Stories.Enabled {
		r.Get(StoriesPrefix, s.handleStoryIndex)
		r.Get(StoriesPrefix+"/{id}", s.handleStory)
	}
	return r
}

// Run serves until ctx is cancelled and then shuts down within the
// configured timeout.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.cfg.Server.Addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: s.cfg.Server.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", listener.Addr().String()))
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := s.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s.logger.Info("shutting down", zap.Duration("timeout", timeout))
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
