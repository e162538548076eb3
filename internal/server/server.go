// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the provider adapters over HTTP: one JSON
// pass-through route per provider, the combined HTML results page, and the
// static landing page.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/research-hub/internal/render"
	"github.com/pdiddy/research-hub/internal/search"
	"github.com/pdiddy/research-hub/pkg/types"
)

// Routes maps each pass-through path to its provider.
var Routes = map[string]string{
	"/search_semantic":       search.SemanticScholarName,
	"/search_github":         search.GitHubName,
	"/search_arxiv":          search.ArxivName,
	"/search_scinapse":       search.ScinapseName,
	"/search_google_scholar": search.GoogleScholarName,
}

const defaultShutdownTimeout = 10 * time.Second

// Server serves the research-hub HTTP surface.
type Server struct {
	cfg       types.HubConfig
	providers map[string]search.Provider
	log       zerolog.Logger
}

// New returns a Server using providers keyed by provider name.
func New(cfg types.HubConfig, providers map[string]search.Provider, log zerolog.Logger) *Server {
	return &Server{cfg: cfg, providers: providers, log: log}
}

// Handler returns the routed handler wrapped in request ID, access log, and
// panic recovery middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	for path, name := range Routes {
		mux.HandleFunc("GET "+path, s.handleProvider(name))
	}
	mux.HandleFunc("GET /results", s.handleResults)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(noListingFS{http.Dir(s.cfg.Server.StaticDir)})))

	return withRequestLogger(s.log, withAccessLog(withRecovery(mux)))
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.cfg.Server.ReadTimeout,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", srv.Addr).Str("static_dir", s.cfg.Server.StaticDir).Msg("server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving on %s: %w", srv.Addr, err)
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down")
	timeout := s.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// noListingFS serves files only; directories are reported as missing so the
// file server never lists them.
type noListingFS struct {
	fs http.FileSystem
}

func (n noListingFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}

func queryParam(r *http.Request) (string, bool) {
	q := strings.TrimSpace(r.URL.Query().Get("query"))
	return q, q != ""
}

// handleProvider serves one provider's pass-through payload. The body is
// the provider list (or raw body) on success and {"error": ...} otherwise.
func (s *Server) handleProvider(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, ok := queryParam(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "missing query parameter")
			return
		}
		p, ok := s.providers[name]
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Sprintf("provider %s is not enabled", name))
			return
		}

		ctx, cancel := s.withTimeout(r.Context())
		defer cancel()

		res, err := p.Search(ctx, query)
		if err != nil {
			pe := search.AsProviderError(name, err)
			zerolog.Ctx(ctx).Warn().Str("provider", name).Str("kind", string(pe.Kind)).Msg(pe.Message)
			writeError(w, providerStatus(pe), pe.Message)
			return
		}
		writeJSON(w, http.StatusOK, res.Payload)
	}
}

// handleResults runs every provider whose placeholder is in the results
// template and renders the combined page.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	log := zerolog.Ctx(r.Context())

	query, ok := queryParam(r)
	if !ok {
		http.Error(w, "missing query parameter", http.StatusBadRequest)
		return
	}

	tmpl, err := render.LoadResultsTemplate(s.cfg.Server.StaticDir)
	if err != nil {
		log.Error().Err(err).Msg("results template unavailable")
		http.Error(w, "results template unavailable", http.StatusInternalServerError)
		return
	}

	var providers []search.Provider
	for _, name := range render.Providers(tmpl) {
		if p, ok := s.providers[name]; ok {
			providers = append(providers, p)
		}
	}

	outcomes := search.Aggregate(r.Context(), providers, query, s.cfg.Search.Timeout)
	if failed := s.requiredFailures(outcomes); len(failed) > 0 {
		http.Error(w, "required providers failed: "+strings.Join(failed, "; "), http.StatusBadGateway)
		return
	}

	doc, err := render.Document(tmpl, query, outcomes)
	if err != nil {
		log.Error().Err(err).Msg("rendering results")
		http.Error(w, "rendering results failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, doc)
}

// requiredFailures lists failures of providers configured as required.
func (s *Server) requiredFailures(outcomes []search.Outcome) []string {
	var failed []string
	for _, o := range outcomes {
		if o.Failed() && slices.Contains(s.cfg.Results.Required, o.Provider) {
			failed = append(failed, o.Err.Error())
		}
	}
	return failed
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := render.LoadIndex(s.cfg.Server.StaticDir)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("landing page unavailable")
		http.Error(w, "landing page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Search.Timeout > 0 {
		return context.WithTimeout(ctx, s.cfg.Search.Timeout)
	}
	return context.WithCancel(ctx)
}

// providerStatus maps a provider failure to the pass-through response code.
func providerStatus(pe *search.ProviderError) int {
	switch {
	case pe.Kind == search.KindConfig:
		return http.StatusServiceUnavailable
	case errors.Is(pe, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
