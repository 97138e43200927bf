// Package web provides the HTTP server and handlers for the test-case UI.
package web

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/casedesk/internal/config"
	"github.com/JonMunkholm/casedesk/internal/core"
	mw "github.com/JonMunkholm/casedesk/internal/web/middleware"
)

//go:embed static
var staticFiles embed.FS

// Server is the HTTP server for the test-case application.
type Server struct {
	cfg        *config.Config
	service    *core.Service
	workspaces *core.WorkspaceStore
	router     *chi.Mux
	server     *http.Server
}

// NewServer creates a new Server instance.
func NewServer(cfg *config.Config, service *core.Service, workspaces *core.WorkspaceStore) *Server {
	s := &Server{
		cfg:        cfg,
		service:    service,
		workspaces: workspaces,
		router:     chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	// Security hardening
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		limiter := mw.NewRateLimiter(s.cfg.Rate.RequestsPerMinute, s.cfg.Rate.Burst)
		s.router.Use(limiter.Middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.router.Get("/healthz", s.handleHealth)
	if s.cfg.Metrics.Enabled {
		s.router.Handle(s.cfg.Metrics.Path, promhttp.Handler())
	}

	requestTimeout := middleware.Timeout(s.cfg.Server.RequestTimeout)

	s.router.Group(func(r chi.Router) {
		r.Use(s.workspaceMiddleware)

		// Pages
		r.Group(func(r chi.Router) {
			r.Use(requestTimeout)
			r.Get("/", s.handleIndex)
			r.Get("/planilha-manual", s.handleGridPage)
			r.Get("/evidencias", s.handleEvidencePage)
			r.Get("/{key}", s.handleParentPage)
		})

		r.Route("/api", func(r chi.Router) {
			// Evidence processing takes far longer than the other requests.
			r.With(middleware.Timeout(s.cfg.Evidence.Timeout)).
				Post("/evidence/upload", s.handleEvidenceUpload)

			r.Group(func(r chi.Router) {
				r.Use(requestTimeout)

				// Parent requirements
				r.Get("/parents", s.handleSearchParent)
				r.Get("/parents/{parentID}/cases", s.handleListCases)
				r.Get("/parents/{parentID}/export", s.handleExportSpreadsheet)

				// Single cases
				r.Post("/cases", s.handleCreateCase)
				r.Get("/cases/{key}", s.handleGetCase)
				r.Get("/cases/{key}/edit", s.handleEditCase)
				r.Put("/cases", s.handleUpdateCase)
				r.Put("/cases/{key}", s.handleUpdateCase)
				r.Patch("/cases/{key}/field", s.handleUpdateField)
				r.Delete("/cases/{key}", s.handleDeleteCase)

				// Bulk import
				r.Post("/import/preview", s.handlePreviewImport)
				r.Post("/import/fill", s.handleFillGrid)
				r.Post("/import/clear", s.handleClearImport)
				r.Post("/import/export", s.handleExportGrid)

				// Evidence
				r.Get("/evidence/status", s.handleEvidenceStatus)
				r.Get("/evidence/list", s.handleEvidenceList)
				r.Post("/evidence/send", s.handleSendEvidence)
				r.Post("/evidence/clear", s.handleClearEvidence)
			})
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	cfg := s.cfg.Server
	writeTimeout := cfg.WriteTimeout
	if s.cfg.Evidence.Timeout > writeTimeout {
		writeTimeout = s.cfg.Evidence.Timeout
	}

	s.server = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	slog.Info("starting server", "addr", cfg.Addr())
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// handleHealth reports liveness and whether an evidence log is being processed.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":            "ok",
		"evidence_active":   s.service.Guard().Active(),
		"active_workspaces": s.workspaces.Len(),
		"time":              time.Now().UTC().Format(time.RFC3339),
	})
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

			// Inline styles and hx-on handlers need unsafe-inline.
			if enableCSP {
				h.Set("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; font-src 'self'")
			}

			next.ServeHTTP(w, r)
		})
	}
}
