// Package web provides the HTTP server: the project proxy routes, the
// dataset processing API, exports, health, metrics and the index page.
package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/autoprep/internal/config"
	"github.com/JonMunkholm/autoprep/internal/core"
	"github.com/JonMunkholm/autoprep/internal/persist"
	mw "github.com/JonMunkholm/autoprep/internal/web/middleware"
)

// Server is the HTTP server for the application.
type Server struct {
	cfg      *config.Config
	persist  *persist.Service
	jobs     *core.JobLimiter
	validate *validator.Validate
	registry *prometheus.Registry
	router   *chi.Mux
	server   *http.Server

	limiters []*mw.RateLimiter
}

// NewServer creates a Server. reg receives the HTTP and job collectors and
// backs /metrics; nil creates a private registry.
func NewServer(cfg *config.Config, svc *persist.Service, reg *prometheus.Registry) *Server {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	s := &Server{
		cfg:      cfg,
		persist:  svc,
		jobs:     core.NewJobLimiter(cfg.Processing.MaxConcurrent, cfg.Processing.MaxWaitTime),
		validate: newValidator(),
		registry: reg,
		router:   chi.NewRouter(),
	}
	s.registerCollectors()
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) registerCollectors() {
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "autoprep",
			Name:      "jobs_active",
			Help:      "Dataset processing jobs currently running.",
		}, func() float64 { return float64(s.jobs.ActiveCount()) }),
	)
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(mw.NewHTTPMetrics(s.registry).Handler)
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	}
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		s.router.Use(s.newLimiter(s.cfg.Rate.RequestsPerMinute).Handler)
	}
}

func (s *Server) newLimiter(perMinute int) *mw.RateLimiter {
	rl := mw.NewRateLimiter(perMinute)
	s.limiters = append(s.limiters, rl)
	return rl
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleIndex)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(mw.APIKeyAuth(s.cfg.Security))

			r.Get("/samples", s.handleListSamples)
			r.Get("/samples/{key}", s.handleGetSample)

			// Dataset processing
			r.Group(func(r chi.Router) {
				if s.cfg.Rate.Enabled {
					r.Use(s.newLimiter(s.cfg.Rate.ProcessingLimit).Handler)
				}
				r.Post("/profile", s.handleProfile)
				r.Post("/clean", s.handleClean)
				r.Post("/export/{format}", s.handleExport)
			})

			// Projects
			r.Get("/projects", s.handleListProjects)
			r.Post("/projects", s.handleCreateProject)
			r.Route("/projects/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetProject)
				r.Put("/", s.handleUpdateProject)
				r.Delete("/", s.handleDeleteProject)
				r.Post("/datasets", s.handleSaveDataset)
				r.Post("/analysis", s.handleSaveAnalysis)
				r.Post("/analysis/audit", s.handleAuditProject)
				r.Post("/processing", s.handleSaveProcessing)
				r.Post("/save", s.handleSaveTable)
				r.Get("/table", s.handleLoadTable)
				r.Get("/pipeline/download", s.handleDownloadPipeline)
			})
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and waits for running jobs.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, rl := range s.limiters {
		rl.Stop()
	}
	if s.server == nil {
		return nil
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	return s.jobs.WaitForDrain(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
			}
			next.ServeHTTP(w, r)
		})
	}
}
