// Package api exposes the report pipeline over HTTP: client brand CRUD,
// template listing, report generation, and artifact download.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"client-report-engine/internal/brandstore"
	"client-report-engine/internal/common/config"
	"client-report-engine/internal/common/logger"
	"client-report-engine/internal/render"
	"client-report-engine/internal/report"
)

type Server struct {
	cfg       *config.Config
	store     *brandstore.Store
	renderer  *render.Renderer
	generator *report.Generator
	log       logger.Logger
	router    chi.Router
}

func NewServer(cfg *config.Config, store *brandstore.Store, renderer *render.Renderer, generator *report.Generator, log logger.Logger) *Server {
	s := &Server{
		cfg:       cfg,
		store:     store,
		renderer:  renderer,
		generator: generator,
		log:       log.WithFields(map[string]interface{}{"component": "api"}),
	}
	s.router = s.routes()
	return s
}

func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/clients", func(r chi.Router) {
		r.Get("/", s.handleListClients)
		r.Post("/", s.handleUpsertClient)
		r.Get("/{id}", s.handleGetClient)
		r.Delete("/{id}", s.handleDeleteClient)
		r.Post("/{id}/logo", s.handleUploadLogo)
	})

	r.Get("/templates", s.handleListTemplates)

	r.Route("/reports", func(r chi.Router) {
		r.Post("/generate", s.handleGenerateReport)
		r.Get("/download/{filename}", s.handleDownloadReport)
	})

	return r
}
