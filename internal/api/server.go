// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api exposes the engine over a JSON HTTP API.
package api

import (
	"net/http"

	"github.com/ManuGH/fieldpulse/internal/api/middleware"
	"github.com/ManuGH/fieldpulse/internal/config"
	"github.com/ManuGH/fieldpulse/internal/health"
	"github.com/ManuGH/fieldpulse/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the collaborators of the HTTP API.
type Deps struct {
	Service *service.Service
	Health  *health.Manager
	API     config.APIConfig
	// TracingService names server spans; empty disables HTTP tracing.
	TracingService string
}

// Server routes HTTP requests to the service.
type Server struct {
	svc    *service.Service
	health *health.Manager
	router chi.Router
}

// New builds the router with the full middleware stack.
func New(deps Deps) *Server {
	s := &Server{svc: deps.Service, health: deps.Health}
	if s.health == nil {
		s.health = health.NewManager("")
	}

	r := middleware.NewRouter(middleware.StackConfig{
		EnableMetrics:  true,
		EnableLogging:  true,
		TracingService: deps.TracingService,
		RateLimit:      deps.API.RateLimit,
		RateWindow:     deps.API.RateWindow,
		MaxBodyBytes:   deps.API.MaxBodyBytes,
	})
	s.routes(r)
	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes(r chi.Router) {
	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/taxonomy", func(r chi.Router) {
			r.Get("/reasons", s.handleListReasons)
			r.Get("/reasons/{code}", s.handleGetReason)
			r.Get("/categories", s.handleListCategories)
			r.Get("/categories/{category}", s.handleGetCategory)
		})
		r.Post("/lifecycle/transition", s.handleTransition)
		r.Post("/lifecycle/reassess", s.handleReassess)
		r.Route("/playbooks", func(r chi.Router) {
			r.Get("/", s.handleListPlaybooks)
			r.Get("/{id}", s.handleGetPlaybook)
			r.Post("/select", s.handleSelect)
			r.Post("/plan", s.handlePlan)
		})
		r.Route("/adm", func(r chi.Router) {
			r.Post("/effectiveness", s.handleEffectiveness)
			r.Post("/rank", s.handleRank)
			r.Post("/briefing", s.handleBriefing)
			r.Post("/briefings", s.handlePortfolio)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, http.StatusNotFound, "not_found", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" not allowed")
	})
}
