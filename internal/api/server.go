// Package api exposes the summarization pipeline over HTTP.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"papersum/internal/config"
	"papersum/internal/llm"
	"papersum/internal/pipeline"
	"papersum/internal/refine"
	"papersum/internal/store"
)

// Server is the HTTP API server for papersum.
type Server struct {
	router     chi.Router
	summarizer *pipeline.Summarizer
	refiner    *refine.Refiner
	openai     *llm.OpenAIClient
	store      *store.Store
	log        *slog.Logger
	cfg        config.Config
}

// NewServer creates and configures the HTTP server. The store and refiner
// may be nil; their endpoints then report the feature as unavailable.
func NewServer(summarizer *pipeline.Summarizer, refiner *refine.Refiner, openai *llm.OpenAIClient, st *store.Store, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		summarizer: summarizer,
		refiner:    refiner,
		openai:     openai,
		store:      st,
		log:        log,
		cfg:        cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(logRequests(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(requireAuth(s.cfg.APIKey, s.log))

		r.Post("/api/summarize", s.handleSummarize)
		r.Get("/api/stats/llm", s.handleLLMStats)

		r.Get("/api/summaries", s.handleListSummaries)
		r.Get("/api/summaries/{id}", s.handleGetSummary)
		r.Delete("/api/summaries/{id}", s.handleDeleteSummary)
		r.Post("/api/summaries/{id}/refine", s.handleRefineSummary)
		r.Post("/api/summaries/{id}/ask", s.handleAskSummary)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
