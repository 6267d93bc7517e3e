package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"papersum/internal/refine"
	"papersum/internal/store"
)

// loadSummaryForRefine resolves the shared preconditions of the refine and
// ask handlers. A nil return means the response has already been written.
func (s *Server) loadSummaryForRefine(w http.ResponseWriter, r *http.Request) *store.SavedSummary {
	if s.store == nil {
		jsonError(w, "summary store unavailable", http.StatusServiceUnavailable)
		return nil
	}
	if s.refiner == nil {
		jsonError(w, "refinement unavailable", http.StatusServiceUnavailable)
		return nil
	}
	sum, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, "summary not found", http.StatusNotFound)
			return nil
		}
		jsonError(w, "failed to load summary: "+err.Error(), http.StatusInternalServerError)
		return nil
	}
	return sum
}

func (s *Server) handleRefineSummary(w http.ResponseWriter, r *http.Request) {
	sum := s.loadSummaryForRefine(w, r)
	if sum == nil {
		return
	}

	var body struct {
		Request string `json:"request"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Request == "" {
		jsonError(w, "request field is required", http.StatusBadRequest)
		return
	}

	refined, err := s.refiner.Refine(r.Context(), sum.Summary, body.Request)
	if err != nil {
		s.log.Error("refine failed", "id", sum.ID, "error", err)
		jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}

	sum.Summary = refined
	if err := s.store.Put(sum); err != nil {
		s.log.Error("persist refined summary failed", "id", sum.ID, "error", err)
		jsonError(w, "failed to persist refined summary: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"id": sum.ID, "summary": refined})
}

func (s *Server) handleAskSummary(w http.ResponseWriter, r *http.Request) {
	sum := s.loadSummaryForRefine(w, r)
	if sum == nil {
		return
	}

	var body struct {
		Question string            `json:"question"`
		History  []refine.Exchange `json:"history"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Question == "" {
		jsonError(w, "question field is required", http.StatusBadRequest)
		return
	}

	answer, err := s.refiner.Answer(r.Context(), sum.Summary, body.Question, sum.References, sum.Keywords, body.History)
	if err != nil {
		s.log.Error("ask failed", "id", sum.ID, "error", err)
		jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"id": sum.ID, "answer": answer})
}
