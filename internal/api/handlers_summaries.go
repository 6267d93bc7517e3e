package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"papersum/internal/store"
)

func (s *Server) handleListSummaries(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		jsonError(w, "summary store unavailable", http.StatusServiceUnavailable)
		return
	}
	sums, err := s.store.List()
	if err != nil {
		jsonError(w, "failed to list summaries: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if sums == nil {
		sums = []store.SavedSummary{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"summaries": sums})
}

func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		jsonError(w, "summary store unavailable", http.StatusServiceUnavailable)
		return
	}
	id := chi.URLParam(r, "id")
	sum, err := s.store.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, "summary not found", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to load summary: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sum)
}

func (s *Server) handleDeleteSummary(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		jsonError(w, "summary store unavailable", http.StatusServiceUnavailable)
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, "summary not found", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to delete summary: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"deleted": id})
}
