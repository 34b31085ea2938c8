package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/explorer"
	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/filter"
	"github.com/XavierBriggs/fortuna/services/player-explorer/pkg/models"
	"github.com/go-chi/chi/v5"
)

// GetPlayers returns the filtered view
// Query params: pinned (bool) puts locked players first
func (h *Handler) GetPlayers(w http.ResponseWriter, r *http.Request) {
	players := h.manager.Filtered()
	if parseBoolParam(r, "pinned", false) {
		players = h.manager.Pinned()
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"players": players,
		"count":   len(players),
		"total":   len(h.manager.Full()),
	})
}

// GetFilters returns the current filter configuration
func (h *Handler) GetFilters(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.manager.Filters())
}

// UpdateFilters merges a partial filter configuration
func (h *Handler) UpdateFilters(w http.ResponseWriter, r *http.Request) {
	var update models.FilterUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondError(w, http.StatusBadRequest, "invalid filter update", err)
		return
	}

	if err := h.manager.UpdateFilters(update); err != nil {
		if errors.Is(err, filter.ErrInvalidCategory) {
			respondError(w, http.StatusBadRequest, "invalid filter update", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to update filters", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"filters": h.manager.Filters(),
		"count":   len(h.manager.Filtered()),
	})
}

// GetSelection returns the locked players in order
func (h *Handler) GetSelection(w http.ResponseWriter, r *http.Request) {
	selected := h.manager.Selected()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"players": selected,
		"count":   len(selected),
	})
}

// GetPersistedSelection returns what the durable slot currently holds
func (h *Handler) GetPersistedSelection(w http.ResponseWriter, r *http.Request) {
	persisted, err := h.manager.Persisted(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "failed to read selection slot", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"players": persisted,
		"count":   len(persisted),
	})
}

// ToggleSelection locks or unlocks a player by name, whether or not it passes the filters
func (h *Handler) ToggleSelection(w http.ResponseWriter, r *http.Request) {
	var req models.ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required", err)
		return
	}

	locked, err := h.manager.ToggleByName(r.Context(), req.Name)
	if errors.Is(err, explorer.ErrPlayerNotFound) {
		respondError(w, http.StatusNotFound, "player not found", nil)
		return
	}

	// The in-memory toggle stands even when persisting it failed
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"name":      req.Name,
		"locked":    locked,
		"persisted": err == nil,
		"selected":  models.Names(h.manager.Selected()),
	})
}

// ClearSelection unlocks every player
func (h *Handler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.ClearSelection(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "selection cleared but not persisted", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetLeagues lists the leagues present in the dataset
func (h *Handler) GetLeagues(w http.ResponseWriter, r *http.Request) {
	leagues := h.manager.Leagues()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"leagues": leagues,
		"count":   len(leagues),
	})
}

// GetDerivedMetric evaluates one metric for one player
// Query params: player (name)
func (h *Handler) GetDerivedMetric(w http.ResponseWriter, r *http.Request) {
	metric := chi.URLParam(r, "metric")
	eval := h.manager.Evaluator()
	if !eval.IsDerived(metric) {
		respondError(w, http.StatusNotFound, "unknown metric "+metric, nil)
		return
	}

	name := r.URL.Query().Get("player")
	p, ok := h.manager.Find(name)
	if !ok {
		respondError(w, http.StatusNotFound, "player not found", nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"metric": metric,
		"player": name,
		"value":  eval.Evaluate(p, metric),
	})
}

// ListDerivedMetrics returns the registered metric names
func (h *Handler) ListDerivedMetrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"metrics": h.manager.Evaluator().Metrics(),
	})
}
