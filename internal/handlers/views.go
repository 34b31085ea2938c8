package handlers

import (
	"errors"
	"net/http"

	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/derived"
	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/views"
	"github.com/XavierBriggs/fortuna/services/player-explorer/pkg/models"
)

// GetHeatmap returns the sorted, colored table data
// Query params: sort, order, limit, clipped, columns
func (h *Handler) GetHeatmap(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var order derived.Order
	if raw := q.Get("order"); raw != "" {
		parsed, err := derived.ParseOrder(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid order", err)
			return
		}
		order = parsed
	}

	limit := parseIntParam(r, "limit", h.opts.HeatmapLimit)
	if limit > 500 {
		limit = 500
	}

	hm := views.BuildHeatmap(h.manager.Evaluator(), h.manager.Filtered(), h.manager.Selected(), views.HeatmapOptions{
		Columns:    parseListParam(r, "columns"),
		SortColumn: q.Get("sort"),
		Order:      order,
		Limit:      limit,
		Clipped:    parseBoolParam(r, "clipped", h.opts.ClippedDomains),
	})

	respondJSON(w, http.StatusOK, hm)
}

// GetScatter returns plotted points and axis domains
// Query params: x, y, minX, minY, search
func (h *Handler) GetScatter(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	sc := views.BuildScatter(h.manager.Evaluator(), h.manager.Filtered(), h.manager.Selected(), views.ScatterOptions{
		X:      q.Get("x"),
		Y:      q.Get("y"),
		MinX:   parseFloatParam(r, "minX"),
		MinY:   parseFloatParam(r, "minY"),
		Search: q.Get("search"),
	})

	respondJSON(w, http.StatusOK, sc)
}

// GetRadar compares players on one attribute group
// Query params: group, players (comma-separated names; defaults to the selection)
func (h *Handler) GetRadar(w http.ResponseWriter, r *http.Request) {
	players := h.manager.Selected()
	if names := parseListParam(r, "players"); len(names) > 0 {
		players = make([]models.Player, 0, len(names))
		for _, name := range names {
			p, ok := h.manager.Find(name)
			if !ok {
				respondError(w, http.StatusNotFound, "player not found: "+name, nil)
				return
			}
			players = append(players, p)
		}
	}

	group := r.URL.Query().Get("group")
	if group == "" {
		group = "striker"
	}

	radar, err := views.BuildRadar(h.manager.Evaluator(), players, group, h.opts.RadarGroups)
	if err != nil {
		if errors.Is(err, views.ErrTooManyPlayers) || errors.Is(err, views.ErrUnknownGroup) {
			respondError(w, http.StatusBadRequest, "cannot build radar", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "cannot build radar", err)
		return
	}

	respondJSON(w, http.StatusOK, radar)
}
