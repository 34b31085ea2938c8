package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/dataset"
	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/explorer"
	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/hub"
	"github.com/XavierBriggs/fortuna/services/player-explorer/pkg/models"
)

// Options carries the defaults the handlers fall back to
type Options struct {
	Source         string
	Transforms     dataset.Transforms
	HeatmapLimit   int
	ClippedDomains bool
	RadarGroups    map[string][]string
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	manager *explorer.Manager
	hub     *hub.Hub
	ctx     context.Context
	opts    Options
}

// NewHandler creates a new handler. ctx bounds the lifetime of WebSocket pumps.
func NewHandler(ctx context.Context, m *explorer.Manager, h *hub.Hub, opts Options) *Handler {
	return &Handler{
		manager: m,
		hub:     h,
		ctx:     ctx,
		opts:    opts,
	}
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "healthy",
		"timestamp":      time.Now().UTC(),
		"service":        "player-explorer",
		"players":        len(h.manager.Full()),
		"active_clients": h.hub.GetClientCount(),
	})
}

// HandleMetrics returns explorer and hub counters
func (h *Handler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"explorer": h.manager.Stats(),
		"hub":      h.hub.GetMetrics(),
	})
}

// ReloadDataset fetches the configured source again. A failed reload keeps
// serving the previous dataset.
func (h *Handler) ReloadDataset(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	if err := h.manager.Load(ctx, h.opts.Source, h.opts.Transforms); err != nil {
		respondError(w, http.StatusBadGateway, "failed to reload dataset", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"source":   h.opts.Source,
		"players":  len(h.manager.Full()),
		"filtered": len(h.manager.Filtered()),
	})
}

func parseIntParam(r *http.Request, param string, defaultValue int) int {
	valueStr := r.URL.Query().Get(param)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func parseBoolParam(r *http.Request, param string, defaultValue bool) bool {
	value, err := strconv.ParseBool(r.URL.Query().Get(param))
	if err != nil {
		return defaultValue
	}
	return value
}

// parseFloatParam returns nil when the parameter is absent or not a number
func parseFloatParam(r *http.Request, param string) *float64 {
	value, err := strconv.ParseFloat(r.URL.Query().Get(param), 64)
	if err != nil {
		return nil
	}
	return &value
}

func parseListParam(r *http.Request, param string) []string {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		fmt.Printf("error encoding response: %v\n", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	errResp := models.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	}

	if err != nil {
		fmt.Printf("error: %s - %v\n", message, err)
		errResp.Message = fmt.Sprintf("%s: %v", message, err)
	}

	if err := json.NewEncoder(w).Encode(errResp); err != nil {
		fmt.Printf("error encoding error response: %v\n", err)
	}
}
