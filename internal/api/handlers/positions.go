package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/EdgesSeeker/ma-monitor/internal/monitor"
	"github.com/EdgesSeeker/ma-monitor/pkg/logger"
)

// PositionHandler serves the position and engine endpoints
type PositionHandler struct {
	monitor *monitor.Monitor
	logger  *logger.Logger
}

// NewPositionHandler creates a new position handler
func NewPositionHandler(m *monitor.Monitor, log *logger.Logger) *PositionHandler {
	return &PositionHandler{
		monitor: m,
		logger:  log,
	}
}

// Add registers a new position to watch
// POST /api/positions
func (h *PositionHandler) Add(w http.ResponseWriter, r *http.Request) {
	var spec monitor.PositionSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	position, err := h.monitor.AddPosition(r.Context(), spec)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to add position")
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success":  true,
		"position": position,
	})
}

// List returns all watched positions
// GET /api/positions
func (h *PositionHandler) List(w http.ResponseWriter, r *http.Request) {
	positions := h.monitor.Positions()

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"count":     len(positions),
		"positions": positions,
	})
}

// Remove stops watching a position
// DELETE /api/positions/{id}
func (h *PositionHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.monitor.RemovePosition(r.Context(), id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.WithError(err).Error("Failed to remove position")
		respondError(w, http.StatusInternalServerError, "Failed to remove position")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"id":      id,
	})
}

// Status reports the engine state
// GET /api/status
func (h *PositionHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"status":  h.monitor.Status(),
		"jobs":    h.monitor.JobStats(),
	})
}

// Check runs one check pass immediately
// GET|POST /api/check
func (h *PositionHandler) Check(w http.ResponseWriter, r *http.Request) {
	summary := h.monitor.CheckAll(r.Context())

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"summary": summary,
	})
}
