package handlers

import (
	"net/http"

	"github.com/lcalzada-xor/vulnmap/internal/core/ports"
)

// StatsHandler serves the aggregate store totals.
type StatsHandler struct {
	Vulns ports.VulnerabilityRepository
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(vulns ports.VulnerabilityRepository) *StatsHandler {
	return &StatsHandler{Vulns: vulns}
}

// HandleStats returns store totals for the dashboard.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Vulns.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
