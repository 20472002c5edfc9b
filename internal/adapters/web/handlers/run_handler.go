package handlers

import (
	"net/http"
	"strconv"

	"github.com/lcalzada-xor/vulnmap/internal/core/ports"
)

// RunHandler serves the loader run history.
type RunHandler struct {
	Runs ports.RunRepository
}

// NewRunHandler creates a new RunHandler
func NewRunHandler(runs ports.RunRepository) *RunHandler {
	return &RunHandler{Runs: runs}
}

// HandleList returns recent loader runs, newest first.
func (h *RunHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	runs, err := h.Runs.ListRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}
