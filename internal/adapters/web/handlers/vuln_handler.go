package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lcalzada-xor/vulnmap/internal/core/ports"
)

// VulnerabilityHandler serves the findings read API.
type VulnerabilityHandler struct {
	Vulns ports.VulnerabilityRepository
}

// NewVulnerabilityHandler creates a new VulnerabilityHandler
func NewVulnerabilityHandler(vulns ports.VulnerabilityRepository) *VulnerabilityHandler {
	return &VulnerabilityHandler{Vulns: vulns}
}

// HandleList returns one page of findings.
func (h *VulnerabilityHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)

	vulns, meta, err := h.Vulns.ListVulnerabilities(r.Context(), page)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list vulnerabilities")
		return
	}

	writeJSON(w, http.StatusOK, pagedResponse{Data: vulns, Meta: meta})
}

// HandleGet returns one finding by CVE, or 404 when unknown.
func (h *VulnerabilityHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	cve := mux.Vars(r)["cve"]

	vuln, err := h.Vulns.GetVulnerabilityByCVE(r.Context(), cve)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load vulnerability")
		return
	}
	if vuln == nil {
		writeError(w, http.StatusNotFound, "vulnerability not found")
		return
	}

	writeJSON(w, http.StatusOK, vuln)
}
