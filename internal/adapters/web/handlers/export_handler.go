package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/lcalzada-xor/vulnmap/internal/core/ports"
	"github.com/lcalzada-xor/vulnmap/internal/core/services/export"
)

// ExportHandler serves CSV and JSON downloads of the store.
type ExportHandler struct {
	Assets ports.AssetRepository
	Vulns  ports.VulnerabilityRepository
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(assets ports.AssetRepository, vulns ports.VulnerabilityRepository) *ExportHandler {
	return &ExportHandler{Assets: assets, Vulns: vulns}
}

// HandleExport streams the requested entity set in the requested format.
// Query parameters: type=vulnerabilities|assets (default vulnerabilities),
// format=json|csv (default json).
func (h *ExportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	entity := r.URL.Query().Get("type")
	if entity == "" {
		entity = "vulnerabilities"
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" {
		writeError(w, http.StatusBadRequest, "unsupported format")
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("vulnmap_%s_%s.%s", entity, timestamp, format)

	var err error
	switch entity {
	case "vulnerabilities":
		vulns, loadErr := h.Vulns.AllVulnerabilities(r.Context())
		if loadErr != nil {
			writeError(w, http.StatusInternalServerError, "failed to load vulnerabilities")
			return
		}
		setDownloadHeaders(w, filename, format)
		if format == "csv" {
			err = export.ExportVulnerabilitiesCSV(w, vulns)
		} else {
			err = export.ExportVulnerabilitiesJSON(w, vulns)
		}
	case "assets":
		assets, loadErr := h.Assets.AllAssets(r.Context())
		if loadErr != nil {
			writeError(w, http.StatusInternalServerError, "failed to load assets")
			return
		}
		setDownloadHeaders(w, filename, format)
		if format == "csv" {
			err = export.ExportAssetsCSV(w, assets)
		} else {
			err = export.ExportAssetsJSON(w, assets)
		}
	default:
		writeError(w, http.StatusBadRequest, "unsupported export type")
		return
	}

	if err != nil {
		// Headers are already sent; nothing to do beyond logging upstream.
		return
	}
}

func setDownloadHeaders(w http.ResponseWriter, filename, format string) {
	if format == "csv" {
		w.Header().Set("Content-Type", "text/csv")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}
