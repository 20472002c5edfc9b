package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/lcalzada-xor/vulnmap/internal/adapters/reporting"
	"github.com/lcalzada-xor/vulnmap/internal/adapters/web/middleware"
	reportingService "github.com/lcalzada-xor/vulnmap/internal/core/services/reporting"
)

// ReportHandler handles risk report generation
type ReportHandler struct {
	Generator   *reportingService.ReportGenerator
	PDFExporter *reporting.PDFExporter
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(generator *reportingService.ReportGenerator, exporter *reporting.PDFExporter) *ReportHandler {
	return &ReportHandler{Generator: generator, PDFExporter: exporter}
}

// HandleDownload builds the risk report and serves it as a PDF download.
func (h *ReportHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	username := "Unknown"
	if user, ok := middleware.UserFromContext(r.Context()); ok {
		username = user.Username
	}

	report, err := h.Generator.Generate(r.Context(), username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}

	pdfBytes, err := h.PDFExporter.ExportRiskReport(report)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to render report")
		return
	}

	filename := fmt.Sprintf("vulnmap_report_%s.pdf", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(pdfBytes)
}
