package reporting

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/lcalzada-xor/vulnmap/internal/core/domain"
)

// PDFExporter exports risk reports to PDF format
type PDFExporter struct{}

// NewPDFExporter creates a new PDF exporter instance
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ExportRiskReport generates a PDF from the asset risk report
func (e *PDFExporter) ExportRiskReport(report *domain.RiskReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	e.addHeader(pdf, report)
	e.addStatistics(pdf, report)
	e.addTopAssets(pdf, report)
	e.addKEVFindings(pdf, report)
	e.addFooter(pdf, report)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return buf.Bytes(), nil
}

// addHeader adds the report header
func (e *PDFExporter) addHeader(pdf *gofpdf.Fpdf, report *domain.RiskReport) {
	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(0, 51, 102) // Dark blue
	pdf.CellFormat(0, 15, "Asset Risk Report", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(120, 120, 120)
	dateStr := fmt.Sprintf("Generated: %s", report.GeneratedAt.Format("2006-01-02 15:04"))
	pdf.CellFormat(0, 6, dateStr, "", 1, "L", false, 0, "")

	pdf.Ln(8)
}

// addStatistics adds the summary statistics grid
func (e *PDFExporter) addStatistics(pdf *gofpdf.Fpdf, report *domain.RiskReport) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Overview", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	stats := []struct {
		label string
		value string
		color []int
	}{
		{"Total Assets", fmt.Sprintf("%d", report.Stats.TotalAssets), []int{0, 102, 204}},
		{"Total Vulnerabilities", fmt.Sprintf("%d", report.Stats.TotalVulnerabilities), []int{0, 102, 204}},
		{"Critical", fmt.Sprintf("%d", report.Stats.CriticalCount), []int{220, 53, 69}},
		{"High", fmt.Sprintf("%d", report.Stats.HighCount), []int{255, 149, 0}},
		{"Known Exploited", fmt.Sprintf("%d", report.Stats.KEVListedCount), []int{220, 53, 69}},
		{"Exposed", fmt.Sprintf("%d", report.Stats.ExposedCount), []int{255, 149, 0}},
		{"Average Score", fmt.Sprintf("%.1f/100", report.Stats.AverageScore), []int{0, 102, 204}},
	}

	// Display in 2 columns
	colWidth := 85.0
	for i, stat := range stats {
		x := 20.0
		if i%2 == 1 {
			x = 105.0
		}

		pdf.SetXY(x, pdf.GetY())

		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(50, 7, stat.label+":", "", 0, "L", false, 0, "")

		pdf.SetFont("Arial", "B", 11)
		pdf.SetTextColor(stat.color[0], stat.color[1], stat.color[2])
		pdf.CellFormat(colWidth-50, 7, stat.value, "", 0, "R", false, 0, "")

		if i%2 == 1 {
			pdf.Ln(7)
		}
	}

	pdf.Ln(12)
}

// addTopAssets adds the ranked asset table
func (e *PDFExporter) addTopAssets(pdf *gofpdf.Fpdf, report *domain.RiskReport) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Highest Risk Assets", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	if len(report.TopAssets) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 7, "No assets on record", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	// Table header
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 10)
	pdf.SetTextColor(60, 60, 60)

	pdf.CellFormat(60, 8, "Asset", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 8, "Version", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 8, "Score", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 8, "Findings", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 8, "Risk", "1", 1, "C", true, 0, "")

	// Table rows
	pdf.SetFont("Arial", "", 9)
	for _, row := range report.TopAssets {
		name := row.Asset.Name
		if len(name) > 34 {
			name = name[:31] + "..."
		}
		version := row.Asset.Version
		if len(version) > 16 {
			version = version[:13] + "..."
		}

		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(60, 7, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, version, "1", 0, "L", false, 0, "")

		r, g, b := e.getScoreColor(row.Asset.PriorityScore)
		pdf.SetTextColor(r, g, b)
		pdf.CellFormat(20, 7, fmt.Sprintf("%.1f", row.Asset.PriorityScore), "1", 0, "C", false, 0, "")

		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(25, 7, fmt.Sprintf("%d", row.VulnerabilityCount), "1", 0, "C", false, 0, "")

		pdf.SetTextColor(r, g, b)
		pdf.CellFormat(35, 7, row.RiskLevel, "1", 1, "C", false, 0, "")
	}

	pdf.Ln(8)
}

// addKEVFindings lists findings present in the KEV catalog
func (e *PDFExporter) addKEVFindings(pdf *gofpdf.Fpdf, report *domain.RiskReport) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Known Exploited Vulnerabilities", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	if len(report.KEVFindings) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 7, "No findings listed in the KEV catalog", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	pdf.SetFont("Arial", "", 9)
	for i, v := range report.KEVFindings {
		if i >= 15 { // Limit the list; the full set lives in exports
			pdf.SetFont("Arial", "I", 9)
			pdf.SetTextColor(100, 100, 100)
			pdf.CellFormat(0, 6, fmt.Sprintf("... and %d more", len(report.KEVFindings)-i), "", 1, "L", false, 0, "")
			break
		}

		if pdf.GetY() > 260 {
			pdf.AddPage()
		}

		pdf.SetFont("Arial", "B", 9)
		pdf.SetTextColor(220, 53, 69)
		pdf.CellFormat(35, 6, v.CVE, "", 0, "L", false, 0, "")

		name := v.KEVVulnerabilityName
		if len(name) > 70 {
			name = name[:67] + "..."
		}
		pdf.SetFont("Arial", "", 9)
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(0, 6, name, "", 1, "L", false, 0, "")
	}

	pdf.Ln(5)
}

// getScoreColor returns RGB color based on priority score
func (e *PDFExporter) getScoreColor(score float64) (r, g, b int) {
	switch {
	case score >= 80:
		return 220, 53, 69 // Red (Critical)
	case score >= 60:
		return 255, 149, 0 // Orange (High)
	case score >= 40:
		return 255, 204, 0 // Yellow (Medium)
	default:
		return 52, 199, 89 // Green (Low)
	}
}

// addFooter adds the report footer
func (e *PDFExporter) addFooter(pdf *gofpdf.Fpdf, report *domain.RiskReport) {
	pdf.SetY(-20)

	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(3)

	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	footerText := fmt.Sprintf("Generated by vulnmap | Requested by: %s", report.GeneratedBy)
	pdf.CellFormat(0, 5, footerText, "", 1, "C", false, 0, "")
}
