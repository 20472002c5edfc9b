package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/vulnmap/internal/core/domain"
)

func sampleReport() *domain.RiskReport {
	return &domain.RiskReport{
		GeneratedAt: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		GeneratedBy: "analyst",
		Stats: domain.ReportStats{
			TotalAssets:          2,
			TotalVulnerabilities: 5,
			CriticalCount:        1,
			HighCount:            2,
			KEVListedCount:       1,
			ExposedCount:         1,
			AverageScore:         48.5,
		},
		TopAssets: []domain.AssetRisk{
			{
				Asset:              domain.Asset{ID: 1, Name: "widget", Version: "1.0", Product: "Widget", PriorityScore: 85},
				VulnerabilityCount: 3,
				WorstSeverity:      domain.SeverityCritical,
				RiskLevel:          "Critical",
			},
			{
				Asset:              domain.Asset{ID: 2, Name: "gadget", Product: "Gadget", PriorityScore: 12},
				VulnerabilityCount: 2,
				WorstSeverity:      domain.SeverityLow,
				RiskLevel:          "Low",
			},
		},
		KEVFindings: []domain.Vulnerability{
			{CVE: "CVE-2024-0001", KEVVulnerabilityName: "Widget RCE", KEVDateAdded: "2024-01-01"},
		},
	}
}

func TestExportRiskReport(t *testing.T) {
	data, err := NewPDFExporter().ExportRiskReport(sampleReport())
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestExportRiskReportEmpty(t *testing.T) {
	report := &domain.RiskReport{
		GeneratedAt: time.Now().UTC(),
		GeneratedBy: "admin",
	}
	data, err := NewPDFExporter().ExportRiskReport(report)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
