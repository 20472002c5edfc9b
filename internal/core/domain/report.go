package domain

import "time"

// RiskReport aggregates all data needed for the asset risk report.
type RiskReport struct {
	GeneratedAt time.Time
	GeneratedBy string // Username
	Stats       ReportStats
	TopAssets   []AssetRisk
	KEVFindings []Vulnerability
}

// ReportStats holds summary statistics for the report header.
type ReportStats struct {
	TotalAssets          int
	TotalVulnerabilities int
	CriticalCount        int
	HighCount            int
	KEVListedCount       int
	ExposedCount         int
	AverageScore         float64
}

// AssetRisk is one row of the ranked asset table.
type AssetRisk struct {
	Asset              Asset
	VulnerabilityCount int
	WorstSeverity      string
	RiskLevel          string
}

// RiskLevel converts a priority score to a human-readable level.
func RiskLevel(score float64) string {
	switch {
	case score >= 80:
		return "Critical"
	case score >= 60:
		return "High"
	case score >= 40:
		return "Medium"
	default:
		return "Low"
	}
}
