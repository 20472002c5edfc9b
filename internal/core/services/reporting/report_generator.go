package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/lcalzada-xor/vulnmap/internal/core/domain"
	"github.com/lcalzada-xor/vulnmap/internal/core/ports"
)

// topAssetLimit bounds the ranked asset table in the report.
const topAssetLimit = 10

// ReportGenerator assembles the asset risk report from the store.
type ReportGenerator struct {
	assets ports.AssetRepository
	vulns  ports.VulnerabilityRepository
}

// NewReportGenerator creates a generator over the given repositories.
func NewReportGenerator(assets ports.AssetRepository, vulns ports.VulnerabilityRepository) *ReportGenerator {
	return &ReportGenerator{assets: assets, vulns: vulns}
}

// Generate builds the full risk report as of now. generatedBy names the
// requesting user in the report footer.
func (g *ReportGenerator) Generate(ctx context.Context, generatedBy string) (*domain.RiskReport, error) {
	assets, err := g.assets.AllAssets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	byAsset, err := g.vulns.VulnerabilitiesByAsset(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to group findings: %w", err)
	}

	report := &domain.RiskReport{
		GeneratedAt: time.Now().UTC(),
		GeneratedBy: generatedBy,
	}

	report.Stats.TotalAssets = len(assets)
	var scoreSum float64
	seenCVEs := make(map[string]bool)

	for _, assetVulns := range byAsset {
		for _, v := range assetVulns {
			if seenCVEs[v.CVE] {
				continue
			}
			seenCVEs[v.CVE] = true

			report.Stats.TotalVulnerabilities++
			switch v.Severity {
			case domain.SeverityCritical:
				report.Stats.CriticalCount++
			case domain.SeverityHigh:
				report.Stats.HighCount++
			}
			if v.KEVListed() {
				report.Stats.KEVListedCount++
				report.KEVFindings = append(report.KEVFindings, v)
			}
			if v.Exposed {
				report.Stats.ExposedCount++
			}
		}
	}

	for _, asset := range assets {
		scoreSum += asset.PriorityScore
	}
	if len(assets) > 0 {
		report.Stats.AverageScore = scoreSum / float64(len(assets))
	}

	// Rank assets by priority score; worst first.
	sort.Slice(assets, func(i, j int) bool {
		if assets[i].PriorityScore != assets[j].PriorityScore {
			return assets[i].PriorityScore > assets[j].PriorityScore
		}
		return assets[i].ID < assets[j].ID
	})
	limit := topAssetLimit
	if len(assets) < limit {
		limit = len(assets)
	}
	for _, asset := range assets[:limit] {
		report.TopAssets = append(report.TopAssets, domain.AssetRisk{
			Asset:              asset,
			VulnerabilityCount: len(byAsset[asset.ID]),
			WorstSeverity:      worstSeverity(byAsset[asset.ID]),
			RiskLevel:          domain.RiskLevel(asset.PriorityScore),
		})
	}

	// KEV findings sorted by catalog date, newest first.
	sort.Slice(report.KEVFindings, func(i, j int) bool {
		return report.KEVFindings[i].KEVDateAdded > report.KEVFindings[j].KEVDateAdded
	})

	return report, nil
}

func worstSeverity(vulns []domain.Vulnerability) string {
	worst := ""
	var worstWeight float64 = -1
	for _, v := range vulns {
		w, ok := domain.SeverityWeight(v.Severity)
		if !ok {
			continue
		}
		if w > worstWeight {
			worstWeight = w
			worst = v.Severity
		}
	}
	return worst
}
