package scoring

import (
	"context"
	"fmt"
	"log"
	"math"
	"strconv"

	"github.com/lcalzada-xor/vulnmap/internal/core/domain"
	"github.com/lcalzada-xor/vulnmap/internal/core/ports"
)

// Scoring weights: 40% average numeric criticality, 40% average mapped
// severity, 20% vulnerability count capped at countCap findings.
const (
	criticalityWeight = 40.0
	severityWeight    = 40.0
	countWeight       = 20.0
	countCap          = 50.0
)

// Scorer recomputes the bounded [0,100] priority score of every asset from
// its attached findings. It overwrites asset scores only; findings are
// never mutated.
type Scorer struct {
	assets ports.AssetRepository
	vulns  ports.VulnerabilityRepository
}

// NewScorer creates a scorer over the given repositories.
func NewScorer(assets ports.AssetRepository, vulns ports.VulnerabilityRepository) *Scorer {
	return &Scorer{assets: assets, vulns: vulns}
}

// ScoreAll recomputes and persists every asset's priority score in a single
// transaction. Assets without findings score 0. Returns the number of
// assets scored.
func (s *Scorer) ScoreAll(ctx context.Context) (int, error) {
	assets, err := s.assets.AllAssets(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list assets: %w", err)
	}
	if len(assets) == 0 {
		return 0, nil
	}

	byAsset, err := s.vulns.VulnerabilitiesByAsset(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to group findings: %w", err)
	}

	scores := make(map[uint]float64, len(assets))
	for _, asset := range assets {
		scores[asset.ID] = Score(byAsset[asset.ID])
	}

	if err := s.assets.UpdateAssetScores(ctx, scores); err != nil {
		return 0, fmt.Errorf("failed to persist scores: %w", err)
	}

	log.Printf("[SCORE] Recalculated priority scores for %d assets", len(scores))
	return len(scores), nil
}

// Score computes the priority score for one asset's findings.
//
// Policy (the severity/criticality blend): the average numeric criticality
// is taken only over findings whose criticality is a plain non-negative
// integer string; non-numeric values are excluded from that average rather
// than counted as zero. The severity average maps Critical/High/Medium/
// Low/Info to 10/7/5/3/1; unmapped labels add nothing to the sum but stay
// in the denominator. The result is clamped to [0,100]: extreme inputs
// saturate, they never overflow.
func Score(vulns []domain.Vulnerability) float64 {
	if len(vulns) == 0 {
		return 0
	}

	var critSum float64
	critCount := 0
	var sevSum float64

	for _, v := range vulns {
		if n, ok := parseCriticality(v.Criticality); ok {
			critSum += n
			critCount++
		}
		if w, ok := domain.SeverityWeight(v.Severity); ok {
			sevSum += w
		}
	}

	var avgCriticality float64
	if critCount > 0 {
		avgCriticality = critSum / float64(critCount)
	}
	avgSeverity := sevSum / float64(len(vulns))
	countFactor := math.Min(float64(len(vulns)), countCap) / countCap

	score := avgCriticality/10*criticalityWeight +
		avgSeverity/10*severityWeight +
		countFactor*countWeight

	return math.Min(100, math.Max(0, score))
}

// parseCriticality accepts only plain non-negative integer strings
// ("0", "5", "42"); signs, decimals and free text are rejected.
func parseCriticality(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
