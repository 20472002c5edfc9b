package dedupe

import (
	"context"
	"fmt"
	"log"

	"github.com/lcalzada-xor/vulnmap/internal/core/ports"
	"github.com/lcalzada-xor/vulnmap/internal/telemetry"
)

// Engine merges asset rows that resolve to the same logical identity.
// Duplicates can slip in under partial or interrupted loads; the engine is
// the cleanup pass that restores the one-asset-per-identity invariant.
type Engine struct {
	assets ports.AssetRepository
}

// NewEngine creates a merge engine over the asset store.
func NewEngine(assets ports.AssetRepository) *Engine {
	return &Engine{assets: assets}
}

// MergeDuplicates collapses every duplicate identity group onto its
// earliest-created member. All vulnerabilities of the losing rows are
// reassigned to the survivor before any row is deleted, so no finding is
// ever left referencing a missing asset. Safe to run repeatedly; returns
// the number of assets removed.
func (e *Engine) MergeDuplicates(ctx context.Context) (int, error) {
	groups, err := e.assets.FindDuplicateAssetGroups(ctx)
	if err != nil {
		return 0, fmt.Errorf("duplicate scan failed: %w", err)
	}

	if len(groups) == 0 {
		log.Println("[MERGE] No duplicate assets found")
		return 0, nil
	}

	log.Printf("[MERGE] Found %d duplicate groups", len(groups))

	merged := 0
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}

		// Groups arrive ordered by ID; the survivor is the
		// earliest-assigned row.
		survivor := group[0]
		loserIDs := make([]uint, 0, len(group)-1)
		for _, loser := range group[1:] {
			loserIDs = append(loserIDs, loser.ID)
		}

		if err := e.assets.MergeAssetGroup(ctx, survivor.ID, loserIDs); err != nil {
			return merged, fmt.Errorf("merge of %q failed: %w", survivor.Name, err)
		}

		merged += len(loserIDs)
		telemetry.AssetsMerged.Add(float64(len(loserIDs)))
		log.Printf("[MERGE] Kept asset %d for %q, merged %d duplicates", survivor.ID, survivor.Name, len(loserIDs))
	}

	return merged, nil
}
