package ingest

import (
	"context"
	"fmt"

	"github.com/lcalzada-xor/vulnmap/internal/core/domain"
	"github.com/lcalzada-xor/vulnmap/internal/core/ports"
	"github.com/lcalzada-xor/vulnmap/internal/telemetry"
)

type identity struct {
	name    string
	version string
}

// Resolver finds or creates the canonical Asset for a finding's identity
// key. A Resolver is scoped to a single load run: its cache mirrors the
// store for the lifetime of that run and must not be shared across runs.
type Resolver struct {
	repo  ports.AssetRepository
	cache map[identity]*domain.Asset
}

// NewResolver creates a resolver with an empty per-run cache.
func NewResolver(repo ports.AssetRepository) *Resolver {
	return &Resolver{
		repo:  repo,
		cache: make(map[identity]*domain.Asset),
	}
}

// Resolve returns the canonical Asset for the key, creating it on first
// sight. Two calls with the same identity within one run return the same
// asset ID. A zero key resolves to nil: the finding stays asset-less.
func (r *Resolver) Resolve(ctx context.Context, key domain.AssetKey) (*domain.Asset, error) {
	if key.IsZero() {
		return nil, nil
	}

	id := identity{name: key.Name, version: key.Version}
	if asset, ok := r.cache[id]; ok {
		return asset, nil
	}

	asset, err := r.repo.FindAssetByIdentity(ctx, key.Name, key.Version)
	if err != nil {
		return nil, fmt.Errorf("asset lookup failed: %w", err)
	}

	product := domain.DeriveProduct(key.Name)

	if asset == nil {
		asset = &domain.Asset{
			Name:       key.Name,
			Version:    key.Version,
			Product:    product,
			FilePath:   key.FilePath,
			Engagement: key.Engagement,
		}
		// The ID must be assigned here so records later in the same
		// batch can reference it before the batch commits.
		if err := r.repo.CreateAsset(ctx, asset); err != nil {
			return nil, fmt.Errorf("asset create failed: %w", err)
		}
		telemetry.AssetsCreated.Inc()
	} else if asset.Product != product {
		// Self-healing: correct a stale display name left by an
		// earlier bad write.
		asset.Product = product
		if err := r.repo.SaveAsset(ctx, asset); err != nil {
			return nil, fmt.Errorf("asset product fixup failed: %w", err)
		}
	}

	r.cache[id] = asset
	return asset, nil
}
