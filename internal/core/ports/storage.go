package ports

import (
	"context"

	"github.com/lcalzada-xor/vulnmap/internal/core/domain"
)

// AssetRepository defines the persistence behavior for assets.
type AssetRepository interface {
	// FindAssetByIdentity returns the asset with the given identity key,
	// or nil (without error) when none exists.
	FindAssetByIdentity(ctx context.Context, name, version string) (*domain.Asset, error)

	// CreateAsset persists a new asset and assigns its ID before returning.
	CreateAsset(ctx context.Context, asset *domain.Asset) error

	// SaveAsset updates an existing asset.
	SaveAsset(ctx context.Context, asset *domain.Asset) error

	// GetAssetByID retrieves an asset by its ID, or nil when absent.
	GetAssetByID(ctx context.Context, id uint) (*domain.Asset, error)

	// ListAssetsByPriority returns one page of assets ordered by priority
	// score descending.
	ListAssetsByPriority(ctx context.Context, page domain.PageRequest) ([]domain.Asset, domain.PageMeta, error)

	// FindDuplicateAssetGroups returns every set of assets sharing an
	// identity key, ordered by ID within each group. Groups of one are
	// not returned.
	FindDuplicateAssetGroups(ctx context.Context) ([][]domain.Asset, error)

	// MergeAssetGroup reassigns all vulnerabilities of the loser assets to
	// the survivor and deletes the losers, atomically.
	MergeAssetGroup(ctx context.Context, survivorID uint, loserIDs []uint) error

	// UpdateAssetScores overwrites priority scores in a single transaction.
	UpdateAssetScores(ctx context.Context, scores map[uint]float64) error

	// AllAssets returns every asset.
	AllAssets(ctx context.Context) ([]domain.Asset, error)
}

// VulnerabilityRepository defines the persistence behavior for findings.
type VulnerabilityRepository interface {
	// UpsertVulnerabilities inserts or updates findings by CVE in one
	// transaction. Re-upserting an existing CVE replaces its fields; it
	// never creates a duplicate row.
	UpsertVulnerabilities(ctx context.Context, vulns []domain.Vulnerability) error

	// GetVulnerabilityByCVE retrieves one finding, or nil when absent.
	GetVulnerabilityByCVE(ctx context.Context, cve string) (*domain.Vulnerability, error)

	// ListVulnerabilities returns one page of findings.
	ListVulnerabilities(ctx context.Context, page domain.PageRequest) ([]domain.Vulnerability, domain.PageMeta, error)

	// ListAssetVulnerabilities returns one page of an asset's findings
	// ordered by CVSS base score descending.
	ListAssetVulnerabilities(ctx context.Context, assetID uint, page domain.PageRequest) ([]domain.Vulnerability, domain.PageMeta, error)

	// VulnerabilitiesByAsset returns all asset-attached findings keyed by
	// asset ID.
	VulnerabilitiesByAsset(ctx context.Context) (map[uint][]domain.Vulnerability, error)

	// AllVulnerabilities returns every finding, used by exports.
	AllVulnerabilities(ctx context.Context) ([]domain.Vulnerability, error)

	// MissingEnrichment returns the CVEs of findings lacking an EPSS score
	// or a description, candidates for the enrichment pass.
	MissingEnrichment(ctx context.Context) ([]string, error)

	// Stats returns aggregate store totals.
	Stats(ctx context.Context) (domain.StoreStats, error)
}

// RunRepository persists loader run summaries.
type RunRepository interface {
	SaveRun(ctx context.Context, run domain.IngestRun) error
	ListRuns(ctx context.Context, limit int) ([]domain.IngestRun, error)
}
