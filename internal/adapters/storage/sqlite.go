package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/lcalzada-xor/vulnmap/internal/core/domain"
	"github.com/lcalzada-xor/vulnmap/internal/core/ports"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// Interface compliance
var (
	_ ports.AssetRepository         = (*SQLiteAdapter)(nil)
	_ ports.VulnerabilityRepository = (*SQLiteAdapter)(nil)
)

// SQLiteAdapter implements the persistence ports using GORM and SQLite.
type SQLiteAdapter struct {
	db *gorm.DB
}

// AssetModel is the GORM model for assets.
type AssetModel struct {
	ID            uint `gorm:"primaryKey"`
	Name          string
	Version       string
	Product       string
	FilePath      string
	Engagement    string
	PriorityScore float64
}

// VulnerabilityModel is the GORM model for findings. The CVE natural key is
// the primary key, which is what makes upsert-by-key idempotent.
type VulnerabilityModel struct {
	CVE          string `gorm:"primaryKey"`
	Published    string
	LastModified string
	Description  string

	Severity    string
	Criticality string
	EPSS        *float64

	CVSSBaseScore          *float64
	CVSSAttackVector       string
	CVSSAttackComplexity   string
	CVSSPrivilegesRequired string

	KEVVulnerabilityName  string
	KEVDateAdded          string
	KEVRequiredAction     string
	KEVKnownRansomwareUse string

	Exposed bool
	AssetID *uint `gorm:"index"`
}

// NewSQLiteAdapter initializes the database and migrates schema.
func NewSQLiteAdapter(path string) (*SQLiteAdapter, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	db.Exec("PRAGMA journal_mode=WAL")

	// Trace queries through the global tracer provider
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, fmt.Errorf("failed to install tracing plugin: %w", err)
	}

	// Auto Migrate
	if err := db.AutoMigrate(&AssetModel{}, &VulnerabilityModel{}, &domain.User{}, &domain.IngestRun{}); err != nil {
		return nil, err
	}

	// Create Indices for Performance
	db.Exec("CREATE INDEX IF NOT EXISTS idx_assets_identity ON asset_models(name, version)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_assets_priority ON asset_models(priority_score)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_vulns_cvss ON vulnerability_models(cvss_base_score)")

	return &SQLiteAdapter{db: db}, nil
}

// FindAssetByIdentity looks up an asset by its (name, version) identity key.
// A missing asset is not an error: it returns nil, nil.
func (a *SQLiteAdapter) FindAssetByIdentity(ctx context.Context, name, version string) (*domain.Asset, error) {
	var model AssetModel
	err := a.db.WithContext(ctx).Where("name = ? AND version = ?", name, version).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	asset := assetToDomain(model)
	return &asset, nil
}

// CreateAsset persists a new asset. The assigned ID is written back to the
// domain object before returning, so callers can reference it immediately.
func (a *SQLiteAdapter) CreateAsset(ctx context.Context, asset *domain.Asset) error {
	model := assetToModel(*asset)
	if err := a.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	asset.ID = model.ID
	return nil
}

// SaveAsset updates an existing asset.
func (a *SQLiteAdapter) SaveAsset(ctx context.Context, asset *domain.Asset) error {
	model := assetToModel(*asset)
	return a.db.WithContext(ctx).Save(&model).Error
}

// GetAssetByID retrieves an asset, or nil when absent.
func (a *SQLiteAdapter) GetAssetByID(ctx context.Context, id uint) (*domain.Asset, error) {
	var model AssetModel
	err := a.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	asset := assetToDomain(model)
	return &asset, nil
}

// ListAssetsByPriority returns one page of assets, highest priority first.
func (a *SQLiteAdapter) ListAssetsByPriority(ctx context.Context, page domain.PageRequest) ([]domain.Asset, domain.PageMeta, error) {
	var total int64
	if err := a.db.WithContext(ctx).Model(&AssetModel{}).Count(&total).Error; err != nil {
		return nil, domain.PageMeta{}, err
	}

	var models []AssetModel
	err := a.db.WithContext(ctx).
		Order("priority_score DESC, id ASC").
		Limit(page.PerPage).
		Offset(page.Offset()).
		Find(&models).Error
	if err != nil {
		return nil, domain.PageMeta{}, err
	}

	assets := make([]domain.Asset, len(models))
	for i, m := range models {
		assets[i] = assetToDomain(m)
	}
	return assets, domain.NewPageMeta(page, total), nil
}

// FindDuplicateAssetGroups returns every set of assets sharing an identity key,
// each group ordered by ascending ID.
func (a *SQLiteAdapter) FindDuplicateAssetGroups(ctx context.Context) ([][]domain.Asset, error) {
	var keys []struct {
		Name    string
		Version string
	}
	err := a.db.WithContext(ctx).
		Model(&AssetModel{}).
		Select("name, version").
		Group("name, version").
		Having("COUNT(id) > 1").
		Scan(&keys).Error
	if err != nil {
		return nil, err
	}

	groups := make([][]domain.Asset, 0, len(keys))
	for _, k := range keys {
		var models []AssetModel
		err := a.db.WithContext(ctx).
			Where("name = ? AND version = ?", k.Name, k.Version).
			Order("id ASC").
			Find(&models).Error
		if err != nil {
			return nil, err
		}
		group := make([]domain.Asset, len(models))
		for i, m := range models {
			group[i] = assetToDomain(m)
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// MergeAssetGroup reassigns the losers' vulnerabilities to the survivor and
// deletes the losers in one transaction. The reassignment commits with the
// deletion, never after it, so no finding dangles.
func (a *SQLiteAdapter) MergeAssetGroup(ctx context.Context, survivorID uint, loserIDs []uint) error {
	if len(loserIDs) == 0 {
		return nil
	}
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&VulnerabilityModel{}).
			Where("asset_id IN ?", loserIDs).
			Update("asset_id", survivorID).Error
		if err != nil {
			return err
		}
		return tx.Where("id IN ?", loserIDs).Delete(&AssetModel{}).Error
	})
}

// UpdateAssetScores overwrites priority scores in a single transaction.
func (a *SQLiteAdapter) UpdateAssetScores(ctx context.Context, scores map[uint]float64) error {
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, score := range scores {
			err := tx.Model(&AssetModel{}).
				Where("id = ?", id).
				Update("priority_score", score).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// AllAssets returns every asset.
func (a *SQLiteAdapter) AllAssets(ctx context.Context) ([]domain.Asset, error) {
	var models []AssetModel
	if err := a.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, err
	}
	assets := make([]domain.Asset, len(models))
	for i, m := range models {
		assets[i] = assetToDomain(m)
	}
	return assets, nil
}

// UpsertVulnerabilities inserts or updates findings by CVE in one transaction.
func (a *SQLiteAdapter) UpsertVulnerabilities(ctx context.Context, vulns []domain.Vulnerability) error {
	if len(vulns) == 0 {
		return nil
	}

	models := make([]VulnerabilityModel, len(vulns))
	for i, v := range vulns {
		models[i] = vulnToModel(v)
	}

	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			UpdateAll: true,
		}).CreateInBatches(models, 100).Error
	})
}

// GetVulnerabilityByCVE retrieves one finding, or nil when absent.
func (a *SQLiteAdapter) GetVulnerabilityByCVE(ctx context.Context, cve string) (*domain.Vulnerability, error) {
	var model VulnerabilityModel
	err := a.db.WithContext(ctx).First(&model, "cve = ?", cve).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	vuln := vulnToDomain(model)
	return &vuln, nil
}

// ListVulnerabilities returns one page of findings ordered by CVE.
func (a *SQLiteAdapter) ListVulnerabilities(ctx context.Context, page domain.PageRequest) ([]domain.Vulnerability, domain.PageMeta, error) {
	var total int64
	if err := a.db.WithContext(ctx).Model(&VulnerabilityModel{}).Count(&total).Error; err != nil {
		return nil, domain.PageMeta{}, err
	}

	var models []VulnerabilityModel
	err := a.db.WithContext(ctx).
		Order("cve ASC").
		Limit(page.PerPage).
		Offset(page.Offset()).
		Find(&models).Error
	if err != nil {
		return nil, domain.PageMeta{}, err
	}
	return vulnsToDomain(models), domain.NewPageMeta(page, total), nil
}

// ListAssetVulnerabilities returns one page of an asset's findings, worst CVSS first.
// SQLite sorts NULL last in descending order, so unscored findings trail.
func (a *SQLiteAdapter) ListAssetVulnerabilities(ctx context.Context, assetID uint, page domain.PageRequest) ([]domain.Vulnerability, domain.PageMeta, error) {
	var total int64
	err := a.db.WithContext(ctx).
		Model(&VulnerabilityModel{}).
		Where("asset_id = ?", assetID).
		Count(&total).Error
	if err != nil {
		return nil, domain.PageMeta{}, err
	}

	var models []VulnerabilityModel
	err = a.db.WithContext(ctx).
		Where("asset_id = ?", assetID).
		Order("cvss_base_score DESC").
		Limit(page.PerPage).
		Offset(page.Offset()).
		Find(&models).Error
	if err != nil {
		return nil, domain.PageMeta{}, err
	}
	return vulnsToDomain(models), domain.NewPageMeta(page, total), nil
}

// VulnerabilitiesByAsset returns all asset-attached findings keyed by asset ID.
func (a *SQLiteAdapter) VulnerabilitiesByAsset(ctx context.Context) (map[uint][]domain.Vulnerability, error) {
	var models []VulnerabilityModel
	err := a.db.WithContext(ctx).Where("asset_id IS NOT NULL").Find(&models).Error
	if err != nil {
		return nil, err
	}

	grouped := make(map[uint][]domain.Vulnerability)
	for _, m := range models {
		if m.AssetID == nil {
			continue
		}
		grouped[*m.AssetID] = append(grouped[*m.AssetID], vulnToDomain(m))
	}
	return grouped, nil
}

// AllVulnerabilities returns every finding ordered by CVE.
func (a *SQLiteAdapter) AllVulnerabilities(ctx context.Context) ([]domain.Vulnerability, error) {
	var models []VulnerabilityModel
	if err := a.db.WithContext(ctx).Order("cve ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return vulnsToDomain(models), nil
}

// MissingEnrichment returns CVEs of findings still lacking external signals.
func (a *SQLiteAdapter) MissingEnrichment(ctx context.Context) ([]string, error) {
	var cves []string
	err := a.db.WithContext(ctx).
		Model(&VulnerabilityModel{}).
		Where("epss IS NULL OR description = ''").
		Order("cve ASC").
		Pluck("cve", &cves).Error
	return cves, err
}

// Stats returns aggregate store totals for the dashboard.
func (a *SQLiteAdapter) Stats(ctx context.Context) (domain.StoreStats, error) {
	var stats domain.StoreStats
	db := a.db.WithContext(ctx)

	if err := db.Model(&AssetModel{}).Count(&stats.Assets).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&VulnerabilityModel{}).Count(&stats.Vulnerabilities).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&VulnerabilityModel{}).Where("kev_vulnerability_name <> ''").Count(&stats.KEVListed).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&VulnerabilityModel{}).Where("exposed = ?", true).Count(&stats.Exposed).Error; err != nil {
		return stats, err
	}
	return stats, nil
}

// Close closes the underlying database connection.
func (a *SQLiteAdapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
