package reporting

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/vulnmap/internal/adapters/storage"
	"github.com/lcalzada-xor/vulnmap/internal/core/domain"
)

func newTestStore(t *testing.T) *storage.SQLiteAdapter {
	t.Helper()
	store, err := storage.NewSQLiteAdapter(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func createAsset(t *testing.T, store *storage.SQLiteAdapter, name string, score float64) domain.Asset {
	t.Helper()
	asset := domain.Asset{Name: name, Version: "1.0", Product: name, PriorityScore: score}
	require.NoError(t, store.CreateAsset(context.Background(), &asset))
	return asset
}

func TestGenerateReport(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	hot := createAsset(t, store, "hot", 85)
	warm := createAsset(t, store, "warm", 55)
	createAsset(t, store, "cold", 5)

	require.NoError(t, store.UpsertVulnerabilities(ctx, []domain.Vulnerability{
		{CVE: "CVE-2024-0001", Severity: domain.SeverityCritical, AssetID: &hot.ID,
			KEVVulnerabilityName: "Hot RCE", KEVDateAdded: "2024-02-01", Exposed: true},
		{CVE: "CVE-2024-0002", Severity: domain.SeverityHigh, AssetID: &hot.ID},
		{CVE: "CVE-2024-0003", Severity: domain.SeverityMedium, AssetID: &warm.ID,
			KEVVulnerabilityName: "Warm bypass", KEVDateAdded: "2024-03-15", Exposed: true},
		{CVE: "CVE-2024-0004", Severity: domain.SeverityLow, AssetID: &warm.ID},
	}))

	report, err := NewReportGenerator(store, store).Generate(ctx, "analyst")
	require.NoError(t, err)

	assert.Equal(t, "analyst", report.GeneratedBy)
	assert.False(t, report.GeneratedAt.IsZero())

	assert.Equal(t, 3, report.Stats.TotalAssets)
	assert.Equal(t, 4, report.Stats.TotalVulnerabilities)
	assert.Equal(t, 1, report.Stats.CriticalCount)
	assert.Equal(t, 1, report.Stats.HighCount)
	assert.Equal(t, 2, report.Stats.KEVListedCount)
	assert.Equal(t, 2, report.Stats.ExposedCount)
	assert.InDelta(t, (85.0+55.0+5.0)/3.0, report.Stats.AverageScore, 1e-9)

	require.Len(t, report.TopAssets, 3)
	assert.Equal(t, "hot", report.TopAssets[0].Asset.Name)
	assert.Equal(t, 2, report.TopAssets[0].VulnerabilityCount)
	assert.Equal(t, domain.SeverityCritical, report.TopAssets[0].WorstSeverity)
	assert.Equal(t, "Critical", report.TopAssets[0].RiskLevel)

	assert.Equal(t, "warm", report.TopAssets[1].Asset.Name)
	assert.Equal(t, domain.SeverityMedium, report.TopAssets[1].WorstSeverity)

	assert.Equal(t, "cold", report.TopAssets[2].Asset.Name)
	assert.Zero(t, report.TopAssets[2].VulnerabilityCount)
	assert.Equal(t, "", report.TopAssets[2].WorstSeverity)

	// KEV findings come back newest catalog entry first.
	require.Len(t, report.KEVFindings, 2)
	assert.Equal(t, "CVE-2024-0003", report.KEVFindings[0].CVE)
	assert.Equal(t, "CVE-2024-0001", report.KEVFindings[1].CVE)
}

func TestGenerateReportCapsTopAssets(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < topAssetLimit+5; i++ {
		createAsset(t, store, "asset-"+string(rune('a'+i)), float64(i))
	}

	report, err := NewReportGenerator(store, store).Generate(context.Background(), "admin")
	require.NoError(t, err)
	assert.Len(t, report.TopAssets, topAssetLimit)
	assert.Equal(t, topAssetLimit+5, report.Stats.TotalAssets)
}

func TestGenerateReportEmptyStore(t *testing.T) {
	store := newTestStore(t)

	report, err := NewReportGenerator(store, store).Generate(context.Background(), "admin")
	require.NoError(t, err)
	assert.Zero(t, report.Stats.TotalAssets)
	assert.Zero(t, report.Stats.AverageScore)
	assert.Empty(t, report.TopAssets)
	assert.Empty(t, report.KEVFindings)
}

func TestRiskLevelThresholds(t *testing.T) {
	assert.Equal(t, "Critical", domain.RiskLevel(80))
	assert.Equal(t, "High", domain.RiskLevel(60))
	assert.Equal(t, "Medium", domain.RiskLevel(40))
	assert.Equal(t, "Low", domain.RiskLevel(39.9))
	assert.Equal(t, "Low", domain.RiskLevel(0))
}
