package scoring

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/lcalzada-xor/vulnmap/internal/adapters/storage"
	"github.com/lcalzada-xor/vulnmap/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkVulns(n int, severity, criticality string) []domain.Vulnerability {
	vulns := make([]domain.Vulnerability, n)
	for i := range vulns {
		vulns[i] = domain.Vulnerability{Severity: severity, Criticality: criticality}
	}
	return vulns
}

func TestScoreEmpty(t *testing.T) {
	assert.Zero(t, Score(nil))
	assert.Zero(t, Score([]domain.Vulnerability{}))
}

func TestScoreBounds(t *testing.T) {
	// Worst case saturates at 100, never beyond.
	worst := mkVulns(50, domain.SeverityCritical, "10")
	assert.InDelta(t, 100, Score(worst), 1e-9)

	// Even more findings cannot push the score past the clamp.
	assert.InDelta(t, 100, Score(mkVulns(500, domain.SeverityCritical, "10")), 1e-9)

	// A single informational finding stays near the floor.
	mild := Score(mkVulns(1, domain.SeverityInfo, "0"))
	assert.Greater(t, mild, 0.0)
	assert.Less(t, mild, 10.0)
}

func TestScoreBlend(t *testing.T) {
	// One Critical/10 finding: 40 + 40 + (1/50)*20 = 80.4
	got := Score(mkVulns(1, domain.SeverityCritical, "10"))
	assert.InDelta(t, 80.4, got, 1e-9)

	// One High/7 finding: 7/10*40 + 7/10*40 + 0.4 = 56.4
	got = Score(mkVulns(1, domain.SeverityHigh, "7"))
	assert.InDelta(t, 56.4, got, 1e-9)
}

func TestScoreCountSaturation(t *testing.T) {
	// The count factor grows with the number of findings up to 50.
	s10 := Score(mkVulns(10, domain.SeverityMedium, "5"))
	s50 := Score(mkVulns(50, domain.SeverityMedium, "5"))
	s80 := Score(mkVulns(80, domain.SeverityMedium, "5"))

	assert.Less(t, s10, s50)
	assert.InDelta(t, s50, s80, 1e-9)
}

func TestScoreNonNumericCriticalityExcluded(t *testing.T) {
	// Non-numeric criticality drops out of the average instead of
	// dragging it to zero.
	mixed := []domain.Vulnerability{
		{Severity: domain.SeverityHigh, Criticality: "8"},
		{Severity: domain.SeverityHigh, Criticality: "N/A"},
		{Severity: domain.SeverityHigh, Criticality: "-3"},
		{Severity: domain.SeverityHigh, Criticality: "2.5"},
	}
	numericOnly := []domain.Vulnerability{
		{Severity: domain.SeverityHigh, Criticality: "8"},
		{Severity: domain.SeverityHigh, Criticality: ""},
		{Severity: domain.SeverityHigh, Criticality: ""},
		{Severity: domain.SeverityHigh, Criticality: ""},
	}
	assert.InDelta(t, Score(numericOnly), Score(mixed), 1e-9)
}

func TestScoreUnknownSeverityLabels(t *testing.T) {
	// Unmapped labels stay in the denominator but add no weight.
	known := Score(mkVulns(2, domain.SeverityHigh, ""))
	diluted := Score(append(mkVulns(2, domain.SeverityHigh, ""), domain.Vulnerability{Severity: "Bizarre"}))
	assert.Less(t, diluted, known)
}

func TestScoreAll(t *testing.T) {
	store, err := storage.NewSQLiteAdapter(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	hot := &domain.Asset{Name: "hot", Version: "1.0"}
	require.NoError(t, store.CreateAsset(ctx, hot))
	cold := &domain.Asset{Name: "cold", Version: "1.0"}
	require.NoError(t, store.CreateAsset(ctx, cold))
	empty := &domain.Asset{Name: "empty", Version: "1.0"}
	require.NoError(t, store.CreateAsset(ctx, empty))

	hotID, coldID := hot.ID, cold.ID
	require.NoError(t, store.UpsertVulnerabilities(ctx, []domain.Vulnerability{
		{CVE: "CVE-1", Severity: domain.SeverityCritical, Criticality: "10", AssetID: &hotID},
		{CVE: "CVE-2", Severity: domain.SeverityCritical, Criticality: "9", AssetID: &hotID},
		{CVE: "CVE-3", Severity: domain.SeverityLow, Criticality: "2", AssetID: &coldID},
	}))

	scored, err := NewScorer(store, store).ScoreAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, scored)

	gotHot, err := store.GetAssetByID(ctx, hot.ID)
	require.NoError(t, err)
	gotCold, err := store.GetAssetByID(ctx, cold.ID)
	require.NoError(t, err)
	gotEmpty, err := store.GetAssetByID(ctx, empty.ID)
	require.NoError(t, err)

	assert.Greater(t, gotHot.PriorityScore, gotCold.PriorityScore)
	assert.Zero(t, gotEmpty.PriorityScore)
}

func TestParseCriticality(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"0", 0, true},
		{"5", 5, true},
		{"42", 42, true},
		{"", 0, false},
		{"-3", 0, false},
		{"2.5", 0, false},
		{"high", 0, false},
		{" 7", 0, false},
	}
	for _, c := range cases {
		got, ok := parseCriticality(c.in)
		assert.Equal(t, c.ok, ok, "input %q", c.in)
		if c.ok {
			assert.Equal(t, c.want, got, "input %q", c.in)
		}
	}
}
