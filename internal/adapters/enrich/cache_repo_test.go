package enrich

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/vulnmap/internal/core/domain"
)

func newTestCache(t *testing.T, ttl time.Duration) *SQLiteCache {
	t.Helper()
	cache, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestCachePutGetRoundTrip(t *testing.T) {
	cache := newTestCache(t, 0)
	ctx := context.Background()

	epss := 0.42
	record := domain.Enrichment{
		CVE:  "CVE-2024-0001",
		EPSS: &epss,
		NVD:  &domain.NVDRecord{CVE: "CVE-2024-0001", Description: "desc"},
		KEV:  &domain.KEVEntry{CVEID: "CVE-2024-0001", VulnerabilityName: "Widget RCE"},
	}
	require.NoError(t, cache.Put(ctx, record))

	got, err := cache.Get(ctx, "CVE-2024-0001")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.EPSS)
	assert.InDelta(t, 0.42, *got.EPSS, 1e-9)
	assert.Equal(t, "desc", got.NVD.Description)
	assert.Equal(t, "Widget RCE", got.KEV.VulnerabilityName)
	assert.False(t, got.FetchedAt.IsZero())
}

func TestCacheMiss(t *testing.T) {
	cache := newTestCache(t, 0)
	got, err := cache.Get(context.Background(), "CVE-0000-0000")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCacheExpiry(t *testing.T) {
	cache := newTestCache(t, time.Millisecond)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, domain.Enrichment{CVE: "CVE-2024-0001"}))
	time.Sleep(10 * time.Millisecond)

	got, err := cache.Get(ctx, "CVE-2024-0001")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCachePutOverwrites(t *testing.T) {
	cache := newTestCache(t, 0)
	ctx := context.Background()

	first := 0.1
	require.NoError(t, cache.Put(ctx, domain.Enrichment{CVE: "CVE-2024-0001", EPSS: &first}))

	second := 0.9
	require.NoError(t, cache.Put(ctx, domain.Enrichment{CVE: "CVE-2024-0001", EPSS: &second}))

	got, err := cache.Get(ctx, "CVE-2024-0001")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.InDelta(t, 0.9, *got.EPSS, 1e-9)
}

func TestCachePutRequiresCVE(t *testing.T) {
	cache := newTestCache(t, 0)
	assert.Error(t, cache.Put(context.Background(), domain.Enrichment{}))
}

func TestCacheSyncStatus(t *testing.T) {
	cache := newTestCache(t, 0)
	ctx := context.Background()

	last, err := cache.LastSyncTime(ctx)
	require.NoError(t, err)
	assert.True(t, last.IsZero())

	require.NoError(t, cache.UpdateSyncStatus(ctx, 17, nil))

	last, err = cache.LastSyncTime(ctx)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), last, time.Minute)
}
