package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RecordsLoaded counts raw finding records accepted by the normalizer
	RecordsLoaded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vulnmap",
			Name:      "records_loaded_total",
			Help:      "Total number of finding records loaded from source files",
		},
		[]string{"file"},
	)

	// RecordsSkipped counts records discarded for a missing natural key
	RecordsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vulnmap",
			Name:      "records_skipped_total",
			Help:      "Total number of malformed finding records skipped",
		},
		[]string{"file"},
	)

	// VulnUpserts counts vulnerability rows inserted or updated
	VulnUpserts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vulnmap",
			Name:      "vulnerability_upserts_total",
			Help:      "Total number of vulnerability upserts committed",
		},
	)

	// AssetsCreated counts new canonical assets created by the resolver
	AssetsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vulnmap",
			Name:      "assets_created_total",
			Help:      "Total number of assets created during ingestion",
		},
	)

	// AssetsMerged counts duplicate assets removed by the merge engine
	AssetsMerged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vulnmap",
			Name:      "assets_merged_total",
			Help:      "Total number of duplicate assets merged away",
		},
	)

	// EnrichmentFetches counts lookups against external intelligence feeds
	EnrichmentFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vulnmap",
			Name:      "enrichment_fetches_total",
			Help:      "Total number of external enrichment lookups",
		},
		[]string{"source", "outcome"},
	)

	// EnrichmentCacheHits counts enrichment records served from the local cache
	EnrichmentCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vulnmap",
			Name:      "enrichment_cache_hits_total",
			Help:      "Total number of enrichment lookups answered by the cache",
		},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry
// This function is idempotent and can be called multiple times safely
func InitMetrics() {
	once.Do(func() {
		// Register metrics, ignoring errors if already registered
		// This prevents panics when metrics are already in the registry
		prometheus.DefaultRegisterer.Register(RecordsLoaded)
		prometheus.DefaultRegisterer.Register(RecordsSkipped)
		prometheus.DefaultRegisterer.Register(VulnUpserts)
		prometheus.DefaultRegisterer.Register(AssetsCreated)
		prometheus.DefaultRegisterer.Register(AssetsMerged)
		prometheus.DefaultRegisterer.Register(EnrichmentFetches)
		prometheus.DefaultRegisterer.Register(EnrichmentCacheHits)
	})
}
