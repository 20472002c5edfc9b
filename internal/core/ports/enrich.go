package ports

import (
	"context"

	"github.com/lcalzada-xor/vulnmap/internal/core/domain"
)

// EPSSSource looks up exploit-prediction scores. Implementations batch
// requests; absent identifiers are simply omitted from the result.
type EPSSSource interface {
	Scores(ctx context.Context, cves []string) (map[string]float64, error)
}

// KEVSource is the known-exploited-vulnerabilities catalog, consulted
// in-memory after one bulk load.
type KEVSource interface {
	// Load populates the catalog; it must be called once before Lookup.
	Load(ctx context.Context) error

	// Lookup returns the catalog entry for a CVE, or nil when not listed.
	Lookup(cve string) *domain.KEVEntry
}

// NVDSource fetches per-CVE metadata. Implementations respect the upstream
// rate limit; a nil record without error means the CVE is unknown upstream.
type NVDSource interface {
	Fetch(ctx context.Context, cve string) (*domain.NVDRecord, error)
}

// EnrichmentCache persists fetched enrichment records across loader runs.
type EnrichmentCache interface {
	Get(ctx context.Context, cve string) (*domain.Enrichment, error)
	Put(ctx context.Context, record domain.Enrichment) error
	Close() error
}

// EnrichmentService drives the enrichment pass over stored findings.
type EnrichmentService interface {
	// EnrichPending fetches signals for every finding still missing them
	// and writes the updated findings back. Returns the number enriched.
	EnrichPending(ctx context.Context) (int, error)
}
