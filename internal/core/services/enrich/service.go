package enrich

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lcalzada-xor/vulnmap/internal/core/domain"
	"github.com/lcalzada-xor/vulnmap/internal/core/ports"
)

const upsertBatchSize = 100

// Ensure interface compliance
var _ ports.EnrichmentService = (*Service)(nil)

// Service runs the enrichment pass: it fills EPSS, NVD and KEV signals into
// findings that are still missing them. Each external source failing is
// logged and absorbed; the pass enriches with whatever signals it got.
type Service struct {
	vulns ports.VulnerabilityRepository
	epss  ports.EPSSSource
	kev   ports.KEVSource
	nvd   ports.NVDSource
	cache ports.EnrichmentCache
}

// NewService wires an enrichment service. nvd and cache may be nil; the
// corresponding signals are then skipped.
func NewService(vulns ports.VulnerabilityRepository, epss ports.EPSSSource, kev ports.KEVSource, nvd ports.NVDSource, cache ports.EnrichmentCache) *Service {
	return &Service{vulns: vulns, epss: epss, kev: kev, nvd: nvd, cache: cache}
}

// EnrichPending fetches signals for every finding still lacking them and
// writes the updated findings back. Returns the number enriched.
func (s *Service) EnrichPending(ctx context.Context) (int, error) {
	pending, err := s.vulns.MissingEnrichment(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending findings: %w", err)
	}
	if len(pending) == 0 {
		log.Println("[ENRICH] No findings pending enrichment")
		return 0, nil
	}

	log.Printf("[ENRICH] %d findings pending enrichment", len(pending))

	if s.kev != nil {
		if err := s.kev.Load(ctx); err != nil {
			log.Printf("[ENRICH] KEV catalog unavailable: %v", err)
			s.kev = nil
		}
	}

	// Resolve each pending CVE to an enrichment record, preferring the
	// cache over the network.
	records := make(map[string]domain.Enrichment, len(pending))
	var misses []string
	for _, cve := range pending {
		if s.cache != nil {
			cached, err := s.cache.Get(ctx, cve)
			if err != nil {
				log.Printf("[ENRICH] Cache lookup failed for %s: %v", cve, err)
			} else if cached != nil {
				records[cve] = *cached
				continue
			}
		}
		misses = append(misses, cve)
	}

	s.fetch(ctx, misses, records)

	// Apply the records to the stored findings in bounded batches.
	enriched := 0
	batch := make([]domain.Vulnerability, 0, upsertBatchSize)
	for _, cve := range pending {
		record, ok := records[cve]
		if !ok {
			continue
		}

		vuln, err := s.vulns.GetVulnerabilityByCVE(ctx, cve)
		if err != nil {
			return enriched, fmt.Errorf("failed to load finding %s: %w", cve, err)
		}
		if vuln == nil {
			continue
		}

		record.Apply(vuln)
		batch = append(batch, *vuln)
		enriched++

		if len(batch) >= upsertBatchSize {
			if err := s.vulns.UpsertVulnerabilities(ctx, batch); err != nil {
				return enriched, fmt.Errorf("failed to save enriched findings: %w", err)
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := s.vulns.UpsertVulnerabilities(ctx, batch); err != nil {
			return enriched, fmt.Errorf("failed to save enriched findings: %w", err)
		}
	}

	log.Printf("[ENRICH] Enriched %d of %d pending findings", enriched, len(pending))
	return enriched, nil
}

// fetch pulls fresh signals for the cache misses and stores the assembled
// records back into the cache.
func (s *Service) fetch(ctx context.Context, misses []string, records map[string]domain.Enrichment) {
	if len(misses) == 0 {
		return
	}

	var epssScores map[string]float64
	if s.epss != nil {
		var err error
		epssScores, err = s.epss.Scores(ctx, misses)
		if err != nil {
			log.Printf("[ENRICH] EPSS lookup failed: %v", err)
		}
	}

	for _, cve := range misses {
		record := domain.Enrichment{CVE: cve, FetchedAt: time.Now().UTC()}

		if score, ok := epssScores[cve]; ok {
			record.EPSS = &score
		}
		if s.kev != nil {
			record.KEV = s.kev.Lookup(cve)
		}
		if s.nvd != nil {
			nvdRec, err := s.nvd.Fetch(ctx, cve)
			if err != nil {
				log.Printf("[ENRICH] NVD lookup failed for %s: %v", cve, err)
			} else {
				record.NVD = nvdRec
			}
		}

		records[cve] = record

		if s.cache != nil {
			if err := s.cache.Put(ctx, record); err != nil {
				log.Printf("[ENRICH] Cache write failed for %s: %v", cve, err)
			}
		}
	}
}
