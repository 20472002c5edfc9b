package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/lcalzada-xor/vulnmap/internal/core/domain"
	"github.com/lcalzada-xor/vulnmap/internal/core/ports"
	"github.com/lcalzada-xor/vulnmap/internal/telemetry"
)

// DefaultBatchSize bounds the number of upserts per transaction. A crash
// loses at most one uncommitted batch; upsert idempotence makes re-delivery
// of that tail safe on restart.
const DefaultBatchSize = 100

// FileResult summarizes the ingestion of one source file.
type FileResult struct {
	File    string `json:"file"`
	Loaded  int    `json:"loaded"`
	Skipped int    `json:"skipped"`
}

// Pipeline drives the normalizer and resolver over streams of raw finding
// records and upserts the results in bounded batches. It is strictly
// synchronous: one run at a time, no internal parallelism.
type Pipeline struct {
	vulns     ports.VulnerabilityRepository
	resolver  *Resolver
	batchSize int
}

// NewPipeline creates a pipeline writing through the given repositories.
func NewPipeline(assets ports.AssetRepository, vulns ports.VulnerabilityRepository) *Pipeline {
	return &Pipeline{
		vulns:     vulns,
		resolver:  NewResolver(assets),
		batchSize: DefaultBatchSize,
	}
}

// LoadFile ingests one JSON export file. The file must parse as a JSON
// array; a file that does not is an error for that file (batches already
// committed stay committed). Individual malformed records are skipped.
func (p *Pipeline) LoadFile(ctx context.Context, path string) (FileResult, error) {
	res := FileResult{File: path}

	f, err := os.Open(path)
	if err != nil {
		return res, fmt.Errorf("failed to open source file: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	// Preserve arbitrary-precision decimals as json.Number; the normalizer
	// coerces them to float64.
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return res, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return res, fmt.Errorf("failed to parse %s: expected a JSON array of records", path)
	}

	batch := make([]domain.Vulnerability, 0, p.batchSize)

	for dec.More() {
		var raw map[string]any
		if err := dec.Decode(&raw); err != nil {
			return res, fmt.Errorf("failed to parse %s: %w", path, err)
		}

		vuln, key, ok := Normalize(raw)
		if !ok {
			res.Skipped++
			telemetry.RecordsSkipped.WithLabelValues(path).Inc()
			continue
		}

		asset, err := p.resolver.Resolve(ctx, key)
		if err != nil {
			return res, err
		}
		if asset != nil {
			id := asset.ID
			vuln.AssetID = &id
		}

		batch = append(batch, vuln)
		res.Loaded++
		telemetry.RecordsLoaded.WithLabelValues(path).Inc()

		if len(batch) >= p.batchSize {
			if err := p.flush(ctx, batch); err != nil {
				return res, err
			}
			batch = batch[:0]
			log.Printf("[INGEST] Committed %d records from %s", res.Loaded, path)
		}
	}

	if err := p.flush(ctx, batch); err != nil {
		return res, err
	}

	log.Printf("[INGEST] Loaded %d records from %s (%d skipped)", res.Loaded, path, res.Skipped)
	return res, nil
}

// LoadFiles ingests each file independently. A failing file aborts the run;
// files already processed remain committed.
func (p *Pipeline) LoadFiles(ctx context.Context, paths []string) ([]FileResult, error) {
	results := make([]FileResult, 0, len(paths))
	for _, path := range paths {
		res, err := p.LoadFile(ctx, path)
		results = append(results, res)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

func (p *Pipeline) flush(ctx context.Context, batch []domain.Vulnerability) error {
	if len(batch) == 0 {
		return nil
	}
	if err := p.vulns.UpsertVulnerabilities(ctx, batch); err != nil {
		return fmt.Errorf("batch upsert failed: %w", err)
	}
	telemetry.VulnUpserts.Add(float64(len(batch)))
	return nil
}
