package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/lcalzada-xor/vulnmap/internal/adapters/enrich"
	"github.com/lcalzada-xor/vulnmap/internal/adapters/storage"
	"github.com/lcalzada-xor/vulnmap/internal/core/domain"
	"github.com/lcalzada-xor/vulnmap/internal/core/services/dedupe"
	enrichService "github.com/lcalzada-xor/vulnmap/internal/core/services/enrich"
	"github.com/lcalzada-xor/vulnmap/internal/core/services/ingest"
	"github.com/lcalzada-xor/vulnmap/internal/core/services/scoring"
	"github.com/lcalzada-xor/vulnmap/internal/telemetry"
)

func main() {
	files := flag.String("files", "", "Comma-separated scan export files, or a glob like data/*.json")
	dbPath := flag.String("db", "./data/vulnmap.db", "Path to SQLite database")
	cacheDBPath := flag.String("cache-db", "./data/enrichment.db", "Path to enrichment cache database")
	doEnrich := flag.Bool("enrich", false, "Fetch EPSS/NVD/KEV signals after loading")
	kevFile := flag.String("kev-file", "", "Local KEV catalog snapshot (empty to download)")
	flag.Parse()

	log.Println("=== Vulnerability Loader ===")

	paths := resolveFiles(*files)
	if len(paths) == 0 {
		log.Fatal("No input files; pass -files")
	}

	nvdAPIKey := os.Getenv("VMAP_NVD_API_KEY")
	if *doEnrich && nvdAPIKey == "" {
		log.Fatal("Enrichment requires VMAP_NVD_API_KEY")
	}

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	telemetry.InitMetrics()

	store, err := storage.NewSQLiteAdapter(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	run, err := domain.NewIngestRun(uuid.New().String())
	if err != nil {
		log.Fatalf("Failed to create run: %v", err)
	}
	run.Files = len(paths)

	runErr := execute(ctx, store, paths, run, *doEnrich, *cacheDBPath, *kevFile, nvdAPIKey)
	run.Finish(runErr)

	if err := store.SaveRun(ctx, *run); err != nil {
		log.Printf("Warning: failed to save run summary: %v", err)
	}

	if runErr != nil {
		log.Fatalf("Run %s failed: %v", run.ID, runErr)
	}

	log.Printf("✓ Run %s: %d loaded, %d skipped, %d merged, %d scored",
		run.ID, run.Loaded, run.Skipped, run.Merged, run.Scored)
}

// execute drives the load, enrich, merge and score passes in order. Counters
// accumulate on the run as each pass completes, so a failed run still
// records the progress it made.
func execute(ctx context.Context, store *storage.SQLiteAdapter, paths []string, run *domain.IngestRun, doEnrich bool, cacheDBPath, kevFile, nvdAPIKey string) error {
	pipeline := ingest.NewPipeline(store, store)
	results, err := pipeline.LoadFiles(ctx, paths)
	for _, res := range results {
		run.Loaded += res.Loaded
		run.Skipped += res.Skipped
	}
	if err != nil {
		return err
	}

	if doEnrich {
		cache, err := enrich.NewSQLiteCache(cacheDBPath, 0)
		if err != nil {
			return err
		}
		defer cache.Close()

		var kev *enrich.KEVFeed
		if kevFile != "" {
			kev = enrich.NewKEVFeedFromFile(kevFile)
		} else {
			kev = enrich.NewKEVFeed("")
		}

		svc := enrichService.NewService(
			store,
			enrich.NewEPSSClient(""),
			kev,
			enrich.NewNVDClient("", nvdAPIKey),
			cache,
		)
		enriched, err := svc.EnrichPending(ctx)
		if syncErr := cache.UpdateSyncStatus(ctx, enriched, err); syncErr != nil {
			log.Printf("Warning: failed to record sync status: %v", syncErr)
		}
		if err != nil {
			return err
		}
	}

	merged, err := dedupe.NewEngine(store).MergeDuplicates(ctx)
	run.Merged = merged
	if err != nil {
		return err
	}

	scored, err := scoring.NewScorer(store, store).ScoreAll(ctx)
	run.Scored = scored
	return err
}

// resolveFiles expands the -files argument: each comma-separated entry is
// taken verbatim unless it contains glob characters.
func resolveFiles(arg string) []string {
	var paths []string
	for _, part := range strings.Split(arg, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.ContainsAny(part, "*?[") {
			matches, err := filepath.Glob(part)
			if err != nil {
				log.Printf("Warning: bad glob %q: %v", part, err)
				continue
			}
			paths = append(paths, matches...)
			continue
		}
		paths = append(paths, part)
	}
	return paths
}
