package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/lcalzada-xor/vulnmap/internal/core/domain"
	"github.com/lcalzada-xor/vulnmap/internal/core/ports"
	"github.com/lcalzada-xor/vulnmap/internal/telemetry"
)

const (
	// DefaultKEVURL is the CISA Known Exploited Vulnerabilities feed.
	DefaultKEVURL = "https://www.cisa.gov/sites/default/files/feeds/known_exploited_vulnerabilities.json"

	// kevFallbackURL mirrors the catalog on GitHub in case the primary
	// feed is unreachable.
	kevFallbackURL = "https://raw.githubusercontent.com/cisagov/kev-data/main/known_exploited_vulnerabilities.json"

	maxKEVResponseSize = 50 * 1024 * 1024 // 50 MB
)

// Ensure interface compliance
var _ ports.KEVSource = (*KEVFeed)(nil)

// KEVFeed holds the CISA KEV catalog in memory after one bulk load.
// Lookup is safe for concurrent use once Load has returned.
type KEVFeed struct {
	url      string
	filePath string
	client   *http.Client

	mu      sync.RWMutex
	entries map[string]domain.KEVEntry
}

// NewKEVFeed creates a catalog fed from the given URL; an empty url
// selects the public CISA feed.
func NewKEVFeed(url string) *KEVFeed {
	if url == "" {
		url = DefaultKEVURL
	}
	return &KEVFeed{
		url:     url,
		client:  &http.Client{Timeout: 60 * time.Second},
		entries: make(map[string]domain.KEVEntry),
	}
}

// NewKEVFeedFromFile creates a catalog fed from a local JSON snapshot
// instead of the network.
func NewKEVFeedFromFile(path string) *KEVFeed {
	return &KEVFeed{
		filePath: path,
		entries:  make(map[string]domain.KEVEntry),
	}
}

// Load populates the catalog. Network loads fall back to the GitHub mirror
// when the primary feed fails; only both failing is an error.
func (k *KEVFeed) Load(ctx context.Context) error {
	var data []byte
	var err error

	if k.filePath != "" {
		data, err = os.ReadFile(k.filePath)
		if err != nil {
			return fmt.Errorf("failed to read KEV snapshot: %w", err)
		}
	} else {
		data, err = k.download(ctx, k.url)
		if err != nil {
			log.Printf("[ENRICH] KEV primary feed failed (%v), trying mirror", err)
			var mirrorErr error
			data, mirrorErr = k.download(ctx, kevFallbackURL)
			if mirrorErr != nil {
				telemetry.EnrichmentFetches.WithLabelValues("kev", "error").Inc()
				return fmt.Errorf("KEV download failed: primary: %v; mirror: %w", err, mirrorErr)
			}
		}
		telemetry.EnrichmentFetches.WithLabelValues("kev", "ok").Inc()
	}

	var catalog domain.KEVCatalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return fmt.Errorf("failed to parse KEV catalog: %w", err)
	}

	entries := make(map[string]domain.KEVEntry, len(catalog.Vulnerabilities))
	for _, entry := range catalog.Vulnerabilities {
		entries[entry.CVEID] = entry
	}

	k.mu.Lock()
	k.entries = entries
	k.mu.Unlock()

	log.Printf("[ENRICH] Loaded %d KEV catalog entries", len(entries))
	return nil
}

// Lookup returns the catalog entry for a CVE, or nil when not listed.
func (k *KEVFeed) Lookup(cve string) *domain.KEVEntry {
	k.mu.RLock()
	defer k.mu.RUnlock()

	entry, ok := k.entries[cve]
	if !ok {
		return nil
	}
	return &entry
}

func (k *KEVFeed) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build KEV request: %w", err)
	}

	resp, err := k.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("KEV request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("KEV feed returned HTTP %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxKEVResponseSize))
}
