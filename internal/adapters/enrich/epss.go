package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lcalzada-xor/vulnmap/internal/core/ports"
	"github.com/lcalzada-xor/vulnmap/internal/telemetry"
)

const (
	// DefaultEPSSBaseURL is the FIRST.org EPSS API endpoint.
	DefaultEPSSBaseURL = "https://api.first.org/data/v1/epss"

	// epssBatchSize is the maximum number of CVE identifiers per API call.
	epssBatchSize = 100

	maxEPSSResponseSize = 50 * 1024 * 1024 // 50 MB
)

// Ensure interface compliance
var _ ports.EPSSSource = (*EPSSClient)(nil)

// EPSSClient fetches exploit-prediction scores from the FIRST.org API.
type EPSSClient struct {
	baseURL string
	client  *http.Client
}

// NewEPSSClient creates a client against the given endpoint; an empty
// baseURL selects the public FIRST.org API.
func NewEPSSClient(baseURL string) *EPSSClient {
	if baseURL == "" {
		baseURL = DefaultEPSSBaseURL
	}
	return &EPSSClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// epssResponse is the FIRST.org API envelope.
type epssResponse struct {
	Status string `json:"status"`
	Total  int    `json:"total"`
	Data   []struct {
		CVE        string `json:"cve"`
		EPSS       string `json:"epss"`
		Percentile string `json:"percentile"`
	} `json:"data"`
}

// Scores fetches EPSS scores for the given CVEs in batches. CVEs unknown
// upstream are omitted from the result map; a partial-batch failure fails
// the whole call.
func (c *EPSSClient) Scores(ctx context.Context, cves []string) (map[string]float64, error) {
	scores := make(map[string]float64, len(cves))

	for start := 0; start < len(cves); start += epssBatchSize {
		end := start + epssBatchSize
		if end > len(cves) {
			end = len(cves)
		}

		if err := c.fetchBatch(ctx, cves[start:end], scores); err != nil {
			telemetry.EnrichmentFetches.WithLabelValues("epss", "error").Inc()
			return nil, err
		}
		telemetry.EnrichmentFetches.WithLabelValues("epss", "ok").Inc()
	}

	return scores, nil
}

func (c *EPSSClient) fetchBatch(ctx context.Context, batch []string, scores map[string]float64) error {
	endpoint := c.baseURL + "?cve=" + url.QueryEscape(strings.Join(batch, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build EPSS request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("EPSS request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("EPSS API returned HTTP %d", resp.StatusCode)
	}

	var parsed epssResponse
	dec := json.NewDecoder(io.LimitReader(resp.Body, maxEPSSResponseSize))
	if err := dec.Decode(&parsed); err != nil {
		return fmt.Errorf("failed to decode EPSS response: %w", err)
	}

	for _, entry := range parsed.Data {
		score, err := strconv.ParseFloat(entry.EPSS, 64)
		if err != nil {
			// Skip malformed rows rather than failing the batch.
			continue
		}
		scores[entry.CVE] = score
	}

	return nil
}
