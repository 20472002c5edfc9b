package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/lcalzada-xor/vulnmap/internal/core/domain"
	"github.com/lcalzada-xor/vulnmap/internal/core/ports"
	"github.com/lcalzada-xor/vulnmap/internal/telemetry"
)

const (
	// DefaultNVDBaseURL is the NVD CVE API v2 endpoint.
	DefaultNVDBaseURL = "https://services.nvd.nist.gov/rest/json/cves/2.0"

	// nvdFetchInterval spaces consecutive API calls to stay under the
	// upstream rate limit.
	nvdFetchInterval = 600 * time.Millisecond

	maxNVDResponseSize = 10 * 1024 * 1024 // 10 MB
)

// Ensure interface compliance
var _ ports.NVDSource = (*NVDClient)(nil)

// NVDClient fetches per-CVE metadata from the NVD API, one CVE per call,
// with a fixed cadence between calls.
type NVDClient struct {
	baseURL string
	apiKey  string
	client  *http.Client

	mu       sync.Mutex
	lastCall time.Time
}

// NewNVDClient creates a client with the given API key; an empty baseURL
// selects the public NVD endpoint.
func NewNVDClient(baseURL, apiKey string) *NVDClient {
	if baseURL == "" {
		baseURL = DefaultNVDBaseURL
	}
	return &NVDClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// nvdResponse mirrors the slice of the NVD API v2 payload the system reads.
type nvdResponse struct {
	Vulnerabilities []struct {
		CVE struct {
			ID           string `json:"id"`
			Published    string `json:"published"`
			LastModified string `json:"lastModified"`
			Descriptions []struct {
				Lang  string `json:"lang"`
				Value string `json:"value"`
			} `json:"descriptions"`
			Metrics struct {
				CVSSMetricV31 []nvdCVSSMetric `json:"cvssMetricV31"`
				CVSSMetricV30 []nvdCVSSMetric `json:"cvssMetricV30"`
			} `json:"metrics"`
		} `json:"cve"`
	} `json:"vulnerabilities"`
}

type nvdCVSSMetric struct {
	CVSSData struct {
		BaseScore          float64 `json:"baseScore"`
		AttackVector       string  `json:"attackVector"`
		AttackComplexity   string  `json:"attackComplexity"`
		PrivilegesRequired string  `json:"privilegesRequired"`
	} `json:"cvssData"`
}

// Fetch retrieves the NVD record for one CVE. A CVE unknown upstream
// returns nil without error.
func (c *NVDClient) Fetch(ctx context.Context, cve string) (*domain.NVDRecord, error) {
	if err := c.pace(ctx); err != nil {
		return nil, err
	}

	endpoint := c.baseURL + "?cveId=" + url.QueryEscape(cve)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build NVD request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("apiKey", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		telemetry.EnrichmentFetches.WithLabelValues("nvd", "error").Inc()
		return nil, fmt.Errorf("NVD request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		telemetry.EnrichmentFetches.WithLabelValues("nvd", "error").Inc()
		return nil, fmt.Errorf("NVD API returned HTTP %d for %s", resp.StatusCode, cve)
	}

	var parsed nvdResponse
	dec := json.NewDecoder(io.LimitReader(resp.Body, maxNVDResponseSize))
	if err := dec.Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode NVD response: %w", err)
	}
	telemetry.EnrichmentFetches.WithLabelValues("nvd", "ok").Inc()

	if len(parsed.Vulnerabilities) == 0 {
		return nil, nil
	}

	item := parsed.Vulnerabilities[0].CVE
	record := &domain.NVDRecord{
		CVE:          item.ID,
		Published:    item.Published,
		LastModified: item.LastModified,
	}

	// Prefer the English description; fall back to the first one present.
	for _, d := range item.Descriptions {
		if d.Lang == "en" {
			record.Description = d.Value
			break
		}
	}
	if record.Description == "" && len(item.Descriptions) > 0 {
		record.Description = item.Descriptions[0].Value
	}

	// CVSS v3.1 takes precedence over v3.0 when both are published.
	metrics := item.Metrics.CVSSMetricV31
	if len(metrics) == 0 {
		metrics = item.Metrics.CVSSMetricV30
	}
	if len(metrics) > 0 {
		data := metrics[0].CVSSData
		record.CVSS = &domain.CVSSMetrics{
			BaseScore:          data.BaseScore,
			AttackVector:       data.AttackVector,
			AttackComplexity:   data.AttackComplexity,
			PrivilegesRequired: data.PrivilegesRequired,
		}
	}

	return record, nil
}

// pace sleeps until the fetch interval since the previous call has passed.
func (c *NVDClient) pace(ctx context.Context) error {
	c.mu.Lock()
	now := time.Now()
	next := c.lastCall.Add(nvdFetchInterval)
	wait := next.Sub(now)
	if wait <= 0 {
		c.lastCall = now
		c.mu.Unlock()
		return nil
	}
	c.lastCall = next
	c.mu.Unlock()
	select {
	case <-time.After(wait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
