package enrich

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNVDFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "CVE-2024-0001", r.URL.Query().Get("cveId"))
		assert.Equal(t, "secret", r.Header.Get("apiKey"))
		fmt.Fprint(w, `{
			"vulnerabilities": [{
				"cve": {
					"id": "CVE-2024-0001",
					"published": "2024-01-05T10:00:00.000",
					"lastModified": "2024-02-01T10:00:00.000",
					"descriptions": [
						{"lang": "es", "value": "descripcion"},
						{"lang": "en", "value": "english description"}
					],
					"metrics": {
						"cvssMetricV31": [{
							"cvssData": {
								"baseScore": 9.8,
								"attackVector": "NETWORK",
								"attackComplexity": "LOW",
								"privilegesRequired": "NONE"
							}
						}]
					}
				}
			}]
		}`)
	}))
	defer server.Close()

	client := NewNVDClient(server.URL, "secret")
	record, err := client.Fetch(context.Background(), "CVE-2024-0001")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "CVE-2024-0001", record.CVE)
	assert.Equal(t, "2024-01-05T10:00:00.000", record.Published)
	assert.Equal(t, "english description", record.Description)
	require.NotNil(t, record.CVSS)
	assert.InDelta(t, 9.8, record.CVSS.BaseScore, 1e-9)
	assert.Equal(t, "NETWORK", record.CVSS.AttackVector)
}

func TestNVDFetchFallsBackToCVSS30(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"vulnerabilities": [{
				"cve": {
					"id": "CVE-2019-0001",
					"published": "2019-01-01T00:00:00.000",
					"lastModified": "2019-02-01T00:00:00.000",
					"descriptions": [{"lang": "en", "value": "legacy finding"}],
					"metrics": {
						"cvssMetricV30": [{
							"cvssData": {
								"baseScore": 6.5,
								"attackVector": "LOCAL",
								"attackComplexity": "HIGH",
								"privilegesRequired": "LOW"
							}
						}]
					}
				}
			}]
		}`)
	}))
	defer server.Close()

	client := NewNVDClient(server.URL, "")
	record, err := client.Fetch(context.Background(), "CVE-2019-0001")
	require.NoError(t, err)
	require.NotNil(t, record)
	require.NotNil(t, record.CVSS)
	assert.InDelta(t, 6.5, record.CVSS.BaseScore, 1e-9)
	assert.Equal(t, "LOCAL", record.CVSS.AttackVector)
}

func TestNVDFetchUnknownCVE(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewNVDClient(server.URL, "")
	record, err := client.Fetch(context.Background(), "CVE-0000-0000")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestNVDFetchEmptyResultSet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"vulnerabilities": []}`)
	}))
	defer server.Close()

	client := NewNVDClient(server.URL, "")
	record, err := client.Fetch(context.Background(), "CVE-0000-0000")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestNVDFetchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "throttled", http.StatusForbidden)
	}))
	defer server.Close()

	client := NewNVDClient(server.URL, "")
	_, err := client.Fetch(context.Background(), "CVE-2024-0001")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestNVDPaceHonorsCancelledContext(t *testing.T) {
	client := NewNVDClient("http://127.0.0.1:1", "")

	// First call goes through immediately; the second would need to wait
	// for the fetch interval and must observe the cancelled context.
	require.NoError(t, client.pace(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, client.pace(ctx), context.Canceled)
}
