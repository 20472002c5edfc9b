package enrich

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleKEVCatalog = `{
	"catalogVersion": "2024.05.01",
	"dateReleased": "2024-05-01T00:00:00.000Z",
	"count": 2,
	"vulnerabilities": [
		{
			"cveID": "CVE-2021-44228",
			"vendorProject": "Apache",
			"product": "Log4j2",
			"vulnerabilityName": "Apache Log4j2 Remote Code Execution Vulnerability",
			"dateAdded": "2021-12-10",
			"shortDescription": "JNDI lookup RCE",
			"requiredAction": "Apply updates",
			"knownRansomwareCampaignUse": "Known"
		},
		{
			"cveID": "CVE-2023-4966",
			"vendorProject": "Citrix",
			"product": "NetScaler",
			"vulnerabilityName": "Citrix NetScaler Buffer Overflow Vulnerability",
			"dateAdded": "2023-10-18",
			"shortDescription": "Session token leak",
			"requiredAction": "Apply updates",
			"knownRansomwareCampaignUse": "Known"
		}
	]
}`

func TestKEVFeedLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kev.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleKEVCatalog), 0o644))

	feed := NewKEVFeedFromFile(path)
	require.NoError(t, feed.Load(context.Background()))

	entry := feed.Lookup("CVE-2021-44228")
	require.NotNil(t, entry)
	assert.Equal(t, "Apache Log4j2 Remote Code Execution Vulnerability", entry.VulnerabilityName)
	assert.Equal(t, "2021-12-10", entry.DateAdded)

	assert.Nil(t, feed.Lookup("CVE-2024-0001"))
}

func TestKEVFeedLoadFromURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleKEVCatalog)
	}))
	defer server.Close()

	feed := NewKEVFeed(server.URL)
	require.NoError(t, feed.Load(context.Background()))
	assert.NotNil(t, feed.Lookup("CVE-2023-4966"))
}

func TestKEVFeedFileMissing(t *testing.T) {
	feed := NewKEVFeedFromFile(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, feed.Load(context.Background()))
}

func TestKEVFeedMalformedCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kev.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	feed := NewKEVFeedFromFile(path)
	require.Error(t, feed.Load(context.Background()))
}

func TestKEVLookupReturnsCopy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kev.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleKEVCatalog), 0o644))

	feed := NewKEVFeedFromFile(path)
	require.NoError(t, feed.Load(context.Background()))

	first := feed.Lookup("CVE-2021-44228")
	first.VulnerabilityName = "mutated"

	second := feed.Lookup("CVE-2021-44228")
	assert.Equal(t, "Apache Log4j2 Remote Code Execution Vulnerability", second.VulnerabilityName)
}
