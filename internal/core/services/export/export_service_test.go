package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/vulnmap/internal/core/domain"
)

func sampleVulns() []domain.Vulnerability {
	epss := 0.97452
	cvss := 9.8
	assetID := uint(3)
	return []domain.Vulnerability{
		{
			CVE:                  "CVE-2024-0001",
			Severity:             domain.SeverityCritical,
			Criticality:          "9",
			EPSS:                 &epss,
			CVSSBaseScore:        &cvss,
			CVSSAttackVector:     "NETWORK",
			KEVVulnerabilityName: "Widget RCE",
			KEVDateAdded:         "2024-01-01",
			Exposed:              true,
			Description:          "remote code execution",
			AssetID:              &assetID,
		},
		{
			CVE:      "CVE-2024-0002",
			Severity: domain.SeverityLow,
		},
	}
}

func TestExportVulnerabilitiesCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportVulnerabilitiesCSV(&buf, sampleVulns()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "CVE", rows[0][0])
	assert.Equal(t, "Description", rows[0][len(rows[0])-1])

	first := rows[1]
	assert.Equal(t, "CVE-2024-0001", first[0])
	assert.Equal(t, "Critical", first[1])
	assert.Equal(t, "0.97452", first[3])
	assert.Equal(t, "9.8", first[4])
	assert.Equal(t, "true", first[10])
	assert.Equal(t, "3", first[13])

	// Absent pointer fields export as empty cells, not zeros.
	second := rows[2]
	assert.Equal(t, "", second[3])
	assert.Equal(t, "", second[4])
	assert.Equal(t, "false", second[10])
	assert.Equal(t, "", second[13])
}

func TestExportVulnerabilitiesJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportVulnerabilitiesJSON(&buf, sampleVulns()))

	var decoded []domain.Vulnerability
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "CVE-2024-0001", decoded[0].CVE)
	require.NotNil(t, decoded[0].EPSS)
	assert.InDelta(t, 0.97452, *decoded[0].EPSS, 1e-9)
	assert.Nil(t, decoded[1].EPSS)
}

func TestExportAssetsCSV(t *testing.T) {
	assets := []domain.Asset{
		{ID: 1, Name: "widget", Version: "1.0", Product: "Widget", PriorityScore: 72.456},
		{ID: 2, Name: "gadget", Product: "Gadget"},
	}

	var buf bytes.Buffer
	require.NoError(t, ExportAssetsCSV(&buf, assets))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"ID", "Name", "Version", "Product", "FilePath", "Engagement", "PriorityScore"}, rows[0])
	assert.Equal(t, "72.46", rows[1][6])
	assert.Equal(t, "0.00", rows[2][6])
}

func TestExportAssetsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportAssetsJSON(&buf, []domain.Asset{{ID: 1, Name: "widget", Product: "Widget"}}))

	var decoded []domain.Asset
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "widget", decoded[0].Name)
}

func TestExportEmptySlices(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportVulnerabilitiesCSV(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1) // header only
}
