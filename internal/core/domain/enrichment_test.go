package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(f float64) *float64 { return &f }

func TestEnrichmentApplyFillsAbsentFields(t *testing.T) {
	v := Vulnerability{CVE: "CVE-1"}

	e := Enrichment{
		CVE:  "CVE-1",
		EPSS: fptr(0.42),
		NVD: &NVDRecord{
			CVE:          "CVE-1",
			Published:    "2024-01-01",
			LastModified: "2024-02-01",
			Description:  "desc",
			CVSS: &CVSSMetrics{
				BaseScore:          7.5,
				AttackVector:       "NETWORK",
				AttackComplexity:   "LOW",
				PrivilegesRequired: "NONE",
			},
		},
		KEV: &KEVEntry{
			CVEID:                      "CVE-1",
			VulnerabilityName:          "Thing RCE",
			DateAdded:                  "2024-03-01",
			RequiredAction:             "Patch",
			KnownRansomwareCampaignUse: "Unknown",
		},
	}
	e.Apply(&v)

	require.NotNil(t, v.EPSS)
	assert.InDelta(t, 0.42, *v.EPSS, 1e-9)
	assert.Equal(t, "2024-01-01", v.Published)
	assert.Equal(t, "desc", v.Description)
	require.NotNil(t, v.CVSSBaseScore)
	assert.InDelta(t, 7.5, *v.CVSSBaseScore, 1e-9)
	assert.Equal(t, "NETWORK", v.CVSSAttackVector)
	assert.Equal(t, "Thing RCE", v.KEVVulnerabilityName)
	assert.True(t, v.Exposed)
	assert.True(t, v.KEVListed())
}

func TestEnrichmentApplyKeepsExistingFields(t *testing.T) {
	v := Vulnerability{
		CVE:           "CVE-1",
		Description:   "original",
		EPSS:          fptr(0.9),
		CVSSBaseScore: fptr(9.9),
	}

	e := Enrichment{
		CVE:  "CVE-1",
		EPSS: fptr(0.1),
		NVD: &NVDRecord{
			Description: "replacement",
			CVSS:        &CVSSMetrics{BaseScore: 1.0},
		},
	}
	e.Apply(&v)

	assert.InDelta(t, 0.9, *v.EPSS, 1e-9)
	assert.Equal(t, "original", v.Description)
	assert.InDelta(t, 9.9, *v.CVSSBaseScore, 1e-9)
}

func TestEnrichmentApplyEmpty(t *testing.T) {
	v := Vulnerability{CVE: "CVE-1"}
	Enrichment{CVE: "CVE-1"}.Apply(&v)
	assert.Nil(t, v.EPSS)
	assert.False(t, v.Exposed)
}
