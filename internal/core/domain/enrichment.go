package domain

import "time"

// KEVEntry is one record of the CISA Known Exploited Vulnerabilities catalog.
type KEVEntry struct {
	CVEID                      string `json:"cveID"`
	VendorProject              string `json:"vendorProject"`
	Product                    string `json:"product"`
	VulnerabilityName          string `json:"vulnerabilityName"`
	DateAdded                  string `json:"dateAdded"`
	ShortDescription           string `json:"shortDescription"`
	RequiredAction             string `json:"requiredAction"`
	KnownRansomwareCampaignUse string `json:"knownRansomwareCampaignUse"`
}

// KEVCatalog is the CISA KEV catalog JSON document.
type KEVCatalog struct {
	CatalogVersion  string     `json:"catalogVersion"`
	DateReleased    string     `json:"dateReleased"`
	Count           int        `json:"count"`
	Vulnerabilities []KEVEntry `json:"vulnerabilities"`
}

// CVSSMetrics is the subset of CVSS v3 base metrics the system keeps.
type CVSSMetrics struct {
	BaseScore          float64 `json:"baseScore"`
	AttackVector       string  `json:"attackVector"`
	AttackComplexity   string  `json:"attackComplexity"`
	PrivilegesRequired string  `json:"privilegesRequired"`
}

// NVDRecord is the per-CVE metadata returned by the NVD lookup.
type NVDRecord struct {
	CVE          string       `json:"cve"`
	Published    string       `json:"published"`
	LastModified string       `json:"last_modified"`
	Description  string       `json:"description"`
	CVSS         *CVSSMetrics `json:"cvss,omitempty"`
}

// Enrichment bundles all external threat-intelligence signals for one CVE.
// Nil members mean the signal was unavailable when the record was fetched.
type Enrichment struct {
	CVE       string     `json:"cve"`
	EPSS      *float64   `json:"epss,omitempty"`
	NVD       *NVDRecord `json:"nvd,omitempty"`
	KEV       *KEVEntry  `json:"kev,omitempty"`
	FetchedAt time.Time  `json:"fetched_at"`
}

// Apply copies enrichment signals onto a vulnerability, filling only fields
// the finding does not already carry. KEV membership additionally marks the
// finding as exposed.
func (e Enrichment) Apply(v *Vulnerability) {
	if v.EPSS == nil && e.EPSS != nil {
		score := *e.EPSS
		v.EPSS = &score
	}
	if e.NVD != nil {
		if v.Published == "" {
			v.Published = e.NVD.Published
		}
		if v.LastModified == "" {
			v.LastModified = e.NVD.LastModified
		}
		if v.Description == "" {
			v.Description = e.NVD.Description
		}
		if v.CVSSBaseScore == nil && e.NVD.CVSS != nil {
			base := e.NVD.CVSS.BaseScore
			v.CVSSBaseScore = &base
			v.CVSSAttackVector = e.NVD.CVSS.AttackVector
			v.CVSSAttackComplexity = e.NVD.CVSS.AttackComplexity
			v.CVSSPrivilegesRequired = e.NVD.CVSS.PrivilegesRequired
		}
	}
	if e.KEV != nil {
		v.KEVVulnerabilityName = e.KEV.VulnerabilityName
		v.KEVDateAdded = e.KEV.DateAdded
		v.KEVRequiredAction = e.KEV.RequiredAction
		v.KEVKnownRansomwareUse = e.KEV.KnownRansomwareCampaignUse
		v.Exposed = true
	}
}
