package domain

// Severity labels used by scanner exports. Free-form values outside this
// set are stored as-is; they simply carry no weight in scoring.
const (
	SeverityCritical = "Critical"
	SeverityHigh     = "High"
	SeverityMedium   = "Medium"
	SeverityLow      = "Low"
	SeverityInfo     = "Info"
)

var severityWeights = map[string]float64{
	SeverityCritical: 10,
	SeverityHigh:     7,
	SeverityMedium:   5,
	SeverityLow:      3,
	SeverityInfo:     1,
}

// SeverityWeight returns the numeric weight of a severity label and whether
// the label is one of the recognized values.
func SeverityWeight(severity string) (float64, bool) {
	w, ok := severityWeights[severity]
	return w, ok
}

// Vulnerability is one finding for one Asset, keyed by its CVE identifier.
// The CVE is globally unique and drives idempotent upsert: re-ingesting a
// record with the same CVE updates fields, never creates a second row.
//
// CVSS and KEV sub-objects of the raw input are flattened into this struct;
// pointer fields are nil when the signal is absent.
type Vulnerability struct {
	CVE          string `json:"cve"`
	Published    string `json:"published,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
	Description  string `json:"description,omitempty"`

	Severity    string   `json:"severity,omitempty"`
	Criticality string   `json:"criticality,omitempty"`
	EPSS        *float64 `json:"epss,omitempty"`

	CVSSBaseScore          *float64 `json:"cvss_base_score,omitempty"`
	CVSSAttackVector       string   `json:"cvss_attack_vector,omitempty"`
	CVSSAttackComplexity   string   `json:"cvss_attack_complexity,omitempty"`
	CVSSPrivilegesRequired string   `json:"cvss_privileges_required,omitempty"`

	KEVVulnerabilityName string `json:"kev_vulnerability_name,omitempty"`
	KEVDateAdded         string `json:"kev_date_added,omitempty"`
	KEVRequiredAction    string `json:"kev_required_action,omitempty"`
	KEVKnownRansomwareUse string `json:"kev_known_ransomware_use,omitempty"`

	Exposed bool  `json:"exposed"`
	AssetID *uint `json:"asset_id,omitempty"`
}

// KEVListed reports whether the finding carries KEV catalog enrichment.
func (v Vulnerability) KEVListed() bool {
	return v.KEVVulnerabilityName != ""
}
