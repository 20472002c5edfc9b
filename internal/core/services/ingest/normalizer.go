package ingest

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/lcalzada-xor/vulnmap/internal/core/domain"
)

// allowedKeys is the explicit allow-list of raw record keys the normalizer
// recognizes. Anything else in a scanner export is dropped without error,
// which is what keeps schema drift across tool versions safe.
var allowedKeys = map[string]struct{}{
	"cve":               {},
	"published":         {},
	"lastModified":      {},
	"description":       {},
	"severity":          {},
	"criticality":       {},
	"epss":              {},
	"cvss":              {},
	"kev":               {},
	"flags":             {},
	"component_name":    {},
	"component_version": {},
	"file_path":         {},
	"engagement":        {},
}

// unnamedPrefix marks filler columns produced by spreadsheet exports.
const unnamedPrefix = "Unnamed"

// Normalize projects one raw finding record onto the canonical schema.
// It returns ok=false when the record carries no CVE identifier; malformed
// rows are expected in bulk exports and are skipped, never treated as errors.
func Normalize(raw map[string]any) (domain.Vulnerability, domain.AssetKey, bool) {
	rec := make(map[string]any, len(raw))
	for k, v := range raw {
		if strings.HasPrefix(k, unnamedPrefix) {
			continue
		}
		if _, ok := allowedKeys[k]; ok {
			rec[k] = v
		}
	}

	cve := asString(rec["cve"])
	if cve == "" {
		return domain.Vulnerability{}, domain.AssetKey{}, false
	}

	vuln := domain.Vulnerability{
		CVE:          cve,
		Published:    asString(rec["published"]),
		LastModified: asString(rec["lastModified"]),
		Description:  asString(rec["description"]),
		Severity:     asString(rec["severity"]),
		Criticality:  asString(rec["criticality"]),
		EPSS:         tryFloat(rec["epss"]),
	}

	// Flatten nested enrichment sub-objects. A missing or malformed
	// sub-object yields nil/zero fields, not an error.
	if cvss := asMap(rec["cvss"]); cvss != nil {
		vuln.CVSSBaseScore = tryFloat(cvss["baseScore"])
		vuln.CVSSAttackVector = asString(cvss["attackVector"])
		vuln.CVSSAttackComplexity = asString(cvss["attackComplexity"])
		vuln.CVSSPrivilegesRequired = asString(cvss["privilegesRequired"])
	}
	if kev := asMap(rec["kev"]); kev != nil {
		vuln.KEVVulnerabilityName = asString(kev["vulnerabilityName"])
		vuln.KEVDateAdded = asString(kev["dateAdded"])
		vuln.KEVRequiredAction = asString(kev["requiredAction"])
		vuln.KEVKnownRansomwareUse = asString(kev["knownRansomwareCampaignUse"])
	}
	if flags := asMap(rec["flags"]); flags != nil {
		vuln.Exposed = asBool(flags["exposed"])
	}

	key := domain.AssetKey{
		Name:       asString(rec["component_name"]),
		Version:    asString(rec["component_version"]),
		FilePath:   asString(rec["file_path"]),
		Engagement: asString(rec["engagement"]),
	}

	return vuln, key, true
}

// tryFloat is the uniform "try-parse, else nil" numeric coercion. It accepts
// native floats, json.Number (arbitrary precision decimals from the decoder)
// and numeric strings; everything else, including "N/A" placeholders from
// enrichment scripts, coerces to nil.
func tryFloat(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return &f
		}
	case int:
		f := float64(n)
		return &f
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return &f
		}
	}
	return nil
}

// asString renders scalar values to their text form. Numbers are kept as
// text because fields like criticality are numeric-as-text in the schema.
func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return ""
}

func asBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(strings.TrimSpace(b), "true")
	}
	return false
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}
