package domain

import "strings"

// Asset represents a deduplicated logical software component or product.
// Identity is the (Name, Version) pair; at most one Asset exists per
// identity key. Product is a display form derived from Name.
type Asset struct {
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	Version       string  `json:"version,omitempty"`
	Product       string  `json:"product"`
	FilePath      string  `json:"file_path,omitempty"`
	Engagement    string  `json:"engagement,omitempty"`
	PriorityScore float64 `json:"priority_score"`
}

// AssetKey is the identity under which raw findings resolve to an Asset.
// FilePath and Engagement are carried as provenance attributes, not identity.
type AssetKey struct {
	Name       string
	Version    string
	FilePath   string
	Engagement string
}

// IsZero reports whether no asset identity could be derived from a finding.
func (k AssetKey) IsZero() bool {
	return k.Name == ""
}

// DeriveProduct formats the display name for an asset name.
// Namespaced identifiers ("group:artifact") keep only the last segment,
// with its first character upper-cased. Plain names pass through verbatim.
func DeriveProduct(name string) string {
	parts := strings.Split(name, ":")
	if len(parts) < 2 {
		return name
	}
	artifact := parts[len(parts)-1]
	if artifact == "" {
		return name
	}
	return strings.ToUpper(artifact[:1]) + artifact[1:]
}
