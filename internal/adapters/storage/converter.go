package storage

import "github.com/lcalzada-xor/vulnmap/internal/core/domain"

func assetToModel(a domain.Asset) AssetModel {
	return AssetModel{
		ID:            a.ID,
		Name:          a.Name,
		Version:       a.Version,
		Product:       a.Product,
		FilePath:      a.FilePath,
		Engagement:    a.Engagement,
		PriorityScore: a.PriorityScore,
	}
}

func assetToDomain(m AssetModel) domain.Asset {
	return domain.Asset{
		ID:            m.ID,
		Name:          m.Name,
		Version:       m.Version,
		Product:       m.Product,
		FilePath:      m.FilePath,
		Engagement:    m.Engagement,
		PriorityScore: m.PriorityScore,
	}
}

func vulnToModel(v domain.Vulnerability) VulnerabilityModel {
	return VulnerabilityModel{
		CVE:                    v.CVE,
		Published:              v.Published,
		LastModified:           v.LastModified,
		Description:            v.Description,
		Severity:               v.Severity,
		Criticality:            v.Criticality,
		EPSS:                   v.EPSS,
		CVSSBaseScore:          v.CVSSBaseScore,
		CVSSAttackVector:       v.CVSSAttackVector,
		CVSSAttackComplexity:   v.CVSSAttackComplexity,
		CVSSPrivilegesRequired: v.CVSSPrivilegesRequired,
		KEVVulnerabilityName:   v.KEVVulnerabilityName,
		KEVDateAdded:           v.KEVDateAdded,
		KEVRequiredAction:      v.KEVRequiredAction,
		KEVKnownRansomwareUse:  v.KEVKnownRansomwareUse,
		Exposed:                v.Exposed,
		AssetID:                v.AssetID,
	}
}

func vulnToDomain(m VulnerabilityModel) domain.Vulnerability {
	return domain.Vulnerability{
		CVE:                    m.CVE,
		Published:              m.Published,
		LastModified:           m.LastModified,
		Description:            m.Description,
		Severity:               m.Severity,
		Criticality:            m.Criticality,
		EPSS:                   m.EPSS,
		CVSSBaseScore:          m.CVSSBaseScore,
		CVSSAttackVector:       m.CVSSAttackVector,
		CVSSAttackComplexity:   m.CVSSAttackComplexity,
		CVSSPrivilegesRequired: m.CVSSPrivilegesRequired,
		KEVVulnerabilityName:   m.KEVVulnerabilityName,
		KEVDateAdded:           m.KEVDateAdded,
		KEVRequiredAction:      m.KEVRequiredAction,
		KEVKnownRansomwareUse:  m.KEVKnownRansomwareUse,
		Exposed:                m.Exposed,
		AssetID:                m.AssetID,
	}
}

func vulnsToDomain(models []VulnerabilityModel) []domain.Vulnerability {
	vulns := make([]domain.Vulnerability, len(models))
	for i, m := range models {
		vulns[i] = vulnToDomain(m)
	}
	return vulns
}
