package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/lcalzada-xor/vulnmap/internal/core/domain"
)

// ExportVulnerabilitiesJSON writes findings as an indented JSON array
func ExportVulnerabilitiesJSON(w io.Writer, vulns []domain.Vulnerability) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(vulns)
}

// ExportVulnerabilitiesCSV writes findings as CSV with headers
func ExportVulnerabilitiesCSV(w io.Writer, vulns []domain.Vulnerability) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	// Header row
	headers := []string{
		"CVE", "Severity", "Criticality", "EPSS", "CVSSBaseScore",
		"CVSSAttackVector", "CVSSAttackComplexity", "CVSSPrivilegesRequired",
		"KEVVulnerabilityName", "KEVDateAdded", "Exposed",
		"Published", "LastModified", "AssetID", "Description",
	}
	if err := writer.Write(headers); err != nil {
		return err
	}

	// Data rows
	for _, v := range vulns {
		row := []string{
			v.CVE,
			v.Severity,
			v.Criticality,
			formatFloat(v.EPSS, "%.5f"),
			formatFloat(v.CVSSBaseScore, "%.1f"),
			v.CVSSAttackVector,
			v.CVSSAttackComplexity,
			v.CVSSPrivilegesRequired,
			v.KEVVulnerabilityName,
			v.KEVDateAdded,
			fmt.Sprintf("%t", v.Exposed),
			v.Published,
			v.LastModified,
			formatAssetID(v.AssetID),
			v.Description,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return writer.Error()
}

// ExportAssetsJSON writes assets as an indented JSON array
func ExportAssetsJSON(w io.Writer, assets []domain.Asset) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(assets)
}

// ExportAssetsCSV writes assets as CSV with headers
func ExportAssetsCSV(w io.Writer, assets []domain.Asset) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	// Header
	headers := []string{"ID", "Name", "Version", "Product", "FilePath", "Engagement", "PriorityScore"}
	if err := writer.Write(headers); err != nil {
		return err
	}

	// Data
	for _, a := range assets {
		row := []string{
			fmt.Sprintf("%d", a.ID),
			a.Name,
			a.Version,
			a.Product,
			a.FilePath,
			a.Engagement,
			fmt.Sprintf("%.2f", a.PriorityScore),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return writer.Error()
}

func formatFloat(f *float64, format string) string {
	if f == nil {
		return ""
	}
	return fmt.Sprintf(format, *f)
}

func formatAssetID(id *uint) string {
	if id == nil {
		return ""
	}
	return fmt.Sprintf("%d", *id)
}
