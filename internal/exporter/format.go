package exporter

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/teozeng1205/brands-compare/pkg/contracts/domain"
)

// Format is a download file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// Download file names, one per exportable view
const (
	AirlineLevelFileName = "george_airline_level_filtered.csv"
	SourceLevelFileName  = "george_source_level_filtered.csv"
	DetectionFileName    = "teo_brand_analysis_filtered.csv"
	ComparisonFileName   = "lowest_brands_full_comparison.csv"
)

// TableFormats are the formats offered for raw dataset views
var TableFormats = []Format{FormatCSV, FormatXLSX}

// ComparisonFormats are the formats offered for the comparison table
var ComparisonFormats = []Format{FormatCSV, FormatXLSX, FormatPDF}

// ParseFormat reads a format name case-insensitively. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatXLSX, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// Supports reports whether f is one of formats
func Supports(formats []Format, f Format) bool {
	for _, x := range formats {
		if x == f {
			return true
		}
	}
	return false
}

// FormatNames returns the names of formats
func FormatNames(formats []Format) []string {
	out := make([]string, len(formats))
	for i, f := range formats {
		out[i] = string(f)
	}
	return out
}

// ContentType returns the MIME type of files in format f
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv; charset=utf-8"
	}
}

// FileName swaps the extension of a CSV download name for format f
func FileName(csvName string, f Format) string {
	if f == FormatCSV || f == "" {
		return csvName
	}
	return strings.TrimSuffix(csvName, filepath.Ext(csvName)) + "." + string(f)
}

// DatasetFileName returns the download name of a filtered dataset view
func DatasetFileName(id domain.DatasetID, f Format) string {
	switch id {
	case domain.DatasetAirlineLevel:
		return FileName(AirlineLevelFileName, f)
	case domain.DatasetSourceLevel:
		return FileName(SourceLevelFileName, f)
	default:
		return FileName(DetectionFileName, f)
	}
}
