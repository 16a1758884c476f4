package domain

import "strconv"

// ComparisonRow is the reconciled lowest-brand view of one airline across the three datasets
type ComparisonRow struct {
	Airline string `json:"airline"`

	AirlineLevelBrand string `json:"george_airline_brand"`
	AirlineLevelODs   int64  `json:"george_airline_ods"`

	SourceLevelBrand string `json:"george_source_brand"`
	SourceLevelODs   int64  `json:"george_source_ods"`

	DetectedBrand  string   `json:"teo_basic_brand"`
	DetectedPrice  *float64 `json:"teo_min_price"`
	DetectedSource string   `json:"teo_source"`
}

// BrandRow is the brand-only subset of a ComparisonRow
type BrandRow struct {
	Airline           string `json:"airline"`
	AirlineLevelBrand string `json:"george_airline_brand"`
	SourceLevelBrand  string `json:"george_source_brand"`
	DetectedBrand     string `json:"teo_basic_brand"`
}

// Comparison column headers, kept identical to the downloadable file layout
const (
	CmpAirline           = "Airline"
	CmpAirlineLevelBrand = "George_Airline_Brand"
	CmpAirlineLevelODs   = "George_Airline_ODs"
	CmpSourceLevelBrand  = "George_Source_Brand"
	CmpSourceLevelODs    = "George_Source_ODs"
	CmpDetectedBrand     = "Teo_Basic_Brand"
	CmpDetectedPrice     = "Teo_Min_Price"
	CmpDetectedSource    = "Teo_Source"
)

// ComparisonColumns is the full comparison header in export order
var ComparisonColumns = []string{
	CmpAirline,
	CmpAirlineLevelBrand, CmpAirlineLevelODs,
	CmpSourceLevelBrand, CmpSourceLevelODs,
	CmpDetectedBrand, CmpDetectedPrice, CmpDetectedSource,
}

// BrandColumns is the header of the brand-only view
var BrandColumns = []string{CmpAirline, CmpAirlineLevelBrand, CmpSourceLevelBrand, CmpDetectedBrand}

// ComparisonSortKeys are the columns a comparison table may be sorted by
var ComparisonSortKeys = []string{CmpAirline, CmpAirlineLevelODs, CmpSourceLevelODs, CmpDetectedPrice}

// Brands returns the brand-only subset of the row
func (r ComparisonRow) Brands() BrandRow {
	return BrandRow{
		Airline:           r.Airline,
		AirlineLevelBrand: r.AirlineLevelBrand,
		SourceLevelBrand:  r.SourceLevelBrand,
		DetectedBrand:     r.DetectedBrand,
	}
}

// Cells renders the row in ComparisonColumns order. A missing price is an empty cell.
func (r ComparisonRow) Cells() []string {
	price := ""
	if r.DetectedPrice != nil {
		price = strconv.FormatFloat(*r.DetectedPrice, 'f', -1, 64)
	}
	return []string{
		r.Airline,
		r.AirlineLevelBrand, strconv.FormatInt(r.AirlineLevelODs, 10),
		r.SourceLevelBrand, strconv.FormatInt(r.SourceLevelODs, 10),
		r.DetectedBrand, price, r.DetectedSource,
	}
}

// Cells renders the brand row in BrandColumns order
func (r BrandRow) Cells() []string {
	return []string{r.Airline, r.AirlineLevelBrand, r.SourceLevelBrand, r.DetectedBrand}
}

// ComparisonQuery selects and orders an already reconciled comparison table
type ComparisonQuery struct {
	ShowAll   bool     `json:"show_all"`
	Airlines  []string `json:"airlines,omitempty" validate:"omitempty,dive,required"`
	SortBy    string   `json:"sort_by,omitempty" validate:"omitempty,oneof=Airline George_Airline_ODs George_Source_ODs Teo_Min_Price"`
	Ascending bool     `json:"ascending"`
}

// DefaultComparisonQuery shows every airline sorted by name ascending
func DefaultComparisonQuery() ComparisonQuery {
	return ComparisonQuery{ShowAll: true, SortBy: CmpAirline, Ascending: true}
}

// Comparison is the result of the lowest brands page
type Comparison struct {
	Universe []string        `json:"universe"`
	Rows     []ComparisonRow `json:"rows"`
	Brands   []BrandRow      `json:"brands"`
	Query    ComparisonQuery `json:"query"`
}
