package domain

import (
	"time"
)

// DatasetID identifies one of the three loaded tables
type DatasetID string

const (
	DatasetAirlineLevel   DatasetID = "airline-level"
	DatasetSourceLevel    DatasetID = "source-level"
	DatasetBrandDetection DatasetID = "brand-detection"
)

// AllDatasets lists the datasets in display order
var AllDatasets = []DatasetID{DatasetAirlineLevel, DatasetSourceLevel, DatasetBrandDetection}

// Valid reports whether id names a known dataset
func (id DatasetID) Valid() bool {
	switch id {
	case DatasetAirlineLevel, DatasetSourceLevel, DatasetBrandDetection:
		return true
	}
	return false
}

// Sentinel values used when a categorical or reconciled value is absent
const (
	UnknownValue   = "Unknown"
	NotAvailable   = "N/A"
	NotIdentified  = "Not Identified"
	AllFilterValue = "All"
)

// ColumnKind is the declared type of a schema column
type ColumnKind string

const (
	KindString      ColumnKind = "string"
	KindCategorical ColumnKind = "categorical"
	KindInteger     ColumnKind = "integer"
	KindFloat       ColumnKind = "float"
)

// Column is a named, typed column of a dataset schema
type Column struct {
	Name     string     `json:"name"`
	Kind     ColumnKind `json:"kind"`
	Key      bool       `json:"key,omitempty"`      // join key, must be present on every row
	Nullable bool       `json:"nullable,omitempty"` // missing values are kept as null
}

// Schema declares the required columns of a dataset file
type Schema struct {
	Dataset     DatasetID `json:"dataset"`
	FileName    string    `json:"file_name"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Columns     []Column  `json:"columns"`
}

// ColumnNames returns the required column names in declaration order
func (s Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Column name constants shared by schemas, filters and exports
const (
	ColCarrier            = "carrier"
	ColAirline            = "airline"
	ColSource             = "source"
	ColOutboundFareFamily = "outbound_fare_family"
	ColODs                = "ods"
	ColIdentifiedBrand    = "identified_basic_economy_brand"
	ColAllDetectedBrands  = "all_detected_brands"
	ColMinPriceInc        = "min_price_inc"
)

// Schemas of the three input files
var (
	AirlineLevelSchema = Schema{
		Dataset:     DatasetAirlineLevel,
		FileName:    "george_airline_level.csv",
		Title:       "George Airline Level",
		Description: "Aggregated fare family data by carrier",
		Columns: []Column{
			{Name: ColCarrier, Kind: KindString, Key: true},
			{Name: ColOutboundFareFamily, Kind: KindCategorical},
			{Name: ColODs, Kind: KindInteger},
		},
	}

	SourceLevelSchema = Schema{
		Dataset:     DatasetSourceLevel,
		FileName:    "george_airline_source_level.csv",
		Title:       "George Source Level",
		Description: "Detailed breakdown by carrier and booking source",
		Columns: []Column{
			{Name: ColCarrier, Kind: KindString, Key: true},
			{Name: ColSource, Kind: KindCategorical},
			{Name: ColOutboundFareFamily, Kind: KindCategorical},
			{Name: ColODs, Kind: KindInteger},
		},
	}

	BrandDetectionSchema = Schema{
		Dataset:     DatasetBrandDetection,
		FileName:    "teo_airline_source.csv",
		Title:       "Teo Brand Analysis",
		Description: "Advanced brand detection with price analysis",
		Columns: []Column{
			{Name: ColAirline, Kind: KindString, Key: true},
			{Name: ColSource, Kind: KindCategorical},
			{Name: ColIdentifiedBrand, Kind: KindString, Nullable: true},
			{Name: ColAllDetectedBrands, Kind: KindString, Nullable: true},
			{Name: ColMinPriceInc, Kind: KindFloat, Nullable: true},
		},
	}
)

// SchemaFor returns the schema of a dataset
func SchemaFor(id DatasetID) (Schema, bool) {
	switch id {
	case DatasetAirlineLevel:
		return AirlineLevelSchema, true
	case DatasetSourceLevel:
		return SourceLevelSchema, true
	case DatasetBrandDetection:
		return BrandDetectionSchema, true
	}
	return Schema{}, false
}

// Row pairs a typed record with the cleaned text of every column in the file
type Row[T any] struct {
	Record T
	Cells  []string
}

// Table is an immutable, ordered set of rows loaded from one file
type Table[T any] struct {
	Dataset DatasetID
	Columns []string
	Rows    []Row[T]
}

// Len returns the number of rows
func (t *Table[T]) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Records returns the typed records in row order
func (t *Table[T]) Records() []T {
	if t == nil {
		return nil
	}
	out := make([]T, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Record
	}
	return out
}

// CellRows returns the textual cells of every row
func (t *Table[T]) CellRows() [][]string {
	if t == nil {
		return nil
	}
	out := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Cells
	}
	return out
}

// Where returns a new table holding the rows accepted by keep, in original order
func (t *Table[T]) Where(keep func(T) bool) *Table[T] {
	out := &Table[T]{Dataset: t.Dataset, Columns: t.Columns}
	for _, r := range t.Rows {
		if keep(r.Record) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// SourceFile describes one input file of a load
type SourceFile struct {
	Dataset     DatasetID `json:"dataset"`
	Path        string    `json:"path"`
	SizeBytes   int64     `json:"size_bytes"`
	Rows        int       `json:"rows"`
	SkippedRows int       `json:"skipped_rows"`
	Delimiter   string    `json:"delimiter"`
	Fallback    bool      `json:"fallback"`
}

// Datasets is the once-loaded, read-only handle shared by every query
type Datasets struct {
	AirlineLevel *Table[AirlineFareFamily]
	SourceLevel  *Table[SourceFareFamily]
	Detections   *Table[BrandDetection]

	Fingerprint string
	LoadedAt    time.Time
	Sources     []SourceFile
}

// DatasetInfo is the catalogue entry of a dataset
type DatasetInfo struct {
	ID          DatasetID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	FileName    string    `json:"file_name"`
	Rows        int       `json:"rows"`
	Columns     []string  `json:"columns"`
	Filters     []string  `json:"filters"`
	LoadedAt    time.Time `json:"loaded_at"`
}
