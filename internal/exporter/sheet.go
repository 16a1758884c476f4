package exporter

import (
	"strconv"
	"strings"

	"github.com/teozeng1205/brands-compare/pkg/contracts/domain"
)

// Sheet is a rectangular table ready for export
type Sheet struct {
	Title   string
	Headers []string
	Rows    [][]string
	// Numeric marks columns whose cells are written as numbers by formats
	// that type their cells. Text that does not parse stays text.
	Numeric []bool
}

func (s Sheet) numeric(col int) bool {
	return col < len(s.Numeric) && s.Numeric[col]
}

// NumericColumns marks the integer and float columns of schema by header name
func NumericColumns(schema domain.Schema, headers []string) []bool {
	kinds := make(map[string]domain.ColumnKind, len(schema.Columns))
	for _, c := range schema.Columns {
		kinds[c.Name] = c.Kind
	}
	out := make([]bool, len(headers))
	for i, h := range headers {
		k := kinds[h]
		out[i] = k == domain.KindInteger || k == domain.KindFloat
	}
	return out
}

// ComparisonNumeric marks the volume and price columns of the comparison table
func ComparisonNumeric() []bool {
	out := make([]bool, len(domain.ComparisonColumns))
	for i, c := range domain.ComparisonColumns {
		switch c {
		case domain.CmpAirlineLevelODs, domain.CmpSourceLevelODs, domain.CmpDetectedPrice:
			out[i] = true
		}
	}
	return out
}

// cellValue returns a float64 for numeric cells that parse, the text otherwise
func (s Sheet) cellValue(col int, text string) interface{} {
	if !s.numeric(col) {
		return text
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
		return f
	}
	return text
}
