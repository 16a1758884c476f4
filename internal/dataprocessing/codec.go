package dataprocessing

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/teozeng1205/brands-compare/pkg/contracts/domain"
)

// columnIndex maps a column name to its position in the file
type columnIndex map[string]int

// indexColumns locates every schema column in header, failing on the first one missing
func indexColumns(schema domain.Schema, header []string) (columnIndex, error) {
	idx := make(columnIndex, len(header))
	for i, name := range header {
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}

	var missing []string
	for _, c := range schema.Columns {
		if _, ok := idx[c.Name]; !ok {
			missing = append(missing, c.Name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required column(s) %s (found %s)",
			strings.Join(missing, ", "), strings.Join(header, ", "))
	}
	return idx, nil
}

// cleanCells returns the textual cells of a record with missing tokens blanked
// and the categorical sentinel applied to schema categorical columns
func cleanCells(schema domain.Schema, idx columnIndex, rec []string) []string {
	out := make([]string, len(rec))
	for i, cell := range rec {
		if !IsMissing(cell) {
			out[i] = cell
		}
	}
	for _, c := range schema.Columns {
		if c.Kind == domain.KindCategorical && out[idx[c.Name]] == "" {
			out[idx[c.Name]] = domain.UnknownValue
		}
	}
	return out
}

// rowDecoder builds a typed record from cleaned cells
type rowDecoder[T any] func(idx columnIndex, cells []string) (T, error)

func requiredKey(idx columnIndex, cells []string, col string) (string, error) {
	v := cells[idx[col]]
	if v == "" {
		return "", fmt.Errorf("%s is missing", col)
	}
	return v, nil
}

// parseODs reads a non-negative integer volume. A missing value counts as zero;
// integral floats such as "120.0" are accepted.
func parseODs(idx columnIndex, cells []string) (int64, error) {
	v := strings.TrimSpace(cells[idx[domain.ColODs]])
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("ods %q is not an integer", v)
		}
		n = int64(f)
	}
	if n < 0 {
		return 0, fmt.Errorf("ods %d is negative", n)
	}
	return n, nil
}

func optionalString(idx columnIndex, cells []string, col string) *string {
	v := cells[idx[col]]
	if v == "" {
		return nil
	}
	return &v
}

func optionalPrice(idx columnIndex, cells []string) (*float64, error) {
	v := strings.TrimSpace(cells[idx[domain.ColMinPriceInc]])
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsInf(f, 0) {
		return nil, fmt.Errorf("min_price_inc %q is not a number", v)
	}
	if math.IsNaN(f) {
		return nil, nil
	}
	if f < 0 {
		return nil, fmt.Errorf("min_price_inc %v is negative", f)
	}
	return &f, nil
}

func decodeAirlineFareFamily(idx columnIndex, cells []string) (domain.AirlineFareFamily, error) {
	carrier, err := requiredKey(idx, cells, domain.ColCarrier)
	if err != nil {
		return domain.AirlineFareFamily{}, err
	}
	ods, err := parseODs(idx, cells)
	if err != nil {
		return domain.AirlineFareFamily{}, err
	}
	return domain.AirlineFareFamily{
		Carrier:            carrier,
		OutboundFareFamily: cells[idx[domain.ColOutboundFareFamily]],
		ODs:                ods,
	}, nil
}

func decodeSourceFareFamily(idx columnIndex, cells []string) (domain.SourceFareFamily, error) {
	carrier, err := requiredKey(idx, cells, domain.ColCarrier)
	if err != nil {
		return domain.SourceFareFamily{}, err
	}
	ods, err := parseODs(idx, cells)
	if err != nil {
		return domain.SourceFareFamily{}, err
	}
	return domain.SourceFareFamily{
		Carrier:            carrier,
		Source:             cells[idx[domain.ColSource]],
		OutboundFareFamily: cells[idx[domain.ColOutboundFareFamily]],
		ODs:                ods,
	}, nil
}

func decodeBrandDetection(idx columnIndex, cells []string) (domain.BrandDetection, error) {
	airline, err := requiredKey(idx, cells, domain.ColAirline)
	if err != nil {
		return domain.BrandDetection{}, err
	}
	price, err := optionalPrice(idx, cells)
	if err != nil {
		return domain.BrandDetection{}, err
	}
	return domain.BrandDetection{
		Airline:                     airline,
		Source:                      cells[idx[domain.ColSource]],
		IdentifiedBasicEconomyBrand: optionalString(idx, cells, domain.ColIdentifiedBrand),
		AllDetectedBrands:           optionalString(idx, cells, domain.ColAllDetectedBrands),
		MinPriceInc:                 price,
	}, nil
}

// rowError locates a decode failure; line is 1-based and counts the header
type rowError struct {
	Line int
	Err  error
}

func (e *rowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *rowError) Unwrap() error { return e.Err }

// buildTable types every record of raw. In strict mode the first bad row fails
// the table; otherwise bad rows are skipped and counted in raw.Skipped.
func buildTable[T any](schema domain.Schema, raw *rawTable, decode rowDecoder[T], strict bool) (*domain.Table[T], error) {
	idx, err := indexColumns(schema, raw.Header)
	if err != nil {
		return nil, err
	}

	t := &domain.Table[T]{
		Dataset: schema.Dataset,
		Columns: raw.Header,
		Rows:    make([]domain.Row[T], 0, len(raw.Records)),
	}
	for i, rec := range raw.Records {
		cells := cleanCells(schema, idx, rec)
		v, err := decode(idx, cells)
		if err != nil {
			if strict {
				return nil, &rowError{Line: i + 2, Err: err}
			}
			raw.Skipped++
			continue
		}
		t.Rows = append(t.Rows, domain.Row[T]{Record: v, Cells: cells})
	}
	return t, nil
}
