package dataprocessing

import (
	"sort"

	"github.com/teozeng1205/brands-compare/pkg/contracts/domain"
)

// isAll reports whether a filter value selects every row
func isAll(v string) bool {
	return v == "" || v == domain.AllFilterValue
}

// FilterAirlineLevel keeps the rows of carrier, or every row for "All"
func FilterAirlineLevel(t *domain.Table[domain.AirlineFareFamily], carrier string) *domain.Table[domain.AirlineFareFamily] {
	if isAll(carrier) {
		return t
	}
	return t.Where(func(r domain.AirlineFareFamily) bool { return r.Carrier == carrier })
}

// FilterSourceLevel applies the carrier and source filters conjunctively
func FilterSourceLevel(t *domain.Table[domain.SourceFareFamily], carrier, source string) *domain.Table[domain.SourceFareFamily] {
	if isAll(carrier) && isAll(source) {
		return t
	}
	return t.Where(func(r domain.SourceFareFamily) bool {
		return (isAll(carrier) || r.Carrier == carrier) && (isAll(source) || r.Source == source)
	})
}

// FilterDetections keeps the rows of airline, or every row for "All"
func FilterDetections(t *domain.Table[domain.BrandDetection], airline string) *domain.Table[domain.BrandDetection] {
	if isAll(airline) {
		return t
	}
	return t.Where(func(r domain.BrandDetection) bool { return r.Airline == airline })
}

// FilterOptions returns "All" followed by the sorted distinct values
func FilterOptions(values []string) []string {
	distinct := Distinct(values)
	return append([]string{domain.AllFilterValue}, distinct...)
}

// Distinct returns the sorted distinct values
func Distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0)
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Carriers returns the carrier of every airline-level row
func Carriers(t *domain.Table[domain.AirlineFareFamily]) []string {
	return column(t, func(r domain.AirlineFareFamily) string { return r.Carrier })
}

// SourceCarriers returns the carrier of every source-level row
func SourceCarriers(t *domain.Table[domain.SourceFareFamily]) []string {
	return column(t, func(r domain.SourceFareFamily) string { return r.Carrier })
}

// Sources returns the source of every source-level row
func Sources(t *domain.Table[domain.SourceFareFamily]) []string {
	return column(t, func(r domain.SourceFareFamily) string { return r.Source })
}

// Airlines returns the airline of every brand-detection row
func Airlines(t *domain.Table[domain.BrandDetection]) []string {
	return column(t, func(r domain.BrandDetection) string { return r.Airline })
}

func column[T any](t *domain.Table[T], get func(T) string) []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = get(r.Record)
	}
	return out
}
