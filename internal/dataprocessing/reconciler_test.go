package dataprocessing

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teozeng1205/brands-compare/internal/shared/testutil"
	"github.com/teozeng1205/brands-compare/pkg/contracts/domain"
)

func TestReconcile(t *testing.T) {
	ds := loadFixtures(t)
	logger, _ := testutil.NewTestLogger(t)

	rows := NewReconciler(logger, nil).Reconcile(context.Background(), ds)

	want := []domain.ComparisonRow{
		{
			Airline:           "AA",
			AirlineLevelBrand: "Main Cabin", AirlineLevelODs: 250,
			SourceLevelBrand: "Basic Economy", SourceLevelODs: 120,
			DetectedBrand: domain.NotIdentified, DetectedPrice: ptr(99.0), DetectedSource: "NDC",
		},
		{
			Airline:           "BA",
			AirlineLevelBrand: domain.UnknownValue, AirlineLevelODs: 70,
			SourceLevelBrand: "Economy Light", SourceLevelODs: 20,
			DetectedBrand: domain.NotAvailable, DetectedSource: domain.NotAvailable,
		},
		{
			Airline:           "DL",
			AirlineLevelBrand: "Basic", AirlineLevelODs: 500,
			SourceLevelBrand: domain.NotAvailable,
			DetectedBrand:    domain.NotAvailable, DetectedSource: domain.NotAvailable,
		},
		{
			Airline:           "F9",
			AirlineLevelBrand: domain.NotAvailable,
			SourceLevelBrand:  domain.NotAvailable,
			DetectedBrand:     "Basic", DetectedPrice: ptr(45.0), DetectedSource: domain.UnknownValue,
		},
		{
			Airline:           "UA",
			AirlineLevelBrand: domain.NotAvailable,
			SourceLevelBrand:  "Basic Economy", SourceLevelODs: 15,
			DetectedBrand: "Basic Economy", DetectedSource: "NDC",
		},
	}
	assert.Equal(t, want, rows)
}

func TestUniverseBounds(t *testing.T) {
	ds := loadFixtures(t)
	universe := Universe(ds)

	assert.Equal(t, []string{"AA", "BA", "DL", "F9", "UA"}, universe)

	d1 := len(Distinct(Carriers(ds.AirlineLevel)))
	d2 := len(Distinct(SourceCarriers(ds.SourceLevel)))
	d3 := len(Distinct(Airlines(ds.Detections)))
	assert.GreaterOrEqual(t, len(universe), max(d1, d2, d3))
	assert.LessOrEqual(t, len(universe), d1+d2+d3)
}

func TestDominantFareFamily(t *testing.T) {
	get := func(x domain.AirlineFareFamily) (string, int64) { return x.OutboundFareFamily, x.ODs }

	brand, ods := DominantFareFamily([]domain.AirlineFareFamily{
		{Carrier: "X", OutboundFareFamily: "A", ODs: 100},
		{Carrier: "X", OutboundFareFamily: "B", ODs: 200},
		{Carrier: "X", OutboundFareFamily: "C", ODs: 40},
		{Carrier: "X", OutboundFareFamily: "B", ODs: 50},
	}, get)
	assert.Equal(t, "B", brand)
	assert.Equal(t, int64(250), ods)

	brand, ods = DominantFareFamily(nil, get)
	assert.Equal(t, domain.NotAvailable, brand)
	assert.Zero(t, ods)
}

func TestLowestPriced(t *testing.T) {
	tests := []struct {
		name       string
		rows       []domain.BrandDetection
		wantBrand  string
		wantPrice  *float64
		wantSource string
	}{
		{
			name: "cheapest row",
			rows: []domain.BrandDetection{
				{Airline: "X", Source: "GDS", IdentifiedBasicEconomyBrand: ptr("A"), MinPriceInc: ptr(80.0)},
				{Airline: "X", Source: "NDC", IdentifiedBasicEconomyBrand: ptr("B"), MinPriceInc: ptr(60.0)},
			},
			wantBrand: "B", wantPrice: ptr(60.0), wantSource: "NDC",
		},
		{
			name: "tie goes to the first row",
			rows: []domain.BrandDetection{
				{Airline: "X", Source: "GDS", IdentifiedBasicEconomyBrand: ptr("A"), MinPriceInc: ptr(60.0)},
				{Airline: "X", Source: "NDC", IdentifiedBasicEconomyBrand: ptr("B"), MinPriceInc: ptr(60.0)},
			},
			wantBrand: "A", wantPrice: ptr(60.0), wantSource: "GDS",
		},
		{
			name: "rows without price are passed over",
			rows: []domain.BrandDetection{
				{Airline: "X", Source: "GDS", IdentifiedBasicEconomyBrand: ptr("A")},
				{Airline: "X", Source: "NDC", MinPriceInc: ptr(70.0)},
			},
			wantBrand: domain.NotIdentified, wantPrice: ptr(70.0), wantSource: "NDC",
		},
		{
			name: "no prices uses the first row",
			rows: []domain.BrandDetection{
				{Airline: "X", Source: "WEB", IdentifiedBasicEconomyBrand: ptr("A")},
				{Airline: "X", Source: "NDC"},
			},
			wantBrand: "A", wantSource: "WEB",
		},
		{
			name:      "no rows",
			wantBrand: domain.NotAvailable, wantSource: domain.NotAvailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			brand, price, source := LowestPriced(tt.rows)
			assert.Equal(t, tt.wantBrand, brand)
			assert.Equal(t, tt.wantPrice, price)
			assert.Equal(t, tt.wantSource, source)
		})
	}
}

func TestApplyQuery(t *testing.T) {
	rows := []domain.ComparisonRow{
		{Airline: "AA", AirlineLevelODs: 250, SourceLevelODs: 120, DetectedPrice: ptr(99.0)},
		{Airline: "BA", AirlineLevelODs: 70, SourceLevelODs: 20},
		{Airline: "DL", AirlineLevelODs: 500, DetectedPrice: ptr(150.0)},
		{Airline: "F9", DetectedPrice: ptr(45.0)},
		{Airline: "UA", SourceLevelODs: 15},
	}

	tests := []struct {
		name  string
		query domain.ComparisonQuery
		want  []string
	}{
		{
			name:  "default",
			query: domain.DefaultComparisonQuery(),
			want:  []string{"AA", "BA", "DL", "F9", "UA"},
		},
		{
			name:  "airline descending",
			query: domain.ComparisonQuery{ShowAll: true, SortBy: domain.CmpAirline},
			want:  []string{"UA", "F9", "DL", "BA", "AA"},
		},
		{
			name:  "airline level volume descending",
			query: domain.ComparisonQuery{ShowAll: true, SortBy: domain.CmpAirlineLevelODs},
			want:  []string{"DL", "AA", "BA", "F9", "UA"},
		},
		{
			name:  "source level volume ascending is stable",
			query: domain.ComparisonQuery{ShowAll: true, SortBy: domain.CmpSourceLevelODs, Ascending: true},
			want:  []string{"DL", "F9", "UA", "BA", "AA"},
		},
		{
			name:  "price ascending puts missing last",
			query: domain.ComparisonQuery{ShowAll: true, SortBy: domain.CmpDetectedPrice, Ascending: true},
			want:  []string{"F9", "AA", "DL", "BA", "UA"},
		},
		{
			name:  "price descending puts missing last",
			query: domain.ComparisonQuery{ShowAll: true, SortBy: domain.CmpDetectedPrice},
			want:  []string{"DL", "AA", "F9", "BA", "UA"},
		},
		{
			name:  "selected airlines",
			query: domain.ComparisonQuery{Airlines: []string{"UA", "AA", "ZZ"}, SortBy: domain.CmpAirline, Ascending: true},
			want:  []string{"AA", "UA"},
		},
		{
			name:  "no sort keeps universe order",
			query: domain.ComparisonQuery{Airlines: []string{"UA", "AA"}},
			want:  []string{"AA", "UA"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyQuery(rows, tt.query)
			names := make([]string, len(got))
			for i, r := range got {
				names[i] = r.Airline
			}
			assert.Equal(t, tt.want, names)
		})
	}

	assert.Equal(t, "AA", rows[0].Airline, "input is not reordered")
}

func TestDefaultSelection(t *testing.T) {
	rows := make([]domain.ComparisonRow, 14)
	for i := range rows {
		rows[i].Airline = fmt.Sprintf("A%02d", i)
	}

	selected := DefaultSelection(rows)
	require.Len(t, selected, DefaultSelectionSize)
	assert.Equal(t, "A00", selected[0])
	assert.Equal(t, "A09", selected[9])

	got := ApplyQuery(rows, domain.ComparisonQuery{})
	assert.Len(t, got, DefaultSelectionSize)

	assert.Len(t, DefaultSelection(rows[:3]), 3)
}
