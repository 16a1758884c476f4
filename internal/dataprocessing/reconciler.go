package dataprocessing

import (
	"context"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/teozeng1205/brands-compare/internal/infrastructure"
	"github.com/teozeng1205/brands-compare/pkg/contracts/domain"
)

// DefaultSelectionSize is how many airlines are preselected when not showing all
const DefaultSelectionSize = 10

// Reconciler builds the per-airline lowest brand comparison
type Reconciler struct {
	logger *slog.Logger
	tracer trace.Tracer
}

// NewReconciler creates a reconciler. A nil telemetry records nothing.
func NewReconciler(logger *slog.Logger, tel *infrastructure.Telemetry) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	if tel == nil {
		tel = infrastructure.NoopTelemetry(logger)
	}
	return &Reconciler{
		logger: infrastructure.WithComponent(logger, "reconciler"),
		tracer: tel.Tracer,
	}
}

// Universe is the sorted union of carriers and airlines across the three datasets
func Universe(ds *domain.Datasets) []string {
	all := Carriers(ds.AirlineLevel)
	all = append(all, SourceCarriers(ds.SourceLevel)...)
	all = append(all, Airlines(ds.Detections)...)
	return Distinct(all)
}

// Reconcile returns one row per airline of the universe, in universe order
func (r *Reconciler) Reconcile(ctx context.Context, ds *domain.Datasets) []domain.ComparisonRow {
	ctx, span := r.tracer.Start(ctx, "dataprocessing.Reconcile")
	defer span.End()

	universe := Universe(ds)

	airlineRows := groupRows(ds.AirlineLevel.Records(), func(x domain.AirlineFareFamily) string { return x.Carrier })
	sourceRows := groupRows(ds.SourceLevel.Records(), func(x domain.SourceFareFamily) string { return x.Carrier })
	detectionRows := groupRows(ds.Detections.Records(), func(x domain.BrandDetection) string { return x.Airline })

	rows := make([]domain.ComparisonRow, len(universe))
	for i, airline := range universe {
		row := domain.ComparisonRow{Airline: airline}
		row.AirlineLevelBrand, row.AirlineLevelODs = DominantFareFamily(airlineRows[airline],
			func(x domain.AirlineFareFamily) (string, int64) { return x.OutboundFareFamily, x.ODs })
		row.SourceLevelBrand, row.SourceLevelODs = DominantFareFamily(sourceRows[airline],
			func(x domain.SourceFareFamily) (string, int64) { return x.OutboundFareFamily, x.ODs })
		row.DetectedBrand, row.DetectedPrice, row.DetectedSource = LowestPriced(detectionRows[airline])
		rows[i] = row
	}

	span.SetAttributes(attribute.Int("airlines", len(rows)))
	r.logger.DebugContext(ctx, "comparison reconciled", slog.Int("airlines", len(rows)))
	return rows
}

// DominantFareFamily sums volume per fare family and returns the family with the
// largest total. Families are compared in lexicographic order and the first
// maximum wins. No rows gives ("N/A", 0).
func DominantFareFamily[T any](rows []T, get func(T) (string, int64)) (string, int64) {
	best, ok := ArgMax(SumBy(rows,
		func(x T) string { f, _ := get(x); return f },
		func(x T) int64 { _, n := get(x); return n }))
	if !ok {
		return domain.NotAvailable, 0
	}
	return best.Key, best.Total
}

// LowestPriced picks the observation with the smallest minimum price. The first
// row wins ties and rows without a price are passed over; when no row has a
// price the first row is used. A missing brand reads "Not Identified" and no
// rows gives ("N/A", nil, "N/A").
func LowestPriced(rows []domain.BrandDetection) (brand string, price *float64, source string) {
	if len(rows) == 0 {
		return domain.NotAvailable, nil, domain.NotAvailable
	}

	pick := -1
	for i, r := range rows {
		if r.MinPriceInc == nil {
			continue
		}
		if pick < 0 || *r.MinPriceInc < *rows[pick].MinPriceInc {
			pick = i
		}
	}
	if pick < 0 {
		pick = 0
	}

	chosen := rows[pick]
	brand = domain.NotIdentified
	if chosen.IdentifiedBasicEconomyBrand != nil {
		brand = *chosen.IdentifiedBasicEconomyBrand
	}
	if chosen.MinPriceInc != nil {
		p := *chosen.MinPriceInc
		price = &p
	}
	return brand, price, chosen.Source
}

// ApplyQuery selects and orders an assembled comparison. Without ShowAll only
// the requested airlines are kept, or the first DefaultSelectionSize airlines
// when none are requested. Sorting is stable and puts missing prices last in
// either direction.
func ApplyQuery(rows []domain.ComparisonRow, q domain.ComparisonQuery) []domain.ComparisonRow {
	out := make([]domain.ComparisonRow, 0, len(rows))
	if q.ShowAll {
		out = append(out, rows...)
	} else {
		selected := q.Airlines
		if len(selected) == 0 {
			selected = DefaultSelection(rows)
		}
		keep := make(map[string]struct{}, len(selected))
		for _, a := range selected {
			keep[a] = struct{}{}
		}
		for _, r := range rows {
			if _, ok := keep[r.Airline]; ok {
				out = append(out, r)
			}
		}
	}

	if q.SortBy != "" {
		sortComparison(out, q.SortBy, q.Ascending)
	}
	return out
}

// DefaultSelection returns the first DefaultSelectionSize airlines
func DefaultSelection(rows []domain.ComparisonRow) []string {
	n := min(len(rows), DefaultSelectionSize)
	out := make([]string, n)
	for i := range out {
		out[i] = rows[i].Airline
	}
	return out
}

func sortComparison(rows []domain.ComparisonRow, by string, ascending bool) {
	var less func(a, b domain.ComparisonRow) bool
	switch by {
	case domain.CmpAirline:
		less = func(a, b domain.ComparisonRow) bool { return a.Airline < b.Airline }
	case domain.CmpAirlineLevelODs:
		less = func(a, b domain.ComparisonRow) bool { return a.AirlineLevelODs < b.AirlineLevelODs }
	case domain.CmpSourceLevelODs:
		less = func(a, b domain.ComparisonRow) bool { return a.SourceLevelODs < b.SourceLevelODs }
	case domain.CmpDetectedPrice:
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := rows[i].DetectedPrice, rows[j].DetectedPrice
			switch {
			case a == nil:
				return false
			case b == nil:
				return true
			case ascending:
				return *a < *b
			default:
				return *a > *b
			}
		})
		return
	default:
		return
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if ascending {
			return less(rows[i], rows[j])
		}
		return less(rows[j], rows[i])
	})
}

func groupRows[T any](rows []T, key func(T) string) map[string][]T {
	out := make(map[string][]T)
	for _, r := range rows {
		k := key(r)
		out[k] = append(out[k], r)
	}
	return out
}
