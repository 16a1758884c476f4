package dataprocessing

import (
	"context"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/teozeng1205/brands-compare/internal/infrastructure"
	"github.com/teozeng1205/brands-compare/pkg/contracts/domain"
)

// Overview layout
const (
	TopCarriers          = 10
	TopFareFamilies      = 10
	TopCarrierSources    = 15
	PriceCutoffQuantile  = 0.95
	PriceHistogramBins   = 30
	CarrierSourceDivider = " - "
)

// Summarizer computes the overview page aggregates
type Summarizer struct {
	logger  *slog.Logger
	tracer  trace.Tracer
	printer *message.Printer
}

// NewSummarizer creates a summarizer. A nil telemetry records nothing.
func NewSummarizer(logger *slog.Logger, tel *infrastructure.Telemetry) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	if tel == nil {
		tel = infrastructure.NoopTelemetry(logger)
	}
	return &Summarizer{
		logger:  infrastructure.WithComponent(logger, "summarizer"),
		tracer:  tel.Tracer,
		printer: message.NewPrinter(language.English),
	}
}

// Overview assembles headline metrics and per-dataset summaries
func (s *Summarizer) Overview(ctx context.Context, ds *domain.Datasets) domain.Overview {
	ctx, span := s.tracer.Start(ctx, "dataprocessing.Overview")
	defer span.End()

	airline := ds.AirlineLevel.Records()
	source := ds.SourceLevel.Records()
	detections := ds.Detections.Records()

	var totalODs int64
	for _, r := range airline {
		totalODs += r.ODs
	}

	ov := domain.Overview{
		Headline: domain.HeadlineMetrics{
			AirlineLevelCarriers: len(Distinct(Carriers(ds.AirlineLevel))),
			SourceLevelCarriers:  len(Distinct(SourceCarriers(ds.SourceLevel))),
			DetectionAirlines:    len(Distinct(Airlines(ds.Detections))),
			TotalODs:             totalODs,
			TotalODsDisplay:      s.FormatCount(totalODs),
		},
		AirlineLevel: domain.AirlineLevelSummary{
			TopCarriers: TopN(SumBy(airline,
				func(r domain.AirlineFareFamily) string { return r.Carrier },
				func(r domain.AirlineFareFamily) int64 { return r.ODs }), TopCarriers),
			TopFareFamilies: TopN(SumBy(airline,
				func(r domain.AirlineFareFamily) string { return r.OutboundFareFamily },
				func(r domain.AirlineFareFamily) int64 { return r.ODs }), TopFareFamilies),
		},
		SourceLevel: domain.SourceLevelSummary{
			SourceDistribution: Distribution(SumBy(source,
				func(r domain.SourceFareFamily) string { return r.Source },
				func(r domain.SourceFareFamily) int64 { return r.ODs })),
			TopCarrierSources: TopN(sumByCarrierSource(source), TopCarrierSources),
		},
		Detections: s.detectionSummary(detections),
	}

	s.logger.DebugContext(ctx, "overview computed",
		slog.Int64("total_ods", totalODs),
		slog.Int("detection_records", len(detections)))

	return ov
}

// FormatCount renders n with thousands separators
func (s *Summarizer) FormatCount(n int64) string {
	return s.printer.Sprintf("%d", n)
}

func (s *Summarizer) detectionSummary(rows []domain.BrandDetection) domain.DetectionSummary {
	brands := make([]*string, len(rows))
	lists := make([]*string, len(rows))
	prices := make([]*float64, len(rows))
	for i, r := range rows {
		brands[i] = r.IdentifiedBasicEconomyBrand
		lists[i] = r.AllDetectedBrands
		prices[i] = r.MinPriceInc
	}

	avgBrands, _ := MeanTokenCount(lists)
	avgPrice, _ := Mean(prices)

	return domain.DetectionSummary{
		Records:            len(rows),
		IdentificationRate: IdentificationRate(brands),
		AvgBrandsPerRecord: avgBrands,
		AvgMinPrice:        avgPrice,
		PriceDistribution:  Histogram(prices, PriceCutoffQuantile, PriceHistogramBins),
	}
}

// sumByCarrierSource groups on the (carrier, source) pair, ordered by carrier
// then source, and labels each group "carrier - source"
func sumByCarrierSource(rows []domain.SourceFareFamily) []domain.GroupTotal {
	type pair struct{ carrier, source string }
	totals := make(map[pair]int64)
	var keys []pair
	for _, r := range rows {
		k := pair{r.Carrier, r.Source}
		if _, ok := totals[k]; !ok {
			keys = append(keys, k)
		}
		totals[k] += r.ODs
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].carrier != keys[j].carrier {
			return keys[i].carrier < keys[j].carrier
		}
		return keys[i].source < keys[j].source
	})

	out := make([]domain.GroupTotal, len(keys))
	for i, k := range keys {
		out[i] = domain.GroupTotal{Key: k.carrier + CarrierSourceDivider + k.source, Total: totals[k]}
	}
	return out
}
