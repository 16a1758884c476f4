package dataprocessing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teozeng1205/brands-compare/internal/shared/testutil"
	"github.com/teozeng1205/brands-compare/pkg/contracts/domain"
)

func TestSummarizerOverview(t *testing.T) {
	ds := loadFixtures(t)
	logger, handler := testutil.NewTestLogger(t)

	ov := NewSummarizer(logger, nil).Overview(context.Background(), ds)

	t.Run("headline", func(t *testing.T) {
		assert.Equal(t, domain.HeadlineMetrics{
			AirlineLevelCarriers: 3,
			SourceLevelCarriers:  3,
			DetectionAirlines:    3,
			TotalODs:             990,
			TotalODsDisplay:      "990",
		}, ov.Headline)
	})

	t.Run("airline level", func(t *testing.T) {
		assert.Equal(t, []domain.GroupTotal{
			{Key: "DL", Total: 500},
			{Key: "AA", Total: 390},
			{Key: "BA", Total: 100},
		}, ov.AirlineLevel.TopCarriers)
		assert.Equal(t, []string{"Basic", "Main Cabin", "Basic Economy", "Unknown", "First", "Economy Light"},
			keys(ov.AirlineLevel.TopFareFamilies))
	})

	t.Run("source level", func(t *testing.T) {
		dist := ov.SourceLevel.SourceDistribution
		require.Len(t, dist, 3)
		assert.Equal(t, "GDS", dist[0].Key)
		assert.Equal(t, int64(160), dist[0].Total)
		assert.InDelta(t, 160.0/255.0, dist[0].Share, 1e-9)
		assert.Equal(t, "Unknown", dist[2].Key)

		assert.Equal(t, []domain.GroupTotal{
			{Key: "AA - GDS", Total: 160},
			{Key: "AA - NDC", Total: 60},
			{Key: "BA - NDC", Total: 20},
			{Key: "UA - Unknown", Total: 15},
		}, ov.SourceLevel.TopCarrierSources)
	})

	t.Run("detections", func(t *testing.T) {
		d := ov.Detections
		assert.Equal(t, 5, d.Records)
		assert.InDelta(t, 80.0, d.IdentificationRate, 1e-9)
		assert.InDelta(t, 1.75, d.AvgBrandsPerRecord, 1e-9)
		assert.InDelta(t, 90.875, d.AvgMinPrice, 1e-9)

		h := d.PriceDistribution
		assert.InDelta(t, 117.275, h.Cutoff, 1e-9)
		assert.Equal(t, 3, h.Included)
		assert.Equal(t, 1, h.Excluded)
		require.Len(t, h.Bins, PriceHistogramBins)
		assert.Equal(t, 1, h.Bins[0].Count)
		assert.Equal(t, 2, h.Bins[PriceHistogramBins-1].Count)
	})

	testutil.AssertNoErrors(t, handler)
}

func TestSummarizerEmptyDatasets(t *testing.T) {
	ov := NewSummarizer(nil, nil).Overview(context.Background(), &domain.Datasets{})

	assert.Zero(t, ov.Headline.TotalODs)
	assert.Equal(t, "0", ov.Headline.TotalODsDisplay)
	assert.Empty(t, ov.AirlineLevel.TopCarriers)
	assert.Zero(t, ov.Detections.IdentificationRate)
	assert.Empty(t, ov.Detections.PriceDistribution.Bins)
}

func TestFormatCount(t *testing.T) {
	s := NewSummarizer(nil, nil)
	assert.Equal(t, "990", s.FormatCount(990))
	assert.Equal(t, "1,234,567", s.FormatCount(1234567))
}

func TestSumByCarrierSourceTopN(t *testing.T) {
	rows := make([]domain.SourceFareFamily, 0, 20)
	for i := 0; i < 20; i++ {
		rows = append(rows, domain.SourceFareFamily{
			Carrier: string(rune('A' + i)), Source: "GDS", OutboundFareFamily: "Basic", ODs: int64(i),
		})
	}
	top := TopN(sumByCarrierSource(rows), TopCarrierSources)
	require.Len(t, top, TopCarrierSources)
	assert.Equal(t, "T - GDS", top[0].Key)
	assert.Equal(t, int64(19), top[0].Total)
}
