package dataprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teozeng1205/brands-compare/pkg/contracts/domain"
)

type kv struct {
	k string
	v int64
}

func sumKV(rows []kv) []domain.GroupTotal {
	return SumBy(rows, func(r kv) string { return r.k }, func(r kv) int64 { return r.v })
}

func ptr[T any](v T) *T { return &v }

func TestSumByAndArgMax(t *testing.T) {
	tests := []struct {
		name     string
		rows     []kv
		wantKey  string
		wantSum  int64
		wantNone bool
	}{
		{
			name:    "largest group",
			rows:    []kv{{"A", 100}, {"B", 200}, {"C", 40}, {"B", 50}},
			wantKey: "B",
			wantSum: 250,
		},
		{
			name:    "tie goes to the first key in order",
			rows:    []kv{{"Main", 10}, {"Basic", 10}},
			wantKey: "Basic",
			wantSum: 10,
		},
		{
			name:    "all zero",
			rows:    []kv{{"Z", 0}, {"Y", 0}},
			wantKey: "Y",
			wantSum: 0,
		},
		{name: "no rows", wantNone: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			best, ok := ArgMax(sumKV(tt.rows))
			if tt.wantNone {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.wantKey, best.Key)
			assert.Equal(t, tt.wantSum, best.Total)
		})
	}
}

func TestSumByOrder(t *testing.T) {
	got := sumKV([]kv{{"c", 1}, {"a", 2}, {"b", 3}, {"a", 4}})
	assert.Equal(t, []domain.GroupTotal{{Key: "a", Total: 6}, {Key: "b", Total: 3}, {Key: "c", Total: 1}}, got)
}

func TestTopN(t *testing.T) {
	groups := []domain.GroupTotal{{Key: "a", Total: 5}, {Key: "b", Total: 9}, {Key: "c", Total: 5}, {Key: "d", Total: 1}}

	assert.Equal(t, []domain.GroupTotal{{Key: "b", Total: 9}, {Key: "a", Total: 5}}, TopN(groups, 2))
	assert.Equal(t, []string{"b", "a", "c", "d"}, keys(TopN(groups, 0)))
	assert.Equal(t, []string{"b", "a", "c", "d"}, keys(TopN(groups, 10)))
	assert.Equal(t, "a", groups[0].Key, "input is not reordered")
}

func keys(groups []domain.GroupTotal) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Key
	}
	return out
}

func TestDistribution(t *testing.T) {
	got := Distribution([]domain.GroupTotal{{Key: "GDS", Total: 25}, {Key: "NDC", Total: 75}})
	require.Len(t, got, 2)
	assert.Equal(t, "NDC", got[0].Key)
	assert.InDelta(t, 0.75, got[0].Share, 1e-9)
	assert.InDelta(t, 0.25, got[1].Share, 1e-9)

	zero := Distribution([]domain.GroupTotal{{Key: "x", Total: 0}})
	assert.Equal(t, 0.0, zero[0].Share)
}

func TestIdentificationRate(t *testing.T) {
	brand := ptr("Basic")

	values := make([]*string, 100)
	for i := 0; i < 37; i++ {
		values[i] = brand
	}
	assert.InDelta(t, 37.0, IdentificationRate(values), 1e-9)
	assert.Equal(t, 0.0, IdentificationRate(nil))
	assert.Equal(t, 100.0, IdentificationRate([]*string{brand}))
	assert.Equal(t, 0.0, IdentificationRate([]*string{nil, nil}))
}

func TestMean(t *testing.T) {
	m, ok := Mean([]*float64{ptr(10.0), nil, ptr(20.0)})
	require.True(t, ok)
	assert.Equal(t, 15.0, m)

	_, ok = Mean([]*float64{nil})
	assert.False(t, ok)
}

func TestTokenCount(t *testing.T) {
	assert.Equal(t, 1, TokenCount("Basic"))
	assert.Equal(t, 3, TokenCount("a,b,c"))
	assert.Equal(t, 3, TokenCount("a,,b"))
	assert.Equal(t, 2, TokenCount("a,"))
	assert.Equal(t, 1, TokenCount(""))

	m, ok := MeanTokenCount([]*string{ptr("a,b"), nil, ptr("a,b,c,d")})
	require.True(t, ok)
	assert.Equal(t, 3.0, m)

	_, ok = MeanTokenCount(nil)
	assert.False(t, ok)
}

func TestQuantile(t *testing.T) {
	values := []float64{4, 1, 3, 2, 5}
	assert.Equal(t, 1.0, Quantile(values, 0))
	assert.Equal(t, 3.0, Quantile(values, 0.5))
	assert.Equal(t, 5.0, Quantile(values, 1))
	assert.InDelta(t, 4.8, Quantile(values, 0.95), 1e-9)
	assert.Equal(t, []float64{4, 1, 3, 2, 5}, values, "input is not sorted in place")
	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
}

func TestHistogram(t *testing.T) {
	t.Run("bins values below the cutoff", func(t *testing.T) {
		values := make([]*float64, 0, 101)
		for i := 0; i <= 100; i++ {
			values = append(values, ptr(float64(i)))
		}
		values = append(values, nil)

		h := Histogram(values, 0.95, 30)
		assert.Equal(t, 95.0, h.Cutoff)
		assert.Equal(t, 95, h.Included)
		assert.Equal(t, 6, h.Excluded)
		require.Len(t, h.Bins, 30)
		assert.Equal(t, 0.0, h.Bins[0].Lower)
		assert.Equal(t, 94.0, h.Bins[29].Upper)

		total := 0
		for _, b := range h.Bins {
			total += b.Count
		}
		assert.Equal(t, h.Included, total)
	})

	t.Run("single value range", func(t *testing.T) {
		h := Histogram([]*float64{ptr(5.0), ptr(5.0), ptr(9.0)}, 0.95, 30)
		require.Len(t, h.Bins, 1)
		assert.Equal(t, 2, h.Bins[0].Count)
		assert.Equal(t, 1, h.Excluded)
	})

	t.Run("no prices", func(t *testing.T) {
		h := Histogram([]*float64{nil}, 0.95, 30)
		assert.Empty(t, h.Bins)
		assert.Zero(t, h.Included)
	})
}
