package dataprocessing

import (
	"math"
	"sort"
	"strings"

	"github.com/teozeng1205/brands-compare/pkg/contracts/domain"
)

// SumBy group-sums value by key. Groups come back in ascending key order.
func SumBy[T any](rows []T, key func(T) string, value func(T) int64) []domain.GroupTotal {
	totals := make(map[string]int64)
	for _, r := range rows {
		totals[key(r)] += value(r)
	}

	out := make([]domain.GroupTotal, 0, len(totals))
	for k, v := range totals {
		out = append(out, domain.GroupTotal{Key: k, Total: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// TopN orders groups by total descending, keeping the incoming order among
// equal totals, and returns at most n of them. n <= 0 returns every group.
func TopN(groups []domain.GroupTotal, n int) []domain.GroupTotal {
	out := make([]domain.GroupTotal, len(groups))
	copy(out, groups)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Distribution orders groups descending and attaches each group's share of the total
func Distribution(groups []domain.GroupTotal) []domain.Share {
	ranked := TopN(groups, 0)

	var total int64
	for _, g := range ranked {
		total += g.Total
	}

	out := make([]domain.Share, len(ranked))
	for i, g := range ranked {
		share := 0.0
		if total > 0 {
			share = float64(g.Total) / float64(total)
		}
		out[i] = domain.Share{Key: g.Key, Total: g.Total, Share: share}
	}
	return out
}

// ArgMax returns the first group with the largest total
func ArgMax(groups []domain.GroupTotal) (domain.GroupTotal, bool) {
	if len(groups) == 0 {
		return domain.GroupTotal{}, false
	}
	best := groups[0]
	for _, g := range groups[1:] {
		if g.Total > best.Total {
			best = g
		}
	}
	return best, true
}

// IdentificationRate is the percentage of values present. Zero rows give zero.
func IdentificationRate(values []*string) float64 {
	if len(values) == 0 {
		return 0
	}
	present := 0
	for _, v := range values {
		if v != nil {
			present++
		}
	}
	return float64(present) / float64(len(values)) * 100
}

// Present drops missing values
func Present(values []*float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// Mean averages the present values; ok is false when there are none
func Mean(values []*float64) (mean float64, ok bool) {
	present := Present(values)
	if len(present) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range present {
		sum += v
	}
	return sum / float64(len(present)), true
}

// TokenCount counts the comma-separated tokens of s. Empty tokens count, so
// "a,,b" has three and "a," has two.
func TokenCount(s string) int {
	return strings.Count(s, ",") + 1
}

// MeanTokenCount averages TokenCount over the present values
func MeanTokenCount(values []*string) (mean float64, ok bool) {
	n, sum := 0, 0
	for _, v := range values {
		if v == nil {
			continue
		}
		n++
		sum += TokenCount(*v)
	}
	if n == 0 {
		return 0, false
	}
	return float64(sum) / float64(n), true
}

// Quantile returns the q-th quantile of values using linear interpolation
// between closest ranks. values need not be sorted; NaN is returned for none.
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	switch {
	case q <= 0:
		return sorted[0]
	case q >= 1:
		return sorted[len(sorted)-1]
	}

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Histogram bins the present values lying strictly below the q-th quantile
// into bins equal-width intervals spanning the kept minimum and maximum.
// Each bin is half-open except the last, which includes the maximum.
func Histogram(values []*float64, q float64, bins int) domain.Histogram {
	present := Present(values)
	h := domain.Histogram{}
	if len(present) == 0 || bins <= 0 {
		return h
	}

	h.Cutoff = Quantile(present, q)

	kept := make([]float64, 0, len(present))
	for _, v := range present {
		if v < h.Cutoff {
			kept = append(kept, v)
		}
	}
	h.Included = len(kept)
	h.Excluded = len(present) - len(kept)
	if len(kept) == 0 {
		return h
	}

	lo, hi := kept[0], kept[0]
	for _, v := range kept[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	if lo == hi {
		h.Bins = []domain.HistogramBin{{Lower: lo, Upper: hi, Count: len(kept)}}
		return h
	}

	width := (hi - lo) / float64(bins)
	h.Bins = make([]domain.HistogramBin, bins)
	for i := range h.Bins {
		h.Bins[i].Lower = lo + float64(i)*width
		h.Bins[i].Upper = lo + float64(i+1)*width
	}
	h.Bins[bins-1].Upper = hi

	for _, v := range kept {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		h.Bins[i].Count++
	}
	return h
}
