package aggregate

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Count is one (category, count) pair of a group-count.
type Count struct {
	Category string
	Count    int
}

// GroupCount groups rows by category and counts the rows whose target is
// present. Rows with a missing category (ok == false) are dropped, as are
// groups whose count ends up zero. Pairs are ordered by count descending, then
// category ascending.
func GroupCount[R any](rows []R, category func(R) (string, bool), present func(R) bool) []Count {
	counts := make(map[string]int)
	for _, r := range rows {
		c, ok := category(r)
		if !ok {
			continue
		}
		if present(r) {
			counts[c]++
		}
	}
	out := make([]Count, 0, len(counts))
	for c, n := range counts {
		if n > 0 {
			out = append(out, Count{Category: c, Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// countTable renders group-count pairs as a two column table.
func countTable(categoryColumn, countColumn string, counts []Count) *Table {
	t := NewTable(categoryColumn, countColumn)
	for _, c := range counts {
		t.Append(c.Category, c.Count)
	}
	return t
}

func nonBlank(s string) (string, bool) { return s, s != "" }

// present drops missing values.
func present(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// allMissing reports whether no value is present.
func allMissing(values []float64) bool {
	for _, v := range values {
		if !math.IsNaN(v) {
			return false
		}
	}
	return true
}

// Sum adds the present values; NaN when none is present.
func Sum(values []float64) float64 {
	p := present(values)
	if len(p) == 0 {
		return math.NaN()
	}
	return floats.Sum(p)
}

// Mean averages the present values; NaN when none is present.
func Mean(values []float64) float64 {
	p := present(values)
	if len(p) == 0 {
		return math.NaN()
	}
	return stat.Mean(p, nil)
}

// Summary is the five-number summary plus moments of a numeric column.
type Summary struct {
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
}

// Summarize describes the present values. All statistics are NaN when none is
// present; Std is NaN for a single value (sample deviation).
func Summarize(values []float64) Summary {
	p := present(values)
	nan := math.NaN()
	s := Summary{Count: len(p), Mean: nan, Std: nan, Min: nan, Q1: nan, Median: nan, Q3: nan, Max: nan}
	if len(p) == 0 {
		return s
	}
	sort.Float64s(p)
	s.Mean = stat.Mean(p, nil)
	if len(p) > 1 {
		s.Std = stat.StdDev(p, nil)
	}
	s.Min = p[0]
	s.Max = p[len(p)-1]
	s.Q1 = quantile(0.25, p)
	s.Median = quantile(0.5, p)
	s.Q3 = quantile(0.75, p)
	return s
}

// quantile interpolates linearly between the closest ranks of sorted; the
// median of an even count is the mean of the middle pair.
func quantile(p float64, sorted []float64) float64 {
	h := p * float64(len(sorted)-1)
	lo := int(math.Floor(h))
	if lo+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}
