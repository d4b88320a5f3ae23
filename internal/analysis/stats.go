package analysis

import (
	"math"
	"sort"
)

// SafeDiv returns a/b, or 0 when b is 0.
func SafeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// Mean returns the arithmetic mean, 0 for no values.
func Mean(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return SafeDiv(sum, float64(len(vals)))
}

// TopN returns at most n items ordered by value descending. Equal values keep
// their input order.
func TopN[T any](items []T, n int, value func(T) float64) []T {
	if n <= 0 || len(items) == 0 {
		return nil
	}
	out := make([]T, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool { return value(out[i]) > value(out[j]) })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// NumSummary describes one numeric column.
type NumSummary struct {
	Count          int
	Min, Max, Mean float64
	Std            float64
	// Outliers counts values with robust |z| (MAD based) above the threshold.
	Outliers         int
	OutlierThreshold float64
}

// Summarize computes count, range, mean and sample std with Welford's update,
// plus a MAD outlier count when there are at least 8 values.
func Summarize(vals []float64, outlierThreshold float64) NumSummary {
	s := NumSummary{Min: math.Inf(1), Max: math.Inf(-1)}
	var mean, m2 float64
	for _, x := range vals {
		if math.IsNaN(x) {
			continue
		}
		s.Count++
		if x < s.Min {
			s.Min = x
		}
		if x > s.Max {
			s.Max = x
		}
		delta := x - mean
		mean += delta / float64(s.Count)
		m2 += delta * (x - mean)
	}
	if s.Count == 0 {
		return NumSummary{}
	}
	s.Mean = mean
	if s.Count > 1 {
		s.Std = math.Sqrt(m2 / float64(s.Count-1))
	}
	if len(vals) >= 8 {
		thr := outlierThreshold
		if thr <= 0 {
			thr = 3.5
		}
		median, mad := medianMAD(vals)
		if mad > 0 {
			for _, v := range vals {
				if math.Abs(0.6745*(v-median)/mad) > thr {
					s.Outliers++
				}
			}
		}
		s.OutlierThreshold = thr
	}
	return s
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
