package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Moments holds streaming summary statistics for one numeric column.
// NaN values are counted as missing and do not contribute.
type Moments struct {
	N       int
	Missing int
	Mean    float64
	Min     float64
	Max     float64
	m2      float64
}

// Describe computes moments over vals in a single pass using Welford's update.
func Describe(vals []float64) Moments {
	m := Moments{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, x := range vals {
		m.Add(x)
	}
	if m.N == 0 {
		m.Min, m.Max = 0, 0
	}
	return m
}

// Add folds x into the running moments.
func (m *Moments) Add(x float64) {
	if math.IsNaN(x) {
		m.Missing++
		return
	}
	if m.N == 0 {
		m.Min, m.Max = math.Inf(1), math.Inf(-1)
	}
	m.N++
	if x < m.Min {
		m.Min = x
	}
	if x > m.Max {
		m.Max = x
	}
	delta := x - m.Mean
	m.Mean += delta / float64(m.N)
	m.m2 += delta * (x - m.Mean)
}

// PopulationStd is the standard deviation with denominator N (ddof=0).
func (m Moments) PopulationStd() float64 {
	if m.N == 0 {
		return 0
	}
	return math.Sqrt(m.m2 / float64(m.N))
}

// SampleStd is the standard deviation with denominator N-1 (ddof=1).
func (m Moments) SampleStd() float64 {
	if m.N < 2 {
		return 0
	}
	return math.Sqrt(m.m2 / float64(m.N-1))
}

// PopMeanStd returns the mean and population standard deviation of the
// non-NaN values in vals, and how many there were.
func PopMeanStd(vals []float64) (mean, std float64, n int) {
	clean := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return 0, 0, 0
	}
	mean, std = stat.PopMeanStdDev(clean, nil)
	return mean, std, len(clean)
}

// Sorted returns a sorted copy of vals with NaN values removed.
func Sorted(vals []float64) []float64 {
	cp := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			cp = append(cp, v)
		}
	}
	sort.Float64s(cp)
	return cp
}

// Quantile returns the q-th quantile (0..1) of an already sorted slice using
// linear interpolation between closest ranks.
func Quantile(sorted []float64, q float64) float64 {
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

// MedianMAD computes the median and median absolute deviation of vals.
func MedianMAD(vals []float64) (median, mad float64) {
	cp := Sorted(vals)
	if len(cp) == 0 {
		return 0, 0
	}
	median = Quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = Quantile(dev, 0.5)
	return
}
