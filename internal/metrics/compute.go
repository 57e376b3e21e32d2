// Package metrics aggregates enriched picks into per-bucket performance
// statistics and provides the shared numeric helpers.
package metrics

import (
	"math"
	"sort"
)

// Mean calculates the arithmetic mean. Zero for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Median calculates the median: the middle value for odd counts, the mean
// of the two middle values for even counts. Zero for an empty slice.
func Median(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, xs)
	sort.Float64s(sorted)

	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// WinRate calculates the share of strictly positive values.
func WinRate(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	wins := 0
	for _, x := range xs {
		if x > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(xs))
}

// StddevPopulation calculates population standard deviation (n denominator).
func StddevPopulation(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	mean := Mean(xs)
	sumSq := 0.0
	for _, x := range xs {
		diff := x - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n))
}

// StddevSample calculates sample standard deviation (n-1 denominator).
func StddevSample(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	mean := Mean(xs)
	sumSq := 0.0
	for _, x := range xs {
		diff := x - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// Correlation calculates the Pearson correlation of two equal-length
// samples. Zero when lengths differ, fewer than two points, or either
// sample is constant.
func Correlation(xs, ys []float64) float64 {
	n := len(xs)
	if n != len(ys) || n < 2 {
		return 0
	}

	mx, my := Mean(xs), Mean(ys)
	var cov, vx, vy float64
	for i := 0; i < n; i++ {
		dx := xs[i] - mx
		dy := ys[i] - my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0
	}
	return cov / math.Sqrt(vx*vy)
}

// Percentile uses linear interpolation. sorted must be pre-sorted ASC,
// p in [0, 1].
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
