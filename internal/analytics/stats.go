package analytics

import (
	"math"
	"sort"
)

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// sampleStdDev is the n-1 denominator variant. Fewer than two samples have
// no dispersion to estimate, so the result is 0.
func sampleStdDev(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}

// sampleSkewness is the adjusted Fisher-Pearson coefficient
// n/((n-1)(n-2)) * sum(((x-mean)/s)^3). ok is false when n < 3 or the
// samples have zero dispersion.
func sampleSkewness(xs []float64) (value float64, ok bool) {
	n := len(xs)
	if n < 3 {
		return 0, false
	}
	s := sampleStdDev(xs)
	if s == 0 {
		return 0, false
	}
	m := mean(xs)
	var sum float64
	for _, x := range xs {
		z := (x - m) / s
		sum += z * z * z
	}
	factor := float64(n) / float64((n-1)*(n-2))
	return factor * sum, true
}

func normalPDF(x, mu, sigma float64) float64 {
	z := (x - mu) / sigma
	return math.Exp(-z*z/2) / (sigma * math.Sqrt(2*math.Pi))
}

func stdNormalCDF(z float64) float64 {
	return 0.5 * (1 + math.Erf(z/math.Sqrt2))
}

// linearRegression fits y = intercept + slope*x by ordinary least squares.
// The caller guarantees at least two distinct x values.
func linearRegression(xs, ys []float64) (slope, intercept float64) {
	mx := mean(xs)
	my := mean(ys)
	var num, den float64
	for i := range xs {
		dx := xs[i] - mx
		num += dx * (ys[i] - my)
		den += dx * dx
	}
	if den == 0 {
		return 0, my
	}
	slope = num / den
	intercept = my - slope*mx
	return slope, intercept
}

func roundTo(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
