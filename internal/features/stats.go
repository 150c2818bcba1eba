package features

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// mean wraps gonum's weighted mean with nil weights (plain arithmetic mean),
// the pack's natural numerical-stats dependency for this concern.
func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// popStdDev is the population standard deviation (divide by N, not N-1), as
// spec.md §4.4a's sentiment_volatility and §4.4b's _volatility both require.
// gonum's stat.StdDev applies Bessel's correction (N-1) for the sample
// estimator, so the population variant is computed directly here from
// stat.Mean.
func popStdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := stat.Mean(xs, nil)
	var sumSq float64
	for _, x := range xs {
		d := x - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)))
}

func maxOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

// olsSlope returns the least-squares slope of y against its index 0..n-1,
// the closed-form OLS used for event_trend_{w}d (spec.md §4.4a), grounded on
// Sergey-Bar-Alfred's intelligence.Forecaster.Forecast.
func olsSlope(y []float64) float64 {
	x := make([]float64, len(y))
	for i := range y {
		x[i] = float64(i)
	}
	return olsSlopeXY(x, y)
}

// olsSlopeOverYears is the same closed-form fit against actual calendar
// years rather than a dense index, for the economic _trend features
// (spec.md §4.4b), whose observations may skip years.
func olsSlopeOverYears(years []int, values []float64) float64 {
	x := make([]float64, len(years))
	for i, yr := range years {
		x[i] = float64(yr)
	}
	return olsSlopeXY(x, values)
}

func olsSlopeXY(x, y []float64) float64 {
	n := float64(len(y))
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumX2 float64
	for i, v := range y {
		sumX += x[i]
		sumY += v
		sumXY += x[i] * v
		sumX2 += x[i] * x[i]
	}
	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}
