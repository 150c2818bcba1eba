package features

import (
	"math"
	"testing"
)

func TestOlsSlopeZeroFilledCounts(t *testing.T) {
	// S7: window of 7 days, events only on day 1 and day 7, counts
	// [3,0,0,0,0,0,5] over x=0..6. The closed-form OLS slope for this
	// series is 6/28 = 3/14 ≈ 0.2143 per day — verified against the
	// original's sklearn LinearRegression fit on the same series.
	got := olsSlope([]float64{3, 0, 0, 0, 0, 0, 5})
	want := 3.0 / 14.0
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("olsSlope = %v, want %v", got, want)
	}
}

func TestOlsSlopeConstantSeriesIsZero(t *testing.T) {
	if got := olsSlope([]float64{2, 2, 2, 2}); got != 0 {
		t.Fatalf("olsSlope of constant series = %v, want 0", got)
	}
}

func TestPopStdDevMatchesPopulationFormula(t *testing.T) {
	// mean=2, deviations [-1,0,1] -> sumSq=2, /3 -> sqrt(0.6667)
	got := popStdDev([]float64{1, 2, 3})
	want := math.Sqrt(2.0 / 3.0)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("popStdDev = %v, want %v", got, want)
	}
}

func TestPopStdDevSingleValueIsZero(t *testing.T) {
	if got := popStdDev([]float64{5}); got != 0 {
		t.Fatalf("popStdDev of single value = %v, want 0", got)
	}
}

func TestMeanEmptyIsZero(t *testing.T) {
	if got := mean(nil); got != 0 {
		t.Fatalf("mean(nil) = %v, want 0", got)
	}
}

func TestOlsSlopeOverYearsHandlesGaps(t *testing.T) {
	// Years skip 2021: values rise 10 -> 20 -> 30 over 2019, 2020, 2022.
	got := olsSlopeOverYears([]int{2019, 2020, 2022}, []float64{10, 20, 30})
	if got <= 0 {
		t.Fatalf("olsSlopeOverYears = %v, want positive trend", got)
	}
}
