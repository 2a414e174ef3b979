package testutil

import (
	"math"
	"testing"
)

// Peak returns the largest absolute sample.
func Peak(buf []float64) float64 {
	peak := 0.0
	for _, v := range buf {
		peak = math.Max(peak, math.Abs(v))
	}
	return peak
}

// PeakDB returns the peak level in dBFS. Silence is -Inf.
func PeakDB(buf []float64) float64 {
	return 20 * math.Log10(Peak(buf))
}

// RMSDB returns the RMS level in dBFS. Silence is -Inf.
func RMSDB(buf []float64) float64 {
	sum := 0.0
	for _, v := range buf {
		sum += v * v
	}
	return 10 * math.Log10(sum/float64(len(buf)))
}

// RequireFinite fails t if any sample is NaN or Inf.
func RequireFinite(t *testing.T, buf []float64) {
	t.Helper()
	for i, v := range buf {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}
