package core

import "math"

// Clamp limits v to the closed interval spanned by lo and hi. The bounds may
// be given in either order.
func Clamp(v, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}

	return math.Min(math.Max(v, lo), hi)
}

// IsFinite reports whether v is neither NaN nor Inf.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// denormalFloor is the magnitude below which detector state is snapped to 0.
const denormalFloor = 1e-30

// FlushDenormals snaps values smaller than 1e-30 in magnitude to zero so
// decaying envelopes do not fall into the subnormal range.
func FlushDenormals(x float64) float64 {
	if math.Abs(x) < denormalFloor {
		return 0
	}

	return x
}

// TimeConstant returns the one-pole smoothing coefficient that moves a
// follower 1-1/e of the way to its target in timeMs. A non-positive time or
// rate yields 0, an instantaneous response.
func TimeConstant(timeMs, sampleRate float64) float64 {
	if !(timeMs > 0) || !(sampleRate > 0) {
		return 0
	}

	samples := timeMs * sampleRate / 1000

	return math.Exp(-1 / samples)
}
