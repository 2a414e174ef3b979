package core

import "math"

// SilenceDB is the floor reported for digital silence by meters and level
// detectors that need a finite value.
const SilenceDB = -120.0

// DBToLinear converts a level in dB to an amplitude factor.
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts an amplitude factor to dB. Zero maps to -Inf and
// negative input to NaN.
func LinearToDB(amp float64) float64 {
	return logLevel(amp, 20)
}

// LinearPowerToDB converts a power (mean square) to dB. Zero maps to -Inf
// and negative input to NaN.
func LinearPowerToDB(power float64) float64 {
	return logLevel(power, 10)
}

// LevelDB is LinearToDB floored at SilenceDB. NaN and non-positive input
// report SilenceDB.
func LevelDB(amp float64) float64 {
	if !(amp > 0) {
		return SilenceDB
	}

	return math.Max(LinearToDB(amp), SilenceDB)
}

func logLevel(v, scale float64) float64 {
	switch {
	case v < 0:
		return math.NaN()
	case v == 0:
		return math.Inf(-1)
	default:
		return scale * math.Log10(v)
	}
}
