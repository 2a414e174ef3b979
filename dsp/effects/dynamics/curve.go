package dynamics

import (
	"math"

	"github.com/cwbudde/algo-leveler/dsp/core"
)

// AGC limits shared by the steady-state curve and the time-domain processor.
const (
	// AGCSilenceFloorDB is the level at or below which the AGC holds its gain.
	AGCSilenceFloorDB = -60.0
	// AGCMinGain is the smallest linear gain the AGC applies (-20 dB).
	AGCMinGain = 0.1
)

// CompressDB returns the steady-state output level in dB of a compressor
// with threshold thresholdDB, ratio and knee width kneeDB for an input at
// inputDB.
//
// A ratio at or below 1 is the identity. A knee at or below 0 is a hard
// knee. Inside a soft knee the curve is the quadratic that joins the unity
// and ratio segments with matching slopes at both knee edges.
func CompressDB(inputDB, thresholdDB, ratio, kneeDB float64) float64 {
	if ratio <= 1 {
		return inputDB
	}

	if kneeDB <= 0 {
		if inputDB <= thresholdDB {
			return inputDB
		}
		return thresholdDB + (inputDB-thresholdDB)/ratio
	}

	kneeStart := thresholdDB - kneeDB/2
	kneeEnd := thresholdDB + kneeDB/2

	switch {
	case inputDB < kneeStart:
		return inputDB
	case inputDB > kneeEnd:
		return thresholdDB + (inputDB-thresholdDB)/ratio
	default:
		x := inputDB - kneeStart
		return inputDB + x*x*(1/ratio-1)/(2*kneeDB)
	}
}

// LimitDB returns the steady-state output of a brick-wall limiter: the input
// level, never above ceilingDB.
func LimitDB(inputDB, ceilingDB float64) float64 {
	return math.Min(inputDB, ceilingDB)
}

// AGCSteadyStateDB returns the level an AGC converges to for a sustained
// input at inputDB, aiming for targetDB with gain capped at maxGain (linear).
// Inputs at or below the silence floor pass unchanged.
func AGCSteadyStateDB(inputDB, targetDB, maxGain float64) float64 {
	if inputDB <= AGCSilenceFloorDB {
		return inputDB
	}

	gain := core.Clamp(core.DBToLinear(targetDB-inputDB), AGCMinGain, maxGain)

	return inputDB + core.LinearToDB(gain)
}
