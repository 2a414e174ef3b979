package effectchain

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-leveler/dsp/core"
	"github.com/cwbudde/algo-leveler/dsp/effects/dynamics"
	"github.com/cwbudde/algo-leveler/dsp/effects/eq"
	"github.com/cwbudde/algo-leveler/dsp/filter/crossover"
)

// sineCrestDB is the peak to RMS ratio of a sine in dB.
const sineCrestDB = 3.010299956639812

// TransferDB returns the steady-state output peak level of the graph Plan
// wires for s under c, for a sustained sine of frequency toneHz at peak
// level inputDB.
//
// Each stage contributes its static curve: compressor and limiter curves on
// the peak level, gate and AGC decisions on the RMS level, filter
// magnitudes at toneHz. The suppressor is treated as transparent and the
// noise bed is ignored. A closed gate yields core.SilenceDB.
func TransferDB(s Settings, c Conditions, inputDB, toneHz float64) (float64, error) {
	t := Plan(s, c)
	if t.Bypass {
		return inputDB, nil
	}

	level := inputDB
	sr := c.SampleRate

	for _, kind := range t.Stages {
		switch kind {
		case StageCompressor:
			cs := s.Compressor
			level = dynamics.CompressDB(level, cs.ThresholdDB, cs.Ratio, cs.KneeDB) + cs.MakeupGainDB

		case StageMultiband:
			out, err := multibandTransferDB(&s, sr, level, toneHz)
			if err != nil {
				return 0, err
			}
			level = out

		case StagePreLimiter:
			level = limiterTransferDB(level, dynamics.PreLimiterCeilingDB)

		case StageSuppressor:

		case StageBassCut, StageTrebleCut:
			mag, err := cutMagnitudeDB(&s, kind, sr, toneHz)
			if err != nil {
				return 0, err
			}
			level += mag

		case StageEQ:
			for _, b := range s.EQ {
				coeffs := b.band().Coefficients(sr)
				level += coeffs.MagnitudeDB(toneHz, sr)
			}

		case StageGate:
			if level-sineCrestDB < s.GateThresholdDB {
				return core.SilenceDB, nil
			}

		case StageAGC:
			rms := level - sineCrestDB
			level += dynamics.AGCSteadyStateDB(rms, s.AGCTargetDB, s.AGCSpeed.Profile().MaxGain) - rms

		case StageLimiter:
			level = limiterTransferDB(level, s.LimiterThresholdDB)

		case StageMixer:
			level += s.OutputGainDB
			if s.LimiterEnabled {
				level = dynamics.LimitDB(level, s.LimiterThresholdDB)
			}
		}
	}

	return level, nil
}

func limiterTransferDB(level, ceilingDB float64) float64 {
	return dynamics.LimitDB(dynamics.CompressDB(level, ceilingDB, 20, 0), ceilingDB)
}

func multibandTransferDB(s *Settings, sampleRate, level, toneHz float64) (float64, error) {
	f1, f2 := crossoverFreqs(s, sampleRate)

	xo, err := crossover.NewThreeBand(f1, f2, sampleRate, 1)
	if err != nil {
		return 0, fmt.Errorf("effectchain: transfer: %w", err)
	}

	var sum complex128

	for band, b := range s.Bands {
		h := xo.BandResponse(band, toneHz)
		in := level + core.LevelDB(cmplx.Abs(h))
		out := dynamics.CompressDB(in, b.ThresholdDB, b.Ratio, b.KneeDB) + b.GainDB
		sum += h * complex(core.DBToLinear(out-in), 0)
	}

	return level + core.LevelDB(cmplx.Abs(sum)), nil
}

func cutMagnitudeDB(s *Settings, kind StageKind, sampleRate, toneHz float64) (float64, error) {
	var (
		f   *eq.CutFilter
		err error
		hz  float64
	)

	if kind == StageBassCut {
		f, err = eq.NewBassCut(sampleRate, 1)
		hz = s.EffectiveBassCutHz()
	} else {
		f, err = eq.NewTrebleCut(sampleRate, 1)
		hz = s.EffectiveTrebleCutHz()
	}

	if err == nil {
		err = f.SetFreq(hz)
	}

	if err != nil {
		return 0, fmt.Errorf("effectchain: transfer: %w", err)
	}

	return core.LevelDB(cmplx.Abs(f.Response(toneHz))), nil
}

// Inversion is a pair of neighboring scan levels where the louder input
// produced the quieter output.
type Inversion struct {
	InputDB      float64
	OutputDB     float64
	NextInputDB  float64
	NextOutputDB float64
}

// inversionToleranceDB absorbs floating point noise in flat segments.
const inversionToleranceDB = 1e-9

// FindInversions evaluates transfer at every level, in ascending order, and
// returns each neighboring pair whose output decreases.
func FindInversions(levels []float64, transfer func(inputDB float64) float64) []Inversion {
	var inv []Inversion

	for i := 0; i+1 < len(levels); i++ {
		a, b := transfer(levels[i]), transfer(levels[i+1])
		if a > b+inversionToleranceDB {
			inv = append(inv, Inversion{
				InputDB:      levels[i],
				OutputDB:     a,
				NextInputDB:  levels[i+1],
				NextOutputDB: b,
			})
		}
	}

	return inv
}

// ScanLevels returns the levels from fromDB to toDB inclusive in steps of
// stepDB.
func ScanLevels(fromDB, toDB, stepDB float64) []float64 {
	if stepDB <= 0 || toDB < fromDB {
		return nil
	}

	n := int(math.Floor((toDB-fromDB)/stepDB+1e-9)) + 1
	levels := make([]float64, n)
	for i := range levels {
		levels[i] = fromDB + float64(i)*stepDB
	}
	return levels
}

// CheckMonotonic scans the steady-state transfer of s from fromDB to toDB
// and returns every inversion.
func CheckMonotonic(s Settings, c Conditions, toneHz, fromDB, toDB, stepDB float64) ([]Inversion, error) {
	var firstErr error

	inv := FindInversions(ScanLevels(fromDB, toDB, stepDB), func(in float64) float64 {
		out, err := TransferDB(s, c, in, toneHz)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return out
	})

	if firstErr != nil {
		return nil, firstErr
	}

	return inv, nil
}
