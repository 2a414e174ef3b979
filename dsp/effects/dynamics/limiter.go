package dynamics

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-leveler/dsp/core"
)

const (
	limiterRatio = 20.0

	defaultLimiterCeilingDB = -1.0
	defaultLimiterAttackMs  = 1.0
	defaultLimiterReleaseMs = 100.0

	minLimiterCeilingDB = -60.0
	maxLimiterCeilingDB = 0.0

	// PreLimiterCeilingDB is the fixed ceiling of the protective pre-limiter.
	PreLimiterCeilingDB = -1.0
)

// Limiter is a brick-wall limiter: a 20:1 hard-knee compressor with fast
// attack followed by a sample clamp at the ceiling, so the output never
// exceeds the ceiling even while the envelope is still catching up.
type Limiter struct {
	comp       *Compressor
	ceilingDB  float64
	ceilingLin float64
}

// NewLimiter creates a limiter with a -1 dBFS ceiling, 1 ms attack and
// 100 ms release.
func NewLimiter(sampleRate float64, channels int) (*Limiter, error) {
	comp, err := NewCompressor(sampleRate, channels)
	if err != nil {
		return nil, fmt.Errorf("limiter: %w", err)
	}

	if err := comp.SetRatio(limiterRatio); err != nil {
		return nil, fmt.Errorf("limiter: %w", err)
	}
	if err := comp.SetKnee(0); err != nil {
		return nil, fmt.Errorf("limiter: %w", err)
	}
	if err := comp.SetAttack(defaultLimiterAttackMs); err != nil {
		return nil, fmt.Errorf("limiter: %w", err)
	}
	if err := comp.SetRelease(defaultLimiterReleaseMs); err != nil {
		return nil, fmt.Errorf("limiter: %w", err)
	}

	l := &Limiter{comp: comp}
	if err := l.SetCeiling(defaultLimiterCeilingDB); err != nil {
		return nil, err
	}

	return l, nil
}

// NewPreLimiter creates the fixed protective limiter that guards the noise
// suppression stage: -1 dBFS ceiling, 20:1, hard knee, 1 ms attack, 100 ms
// release. Its parameters are not meant to be changed.
func NewPreLimiter(sampleRate float64, channels int) (*Limiter, error) {
	l, err := NewLimiter(sampleRate, channels)
	if err != nil {
		return nil, fmt.Errorf("pre-limiter: %w", err)
	}
	if err := l.SetCeiling(PreLimiterCeilingDB); err != nil {
		return nil, fmt.Errorf("pre-limiter: %w", err)
	}
	return l, nil
}

// SetCeiling sets the output ceiling in dBFS.
func (l *Limiter) SetCeiling(dB float64) error {
	if dB < minLimiterCeilingDB || dB > maxLimiterCeilingDB || math.IsNaN(dB) {
		return fmt.Errorf("limiter ceiling must be in [%f, %f]: %f",
			minLimiterCeilingDB, maxLimiterCeilingDB, dB)
	}
	if err := l.comp.SetThreshold(dB); err != nil {
		return err
	}
	l.ceilingDB = dB
	l.ceilingLin = core.DBToLinear(dB)
	return nil
}

// SetAttack sets the attack time in milliseconds.
func (l *Limiter) SetAttack(ms float64) error { return l.comp.SetAttack(ms) }

// SetRelease sets the release time in milliseconds.
func (l *Limiter) SetRelease(ms float64) error { return l.comp.SetRelease(ms) }

// Ceiling returns the output ceiling in dBFS.
func (l *Limiter) Ceiling() float64 { return l.ceilingDB }

// Attack returns the attack time in milliseconds.
func (l *Limiter) Attack() float64 { return l.comp.Attack() }

// Release returns the release time in milliseconds.
func (l *Limiter) Release() float64 { return l.comp.Release() }

// ProcessInterleaved limits an interleaved block in place.
func (l *Limiter) ProcessInterleaved(buf []float64) {
	l.comp.ProcessInterleaved(buf)

	c := l.ceilingLin
	for i, x := range buf {
		if x > c {
			buf[i] = c
		} else if x < -c {
			buf[i] = -c
		}
	}
}

// CalculateOutputDB returns the steady-state output level for a sustained
// input at inputDB.
func (l *Limiter) CalculateOutputDB(inputDB float64) float64 {
	return LimitDB(l.comp.CalculateOutputDB(inputDB), l.ceilingDB)
}

// GainReductionDB returns the most recent gain reduction in dB.
func (l *Limiter) GainReductionDB() float64 { return l.comp.GainReductionDB() }

// Reset clears the envelope state.
func (l *Limiter) Reset() { l.comp.Reset() }
