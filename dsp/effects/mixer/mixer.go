// Package mixer provides the final stage of the processing graph: the
// background noise bed, the output gain and the safety ceiling.
package mixer

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-leveler/dsp/core"
	"github.com/cwbudde/algo-vecmath"
)

const (
	// outputGainSmoothingMs is the time constant of output gain changes.
	outputGainSmoothingMs = 10.0

	minNoiseLevelDB = -120.0
	maxNoiseLevelDB = 0.0
	minOutputGainDB = -60.0
	maxOutputGainDB = 24.0
	minCeilingDB    = -60.0
	maxCeilingDB    = 0.0

	gainSettledEpsilon = 1e-9
)

// OutputMixer adds a looping noise bed to the processed signal, applies the
// output gain and optionally clamps the result at a ceiling.
//
// The noise bed is a mono buffer shared read-only between mixers. Channel c
// reads it at an offset of c·len/(channels+1) so channels are decorrelated.
// Output gain changes are smoothed with a 10 ms one-pole filter.
type OutputMixer struct {
	sampleRate float64
	channels   int

	bed        []float64
	offsets    []int
	pos        int
	noiseOn    bool
	noiseDB    float64
	noiseLevel float64

	gainDB      float64
	gainTarget  float64
	gain        float64
	smoothCoeff float64

	ceilingOn  bool
	ceilingDB  float64
	ceilingLin float64

	scratch []float64
}

// NewOutputMixer creates a mixer with unity gain, no noise and no ceiling.
func NewOutputMixer(sampleRate float64, channels int) (*OutputMixer, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("mixer: sample rate must be positive and finite: %f", sampleRate)
	}
	if channels < 1 {
		return nil, fmt.Errorf("mixer: channel count must be positive: %d", channels)
	}

	return &OutputMixer{
		sampleRate:  sampleRate,
		channels:    channels,
		offsets:     make([]int, channels),
		noiseDB:     core.SilenceDB,
		gainTarget:  1,
		gain:        1,
		smoothCoeff: core.TimeConstant(outputGainSmoothingMs, sampleRate),
		ceilingDB:   maxCeilingDB,
		ceilingLin:  1,
	}, nil
}

// SetNoiseBed installs the looping noise buffer. A nil or empty bed
// silences the noise. The slice is not modified.
func (m *OutputMixer) SetNoiseBed(bed []float64) {
	if len(bed) == len(m.bed) && (len(bed) == 0 || &bed[0] == &m.bed[0]) {
		return
	}

	m.bed = bed
	m.pos = 0
	for c := range m.offsets {
		m.offsets[c] = c * len(bed) / (m.channels + 1)
	}
}

// SetNoiseEnabled switches the noise bed on or off.
func (m *OutputMixer) SetNoiseEnabled(on bool) { m.noiseOn = on }

// SetNoiseLevel sets the noise level in dB relative to full scale.
func (m *OutputMixer) SetNoiseLevel(dB float64) error {
	if dB < minNoiseLevelDB || dB > maxNoiseLevelDB || math.IsNaN(dB) {
		return fmt.Errorf("mixer: noise level must be in [%g, %g]: %f", minNoiseLevelDB, maxNoiseLevelDB, dB)
	}
	m.noiseDB = dB
	m.noiseLevel = core.DBToLinear(dB)
	return nil
}

// SetOutputGain sets the target output gain in dB.
func (m *OutputMixer) SetOutputGain(dB float64) error {
	if dB < minOutputGainDB || dB > maxOutputGainDB || math.IsNaN(dB) {
		return fmt.Errorf("mixer: output gain must be in [%g, %g]: %f", minOutputGainDB, maxOutputGainDB, dB)
	}
	m.gainDB = dB
	m.gainTarget = core.DBToLinear(dB)
	return nil
}

// SetCeiling enables or disables the output clamp at dB.
func (m *OutputMixer) SetCeiling(on bool, dB float64) error {
	if dB < minCeilingDB || dB > maxCeilingDB || math.IsNaN(dB) {
		return fmt.Errorf("mixer: ceiling must be in [%g, %g]: %f", minCeilingDB, maxCeilingDB, dB)
	}
	m.ceilingOn = on
	m.ceilingDB = dB
	m.ceilingLin = core.DBToLinear(dB)
	return nil
}

// NoiseEnabled reports whether the noise bed is mixed in.
func (m *OutputMixer) NoiseEnabled() bool { return m.noiseOn && len(m.bed) > 0 }

// NoiseLevel returns the noise level in dB.
func (m *OutputMixer) NoiseLevel() float64 { return m.noiseDB }

// OutputGain returns the target output gain in dB.
func (m *OutputMixer) OutputGain() float64 { return m.gainDB }

// Ceiling reports whether the ceiling is enabled and its level in dB.
func (m *OutputMixer) Ceiling() (bool, float64) { return m.ceilingOn, m.ceilingDB }

// Reserve preallocates scratch space for blocks of up to n samples.
func (m *OutputMixer) Reserve(n int) {
	m.scratch = core.EnsureLen(m.scratch, n)
}

// ProcessInterleaved mixes an interleaved block in place.
func (m *OutputMixer) ProcessInterleaved(buf []float64) {
	n := len(buf) - len(buf)%m.channels
	if n == 0 {
		return
	}
	buf = buf[:n]

	if m.NoiseEnabled() && m.noiseLevel > 0 {
		m.addNoise(buf)
	}

	m.applyGain(buf)

	if m.ceilingOn {
		c := m.ceilingLin
		for i, x := range buf {
			buf[i] = core.Clamp(x, -c, c)
		}
	}
}

func (m *OutputMixer) addNoise(buf []float64) {
	if len(m.scratch) < len(buf) {
		m.Reserve(len(buf))
	}
	noise := m.scratch[:len(buf)]

	ch, size := m.channels, len(m.bed)
	frames := len(buf) / ch
	for c := range ch {
		idx := (m.pos + m.offsets[c]) % size
		for f := range frames {
			noise[f*ch+c] = m.bed[idx]
			idx++
			if idx == size {
				idx = 0
			}
		}
	}
	m.pos = (m.pos + frames) % size

	vecmath.ScaleBlock(noise, noise, m.noiseLevel)
	vecmath.AddBlockInPlace(buf, noise)
}

func (m *OutputMixer) applyGain(buf []float64) {
	if math.Abs(m.gain-m.gainTarget) < gainSettledEpsilon {
		m.gain = m.gainTarget
		if m.gain != 1 {
			vecmath.ScaleBlock(buf, buf, m.gain)
		}
		return
	}

	ch := m.channels
	g, target, coeff := m.gain, m.gainTarget, m.smoothCoeff
	for i := 0; i < len(buf); i += ch {
		g = target + (g-target)*coeff
		for j := i; j < i+ch; j++ {
			buf[j] *= g
		}
	}
	m.gain = g
}

// Reset jumps the output gain to its target and restarts the noise bed.
func (m *OutputMixer) Reset() {
	m.gain = m.gainTarget
	m.pos = 0
}
