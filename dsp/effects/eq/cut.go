package eq

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-leveler/dsp/filter/biquad"
	"github.com/cwbudde/algo-leveler/dsp/filter/design"
)

// Cut filter limits. A bass cut at the floor and a treble cut at or above
// the ceiling are inactive and stay out of the signal path.
const (
	BassCutFloorHz  = 20.0
	MaxBassCutHz    = 1000.0
	MinTrebleCutHz  = 1000.0
	MaxTrebleCutHz  = 22000.0
	trebleCeilingHz = 20000.0
)

// TrebleCeilingHz returns the frequency at or above which a treble cut is
// inactive for sampleRate: 20 kHz, or 90% of Nyquist for low sample rates.
func TrebleCeilingHz(sampleRate float64) float64 {
	return math.Min(trebleCeilingHz, 0.45*sampleRate)
}

// BassCutActive reports whether a bass cut at freqHz affects the signal.
func BassCutActive(freqHz float64) bool {
	return freqHz > BassCutFloorHz
}

// TrebleCutActive reports whether a treble cut at freqHz affects the signal
// at sampleRate.
func TrebleCutActive(freqHz, sampleRate float64) bool {
	return freqHz < TrebleCeilingHz(sampleRate)
}

// CutFilter is a second-order Butterworth highpass (bass cut) or lowpass
// (treble cut).
type CutFilter struct {
	kind       design.Kind
	freqHz     float64
	minHz      float64
	maxHz      float64
	sampleRate float64
	filter     *biquad.Interleaved
}

// NewBassCut creates a bass cut at the 20 Hz floor, where it is inactive.
func NewBassCut(sampleRate float64, channels int) (*CutFilter, error) {
	return newCutFilter(design.KindHighpass, BassCutFloorHz, BassCutFloorHz, MaxBassCutHz, sampleRate, channels)
}

// NewTrebleCut creates a treble cut at 20 kHz, where it is inactive.
func NewTrebleCut(sampleRate float64, channels int) (*CutFilter, error) {
	return newCutFilter(design.KindLowpass, trebleCeilingHz, MinTrebleCutHz, MaxTrebleCutHz, sampleRate, channels)
}

func newCutFilter(kind design.Kind, freq, minHz, maxHz, sampleRate float64, channels int) (*CutFilter, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("eq: sample rate must be positive and finite: %f", sampleRate)
	}
	if channels < 1 {
		return nil, fmt.Errorf("eq: channel count must be positive: %d", channels)
	}

	f := &CutFilter{
		kind:       kind,
		freqHz:     freq,
		minHz:      minHz,
		maxHz:      maxHz,
		sampleRate: sampleRate,
	}
	f.filter = biquad.NewInterleaved(f.coefficients(), channels)

	return f, nil
}

// SetFreq sets the corner frequency in Hz.
func (f *CutFilter) SetFreq(hz float64) error {
	if !inRange(hz, f.minHz, f.maxHz) {
		return fmt.Errorf("eq: %s cut frequency must be in [%g, %g]: %f", f.name(), f.minHz, f.maxHz, hz)
	}
	if hz == f.freqHz {
		return nil
	}

	f.freqHz = hz
	f.filter.SetCoefficients(f.coefficients())
	return nil
}

// Freq returns the corner frequency in Hz.
func (f *CutFilter) Freq() float64 { return f.freqHz }

// Active reports whether the filter at its current frequency affects the
// signal.
func (f *CutFilter) Active() bool {
	if f.kind == design.KindHighpass {
		return BassCutActive(f.freqHz)
	}
	return TrebleCutActive(f.freqHz, f.sampleRate)
}

// ProcessInterleaved filters an interleaved block in place.
func (f *CutFilter) ProcessInterleaved(buf []float64) {
	f.filter.ProcessInterleaved(buf)
}

// Reset clears the filter state.
func (f *CutFilter) Reset() {
	f.filter.Reset()
}

// Response returns the complex response at freqHz. An inactive filter
// reports unity.
func (f *CutFilter) Response(freqHz float64) complex128 {
	if !f.Active() {
		return 1
	}
	c := f.filter.Coefficients()
	return c.Response(freqHz, f.sampleRate)
}

func (f *CutFilter) coefficients() biquad.Coefficients {
	return design.Design(f.kind, f.freqHz, 0, design.ButterworthQ, f.sampleRate)
}

func (f *CutFilter) name() string {
	if f.kind == design.KindHighpass {
		return "bass"
	}
	return "treble"
}
