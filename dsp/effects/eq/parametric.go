package eq

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-leveler/dsp/filter/biquad"
	"github.com/cwbudde/algo-leveler/dsp/filter/design"
)

// NumBands is the number of bands of a ParametricEQ.
const NumBands = 5

// DefaultBands returns the flat starting layout: a low shelf at 100 Hz,
// peaking bands at 300 Hz, 1 kHz and 3 kHz and a high shelf at 8 kHz, all
// at 0 dB with Q 0.707.
func DefaultBands() [NumBands]Band {
	return [NumBands]Band{
		{FreqHz: 100, Q: design.ButterworthQ, Kind: design.KindLowShelf},
		{FreqHz: 300, Q: design.ButterworthQ, Kind: design.KindPeaking},
		{FreqHz: 1000, Q: design.ButterworthQ, Kind: design.KindPeaking},
		{FreqHz: 3000, Q: design.ButterworthQ, Kind: design.KindPeaking},
		{FreqHz: 8000, Q: design.ButterworthQ, Kind: design.KindHighShelf},
	}
}

// ParametricEQ is five biquad bands processed in series, band 1 first.
// Reconfiguring a band only redesigns that band's section.
type ParametricEQ struct {
	sampleRate float64
	channels   int
	bands      [NumBands]Band
	chain      *biquad.Chain
}

// NewParametricEQ creates an equalizer with [DefaultBands].
func NewParametricEQ(sampleRate float64, channels int) (*ParametricEQ, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("eq: sample rate must be positive and finite: %f", sampleRate)
	}
	if channels < 1 {
		return nil, fmt.Errorf("eq: channel count must be positive: %d", channels)
	}

	e := &ParametricEQ{
		sampleRate: sampleRate,
		channels:   channels,
		bands:      DefaultBands(),
	}

	coeffs := make([]biquad.Coefficients, NumBands)
	for i, b := range e.bands {
		coeffs[i] = b.Coefficients(sampleRate)
	}
	e.chain = biquad.NewChain(coeffs, channels)

	return e, nil
}

// SetBand replaces the parameters of band i (0-based).
func (e *ParametricEQ) SetBand(i int, b Band) error {
	if i < 0 || i >= NumBands {
		return fmt.Errorf("eq: band index %d out of range [0, %d)", i, NumBands)
	}
	if err := b.Validate(); err != nil {
		return err
	}
	if e.bands[i] == b {
		return nil
	}

	e.bands[i] = b
	e.chain.SetSection(i, b.Coefficients(e.sampleRate))
	return nil
}

// Band returns the parameters of band i (0-based).
func (e *ParametricEQ) Band(i int) Band { return e.bands[i] }

// Bands returns all band parameters.
func (e *ParametricEQ) Bands() [NumBands]Band { return e.bands }

// SampleRate returns the sample rate in Hz.
func (e *ParametricEQ) SampleRate() float64 { return e.sampleRate }

// ProcessInterleaved equalizes an interleaved block in place.
func (e *ParametricEQ) ProcessInterleaved(buf []float64) {
	e.chain.ProcessInterleaved(buf)
}

// Reset clears the state of every band.
func (e *ParametricEQ) Reset() {
	e.chain.Reset()
}

// Response returns the complex response of the cascade at freqHz.
func (e *ParametricEQ) Response(freqHz float64) complex128 {
	return e.chain.Response(freqHz, e.sampleRate)
}

// MagnitudeDB returns the cascaded magnitude response at freqHz in dB.
func (e *ParametricEQ) MagnitudeDB(freqHz float64) float64 {
	return e.chain.MagnitudeDB(freqHz, e.sampleRate)
}
