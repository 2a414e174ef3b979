package eq

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-leveler/dsp/filter/biquad"
	"github.com/cwbudde/algo-leveler/dsp/filter/design"
)

// Band parameter ranges.
const (
	MinBandFreqHz = 20.0
	MaxBandFreqHz = 20000.0
	MinBandGainDB = -24.0
	MaxBandGainDB = 24.0
	MinBandQ      = 0.1
	MaxBandQ      = 18.0
)

// Band describes one equalizer band. GainDB is ignored for the highpass
// and lowpass kinds.
type Band struct {
	FreqHz float64
	GainDB float64
	Q      float64
	Kind   design.Kind
}

// Validate reports whether all band parameters are inside their ranges.
func (b Band) Validate() error {
	switch {
	case !inRange(b.FreqHz, MinBandFreqHz, MaxBandFreqHz):
		return fmt.Errorf("eq: band frequency must be in [%g, %g]: %f", MinBandFreqHz, MaxBandFreqHz, b.FreqHz)
	case !inRange(b.GainDB, MinBandGainDB, MaxBandGainDB):
		return fmt.Errorf("eq: band gain must be in [%g, %g]: %f", MinBandGainDB, MaxBandGainDB, b.GainDB)
	case !inRange(b.Q, MinBandQ, MaxBandQ):
		return fmt.Errorf("eq: band Q must be in [%g, %g]: %f", MinBandQ, MaxBandQ, b.Q)
	case b.Kind < design.KindPeaking || b.Kind > design.KindHighShelf:
		return fmt.Errorf("eq: invalid band kind %d", int(b.Kind))
	}
	return nil
}

// Coefficients designs the biquad for b at sampleRate. A band above the
// Nyquist frequency of sampleRate becomes a pass-through section.
func (b Band) Coefficients(sampleRate float64) biquad.Coefficients {
	return design.Design(b.Kind, b.FreqHz, b.GainDB, b.Q, sampleRate)
}

func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo && v <= hi
}
