package crossover

import (
	"fmt"

	"github.com/cwbudde/algo-leveler/dsp/filter/biquad"
	"github.com/cwbudde/algo-leveler/dsp/filter/design"
)

// Crossover is a two-way crossover pair that splits an interleaved signal
// into complementary lowpass and highpass outputs.
//
// Both halves are second-order Butterworth sections at the same corner
// frequency. The highpass polarity is inverted so that the recombined
// bands do not cancel at the corner; their sum stays between 0 and +3 dB.
type Crossover struct {
	lp   *biquad.Interleaved
	hp   *biquad.Interleaved
	freq float64
	sr   float64
}

// New creates a two-way crossover at freq for an interleaved stream with
// the given channel count.
func New(freq, sampleRate float64, channels int) (*Crossover, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("crossover: sample rate must be positive, got %v", sampleRate)
	}
	if channels < 1 {
		return nil, fmt.Errorf("crossover: channel count must be positive, got %d", channels)
	}
	if err := validateFreq(freq, sampleRate); err != nil {
		return nil, err
	}

	lp, hp := designPair(freq, sampleRate)

	return &Crossover{
		lp:   biquad.NewInterleaved(lp, channels),
		hp:   biquad.NewInterleaved(hp, channels),
		freq: freq,
		sr:   sampleRate,
	}, nil
}

func validateFreq(freq, sampleRate float64) error {
	if freq <= 0 || freq >= sampleRate/2 {
		return fmt.Errorf("crossover: frequency must be in (0, %v), got %v", sampleRate/2, freq)
	}
	return nil
}

func designPair(freq, sampleRate float64) (lp, hp biquad.Coefficients) {
	lp = design.Lowpass(freq, design.ButterworthQ, sampleRate)
	hp = design.Highpass(freq, design.ButterworthQ, sampleRate)
	hp.B0, hp.B1, hp.B2 = -hp.B0, -hp.B1, -hp.B2
	return lp, hp
}

// SetFreq moves the corner frequency. Filter state is kept so the change
// does not click.
func (c *Crossover) SetFreq(freq float64) error {
	if err := validateFreq(freq, c.sr); err != nil {
		return err
	}
	c.freq = freq
	lp, hp := designPair(freq, c.sr)
	c.lp.SetCoefficients(lp)
	c.hp.SetCoefficients(hp)
	return nil
}

// ProcessInterleaved filters an interleaved input block, writing the
// lowpass output to lo and the highpass output to hi. All three slices must
// have the same length; lo may alias input.
func (c *Crossover) ProcessInterleaved(input, lo, hi []float64) {
	if len(input) == 0 {
		return
	}
	_ = lo[len(input)-1]
	_ = hi[len(input)-1]
	c.hp.ProcessInterleavedTo(hi, input)
	c.lp.ProcessInterleavedTo(lo, input)
}

// LP returns the lowpass coefficients for analysis.
func (c *Crossover) LP() biquad.Coefficients { return c.lp.Coefficients() }

// HP returns the polarity-inverted highpass coefficients for analysis.
func (c *Crossover) HP() biquad.Coefficients { return c.hp.Coefficients() }

// Freq returns the crossover frequency in Hz.
func (c *Crossover) Freq() float64 { return c.freq }

// SampleRate returns the sample rate in Hz.
func (c *Crossover) SampleRate() float64 { return c.sr }

// Reset clears the internal filter states of both halves.
func (c *Crossover) Reset() {
	c.lp.Reset()
	c.hp.Reset()
}
