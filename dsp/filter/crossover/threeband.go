package crossover

import (
	"fmt"
	"math/cmplx"
)

// Band indices of a ThreeBand split.
const (
	Sub = iota
	Mid
	High
	NumBands
)

// ThreeBand splits a signal into sub, mid and high bands using two cascaded
// crossover pairs: the first separates sub from the rest, the second is
// applied to the first pair's highpass output and separates mid from high.
type ThreeBand struct {
	low  *Crossover
	high *Crossover
	rest []float64
}

// NewThreeBand creates a three-band splitter. freq1 must be strictly below
// freq2 and both must lie below Nyquist.
func NewThreeBand(freq1, freq2, sampleRate float64, channels int) (*ThreeBand, error) {
	if freq1 >= freq2 {
		return nil, fmt.Errorf("crossover: frequencies must be strictly ascending, got %.1f then %.1f", freq1, freq2)
	}

	low, err := New(freq1, sampleRate, channels)
	if err != nil {
		return nil, fmt.Errorf("crossover: first pair: %w", err)
	}
	high, err := New(freq2, sampleRate, channels)
	if err != nil {
		return nil, fmt.Errorf("crossover: second pair: %w", err)
	}

	return &ThreeBand{low: low, high: high}, nil
}

// SetFreqs moves both corner frequencies. The pair must stay ascending.
func (t *ThreeBand) SetFreqs(freq1, freq2 float64) error {
	if freq1 >= freq2 {
		return fmt.Errorf("crossover: frequencies must be strictly ascending, got %.1f then %.1f", freq1, freq2)
	}
	sr := t.low.SampleRate()
	if err := validateFreq(freq1, sr); err != nil {
		return err
	}
	if err := validateFreq(freq2, sr); err != nil {
		return err
	}
	_ = t.low.SetFreq(freq1)
	_ = t.high.SetFreq(freq2)
	return nil
}

// Freqs returns the two corner frequencies in Hz.
func (t *ThreeBand) Freqs() (freq1, freq2 float64) {
	return t.low.Freq(), t.high.Freq()
}

// Split writes the three bands of input into sub, mid and high. All slices
// must have the same length as input.
func (t *ThreeBand) Split(input, sub, mid, high []float64) {
	if cap(t.rest) < len(input) {
		t.rest = make([]float64, len(input))
	}
	rest := t.rest[:len(input)]

	t.low.ProcessInterleaved(input, sub, rest)
	t.high.ProcessInterleaved(rest, mid, high)
}

// Reserve preallocates scratch space for blocks of up to n interleaved
// samples so Split does not allocate on the processing path.
func (t *ThreeBand) Reserve(n int) {
	if cap(t.rest) < n {
		t.rest = make([]float64, n)
	}
}

// BandResponse returns the complex response of one band at freqHz.
func (t *ThreeBand) BandResponse(band int, freqHz float64) complex128 {
	sr := t.low.SampleRate()
	lp1, hp1 := t.low.LP(), t.low.HP()
	lp2, hp2 := t.high.LP(), t.high.HP()

	switch band {
	case Sub:
		return lp1.Response(freqHz, sr)
	case Mid:
		return hp1.Response(freqHz, sr) * lp2.Response(freqHz, sr)
	case High:
		return hp1.Response(freqHz, sr) * hp2.Response(freqHz, sr)
	default:
		return 0
	}
}

// SumMagnitude returns |sub + mid + high| at freqHz, the response of the
// recombined bands with no gain applied.
func (t *ThreeBand) SumMagnitude(freqHz float64) float64 {
	var h complex128
	for b := range NumBands {
		h += t.BandResponse(b, freqHz)
	}
	return cmplx.Abs(h)
}

// Reset clears both crossover pairs.
func (t *ThreeBand) Reset() {
	t.low.Reset()
	t.high.Reset()
}
