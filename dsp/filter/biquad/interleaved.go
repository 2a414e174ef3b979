package biquad

// Interleaved runs one set of coefficients over every channel of an
// interleaved buffer, keeping a separate delay line per channel.
type Interleaved struct {
	coeffs   Coefficients
	channels []Section
}

// NewInterleaved returns an Interleaved filter for the given channel count.
// A channel count below one is treated as mono.
func NewInterleaved(c Coefficients, channels int) *Interleaved {
	if channels < 1 {
		channels = 1
	}

	f := &Interleaved{coeffs: c, channels: make([]Section, channels)}
	for i := range f.channels {
		f.channels[i].Coefficients = c
	}

	return f
}

// Coefficients returns the active coefficients.
func (f *Interleaved) Coefficients() Coefficients {
	return f.coeffs
}

// SetCoefficients replaces the coefficients on every channel. Delay-line
// state is preserved so parameter changes do not click.
func (f *Interleaved) SetCoefficients(c Coefficients) {
	f.coeffs = c
	for i := range f.channels {
		f.channels[i].Coefficients = c
	}
}

// Channels returns the channel count.
func (f *Interleaved) Channels() int {
	return len(f.channels)
}

// ProcessInterleaved filters buf in place. len(buf) must be a multiple of
// the channel count.
func (f *Interleaved) ProcessInterleaved(buf []float64) {
	f.ProcessInterleavedTo(buf, buf)
}

// ProcessInterleavedTo filters src into dst. dst must be at least as long
// as src; the two may alias.
func (f *Interleaved) ProcessInterleavedTo(dst, src []float64) {
	if len(src) == 0 {
		return
	}

	stride := len(f.channels)
	for ch := range f.channels {
		f.channels[ch].processStrided(dst, src, ch, stride)
	}
}

// Reset clears the delay line of every channel.
func (f *Interleaved) Reset() {
	for i := range f.channels {
		f.channels[i].Reset()
	}
}
