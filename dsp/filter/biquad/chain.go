package biquad

// Chain is an ordered cascade of interleaved biquad sections processed in
// series. It backs multi-band equalizers where each band is one section and
// bands can be redesigned independently without rewiring the cascade.
type Chain struct {
	sections []*Interleaved
}

// NewChain creates a cascade from one or more coefficient sets.
// Each Coefficients value becomes one section in the cascade.
func NewChain(coeffs []Coefficients, channels int) *Chain {
	c := &Chain{sections: make([]*Interleaved, len(coeffs))}
	for i := range coeffs {
		c.sections[i] = NewInterleaved(coeffs[i], channels)
	}

	return c
}

// ProcessInterleaved filters an interleaved block in place through the full
// cascade.
func (c *Chain) ProcessInterleaved(buf []float64) {
	for _, s := range c.sections {
		s.ProcessInterleaved(buf)
	}
}

// Reset clears all section states.
func (c *Chain) Reset() {
	for _, s := range c.sections {
		s.Reset()
	}
}

// NumSections returns the number of biquad sections.
func (c *Chain) NumSections() int {
	return len(c.sections)
}

// SetSection replaces the coefficients of the i-th section, preserving
// its delay-line state.
func (c *Chain) SetSection(i int, coeffs Coefficients) {
	c.sections[i].SetCoefficients(coeffs)
}

// Section returns the coefficients of the i-th section.
func (c *Chain) Section(i int) Coefficients {
	return c.sections[i].Coefficients()
}
