package biquad

// Coefficients describes one second-order section with a0 normalized to 1.
// Processing uses the transposed direct form II recurrence:
//
//	y  = B0*x + d0
//	d0 = B1*x - A1*y + d1
//	d1 = B2*x - A2*y
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// Identity passes the signal through unchanged.
var Identity = Coefficients{B0: 1}

// Section is one channel's delay line bound to a coefficient set.
type Section struct {
	Coefficients

	z1, z2 float64
}

// NewSection returns a Section with an empty delay line.
func NewSection(c Coefficients) *Section {
	return &Section{Coefficients: c}
}

// ProcessSample runs x through the section.
func (s *Section) ProcessSample(x float64) float64 {
	y := s.B0*x + s.z1
	s.z1 = s.B1*x - s.A1*y + s.z2
	s.z2 = s.B2*x - s.A2*y

	return y
}

// processStrided filters src[offset], src[offset+stride], ... into the
// matching positions of dst. The slices may alias.
func (s *Section) processStrided(dst, src []float64, offset, stride int) {
	c := s.Coefficients
	z1, z2 := s.z1, s.z2

	for i := offset; i < len(src); i += stride {
		x := src[i]
		y := c.B0*x + z1
		z1 = c.B1*x - c.A1*y + z2
		z2 = c.B2*x - c.A2*y
		dst[i] = y
	}

	s.z1, s.z2 = z1, z2
}

// Reset empties the delay line.
func (s *Section) Reset() {
	s.z1, s.z2 = 0, 0
}
