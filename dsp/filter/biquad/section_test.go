package biquad

import (
	"math"
	"testing"
)

const eps = 1e-12

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func passthrough() Coefficients { return Identity }

// simpleLowpass averages the current and previous sample.
func simpleLowpass() Coefficients {
	return Coefficients{B0: 0.5, B1: 0.5}
}

// directForm evaluates the difference equation
// y[n] = b0 x[n] + b1 x[n-1] + b2 x[n-2] - a1 y[n-1] - a2 y[n-2]
// without any state folding.
func directForm(c Coefficients, in []float64) []float64 {
	out := make([]float64, len(in))
	at := func(buf []float64, i int) float64 {
		if i < 0 {
			return 0
		}
		return buf[i]
	}
	for n := range in {
		out[n] = c.B0*at(in, n) + c.B1*at(in, n-1) + c.B2*at(in, n-2) -
			c.A1*at(out, n-1) - c.A2*at(out, n-2)
	}

	return out
}

func TestSectionMatchesDifferenceEquation(t *testing.T) {
	cases := []Coefficients{
		{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04},
		{B0: 1, B1: -1.8, B2: 0.81, A1: -1.6, A2: 0.7},
		{B2: 1},
	}
	in := []float64{1, -0.5, 0.25, 0.9, 0, 0, -1, 0.3, 0.3, 0.1}

	for _, c := range cases {
		want := directForm(c, in)
		s := NewSection(c)
		for i, x := range in {
			if got := s.ProcessSample(x); !almostEqual(got, want[i], 1e-9) {
				t.Fatalf("%+v sample %d: got %v, want %v", c, i, got, want[i])
			}
		}
	}
}

func TestSectionStridedMatchesSampleLoop(t *testing.T) {
	c := Coefficients{B0: 0.9, B1: -0.3, B2: 0.1, A1: 0.1, A2: 0.02}
	src := []float64{0.2, 9, -0.4, 9, 0.6, 9, 1, 9}

	dst := append([]float64(nil), src...)
	NewSection(c).processStrided(dst, src, 0, 2)

	ref := NewSection(c)
	for i := 0; i < len(src); i += 2 {
		if want := ref.ProcessSample(src[i]); !almostEqual(dst[i], want, eps) {
			t.Fatalf("dst[%d] = %v, want %v", i, dst[i], want)
		}
		if dst[i+1] != 9 {
			t.Fatalf("dst[%d] touched: %v", i+1, dst[i+1])
		}
	}
}

func TestSectionResetDropsTail(t *testing.T) {
	s := NewSection(Coefficients{B0: 1, A1: -0.9})
	s.ProcessSample(1)
	if tail := s.ProcessSample(0); !almostEqual(tail, 0.9, eps) {
		t.Fatalf("tail = %v, want 0.9", tail)
	}

	s.Reset()
	if got := s.ProcessSample(0); got != 0 {
		t.Fatalf("got %v after Reset, want 0", got)
	}
}

func TestSectionStableLowpassSettles(t *testing.T) {
	// DC gain (b0+b1+b2)/(1+a1+a2) = 1.
	c := Coefficients{B0: 0.02, B1: 0.04, B2: 0.02, A1: -1.56, A2: 0.64}
	s := NewSection(c)

	var y float64
	for range 5000 {
		y = s.ProcessSample(1)
	}
	if math.IsNaN(y) || !almostEqual(y, 1, 1e-9) {
		t.Fatalf("step response settled at %v, want 1", y)
	}
}
