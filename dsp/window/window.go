// Package window generates the analysis and synthesis windows used for
// short-time Fourier processing.
package window

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window shape.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeHamming
	// TypeSqrtHann is the square root of Hann. Used for both analysis and
	// synthesis it reconstructs perfectly at 50% overlap.
	TypeSqrtHann
)

// shape evaluates a window at normalized position x in [0, 1].
type shape func(x float64) float64

func raisedCosine(a0 float64) shape {
	return func(x float64) float64 { return a0 - (1-a0)*math.Cos(2*math.Pi*x) }
}

var shapes = map[Type]shape{
	TypeHann:    raisedCosine(0.5),
	TypeHamming: raisedCosine(0.54),
	TypeSqrtHann: func(x float64) float64 {
		return math.Sqrt(raisedCosine(0.5)(x))
	},
}

// Option configures window generation.
type Option func(*config)

type config struct {
	periodic bool
}

// WithPeriodic drops the final sample of the symmetric window so that
// successive frames tile exactly, as FFT framing expects.
func WithPeriodic() Option {
	return func(c *config) { c.periodic = true }
}

// Generate returns length coefficients of window t. Unknown types are
// rectangular.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	out := make([]float64, length)
	f, ok := shapes[t]
	if !ok {
		for i := range out {
			out[i] = 1
		}
		return out
	}

	span := float64(length - 1)
	if cfg.periodic {
		span = float64(length)
	}
	for i := range out {
		var x float64
		if span > 0 {
			x = float64(i) / span
		}
		out[i] = f(x)
	}

	return out
}

// Apply multiplies buf in place by window t.
func Apply(t Type, buf []float64, opts ...Option) {
	if len(buf) == 0 {
		return
	}

	vecmath.MulBlockInPlace(buf, Generate(t, len(buf), opts...))
}

// OverlapAddGain sums a[i]*s[i] into hop-periodic bins. The pair satisfies
// the constant overlap-add condition at that hop when every bin is equal.
func OverlapAddGain(a, s []float64, hop int) ([]float64, error) {
	if len(a) == 0 || len(a) != len(s) {
		return nil, fmt.Errorf("window: analysis and synthesis windows must be non-empty and equal length: %d, %d", len(a), len(s))
	}
	if hop <= 0 || hop > len(a) {
		return nil, fmt.Errorf("window: hop must be in [1, %d]: %d", len(a), hop)
	}

	gain := make([]float64, hop)
	for i := range a {
		gain[i%hop] += a[i] * s[i]
	}

	return gain, nil
}
