package biquad

import (
	"math"
	"math/cmplx"
)

// Response evaluates H(z) on the unit circle at freqHz for the given sample
// rate.
func (c Coefficients) Response(freqHz, sampleRate float64) complex128 {
	// z^-1 = e^{-jw}
	zInv := cmplx.Rect(1, -2*math.Pi*freqHz/sampleRate)
	zInv2 := zInv * zInv

	num := complex(c.B0, 0) + complex(c.B1, 0)*zInv + complex(c.B2, 0)*zInv2
	den := 1 + complex(c.A1, 0)*zInv + complex(c.A2, 0)*zInv2

	return num / den
}

// MagnitudeDB returns 20*log10|H| at freqHz. A zero of the response yields
// -Inf.
func (c Coefficients) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return magnitudeDB(c.Response(freqHz, sampleRate))
}

// Response is the product of the section responses of the cascade.
func (c *Chain) Response(freqHz, sampleRate float64) complex128 {
	h := complex(1, 0)
	for _, s := range c.sections {
		h *= s.Coefficients().Response(freqHz, sampleRate)
	}

	return h
}

// MagnitudeDB returns the cascade magnitude at freqHz in dB.
func (c *Chain) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return magnitudeDB(c.Response(freqHz, sampleRate))
}

func magnitudeDB(h complex128) float64 {
	return 20 * math.Log10(cmplx.Abs(h))
}
