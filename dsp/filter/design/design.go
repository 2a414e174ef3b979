package design

import (
	"math"

	"github.com/cwbudde/algo-leveler/dsp/core"
	"github.com/cwbudde/algo-leveler/dsp/filter/biquad"
)

// ButterworthQ is the quality factor of a maximally flat second-order section.
const ButterworthQ = 1 / math.Sqrt2

// Design returns the biquad for one band. Gain only applies to the peaking
// and shelf kinds. Frequencies outside (0, sampleRate/2) and unknown kinds
// yield biquad.Identity; a non-positive q falls back to ButterworthQ.
func Design(kind Kind, freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	p, ok := newPrototype(freq, gainDB, q, sampleRate)
	if !ok {
		return biquad.Identity
	}

	switch kind {
	case KindHighpass:
		return p.highpass()
	case KindLowpass:
		return p.lowpass()
	case KindPeaking:
		return p.peaking()
	case KindLowShelf:
		return p.shelf(1)
	case KindHighShelf:
		return p.shelf(-1)
	default:
		return biquad.Identity
	}
}

// Lowpass designs a second-order lowpass at freq.
func Lowpass(freq, q, sampleRate float64) biquad.Coefficients {
	return Design(KindLowpass, freq, 0, q, sampleRate)
}

// Highpass designs a second-order highpass at freq.
func Highpass(freq, q, sampleRate float64) biquad.Coefficients {
	return Design(KindHighpass, freq, 0, q, sampleRate)
}

// prototype holds the bilinear-transform terms shared by the cookbook
// designs (R. Bristow-Johnson).
type prototype struct {
	cos, alpha float64
	amp        float64 // 10^(gain/40)
}

func newPrototype(freq, gainDB, q, sampleRate float64) (prototype, bool) {
	if !(sampleRate > 0) || !core.IsFinite(sampleRate) {
		return prototype{}, false
	}
	if !(freq > 0) || freq >= sampleRate/2 {
		return prototype{}, false
	}
	if !(q > 0) || !core.IsFinite(q) {
		q = ButterworthQ
	}
	if !core.IsFinite(gainDB) {
		gainDB = 0
	}

	sin, cos := math.Sincos(2 * math.Pi * freq / sampleRate)

	return prototype{
		cos:   cos,
		alpha: sin / (2 * q),
		amp:   math.Pow(10, gainDB/40),
	}, true
}

func (p prototype) lowpass() biquad.Coefficients {
	b := (1 - p.cos) / 2

	return p.normalize(b, 2*b, b, 1+p.alpha, -2*p.cos, 1-p.alpha)
}

func (p prototype) highpass() biquad.Coefficients {
	b := (1 + p.cos) / 2

	return p.normalize(b, -2*b, b, 1+p.alpha, -2*p.cos, 1-p.alpha)
}

func (p prototype) peaking() biquad.Coefficients {
	up, down := p.alpha*p.amp, p.alpha/p.amp

	return p.normalize(1+up, -2*p.cos, 1-up, 1+down, -2*p.cos, 1-down)
}

// shelf designs the low shelf for sign +1 and the high shelf for sign -1.
// The two differ only in the sign of the cosine terms.
func (p prototype) shelf(sign float64) biquad.Coefficients {
	a, c := p.amp, sign*p.cos
	beta := 2 * math.Sqrt(a) * p.alpha

	b0 := a * ((a + 1) - (a-1)*c + beta)
	b1 := sign * 2 * a * ((a - 1) - (a+1)*c)
	b2 := a * ((a + 1) - (a-1)*c - beta)
	a0 := (a + 1) + (a-1)*c + beta
	a1 := -sign * 2 * ((a - 1) + (a+1)*c)
	a2 := (a + 1) + (a-1)*c - beta

	return p.normalize(b0, b1, b2, a0, a1, a2)
}

func (prototype) normalize(b0, b1, b2, a0, a1, a2 float64) biquad.Coefficients {
	if a0 == 0 || !core.IsFinite(a0) {
		return biquad.Identity
	}

	inv := 1 / a0

	return biquad.Coefficients{B0: b0 * inv, B1: b1 * inv, B2: b2 * inv, A1: a1 * inv, A2: a2 * inv}
}
