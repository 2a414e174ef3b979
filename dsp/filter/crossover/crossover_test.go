package crossover

import (
	"math"
	"testing"
)

func TestNew_InvalidParameters(t *testing.T) {
	tests := []struct {
		name     string
		freq     float64
		sr       float64
		channels int
	}{
		{"zero freq", 0, 48000, 1},
		{"negative freq", -100, 48000, 1},
		{"freq at Nyquist", 24000, 48000, 1},
		{"zero sample rate", 1000, 0, 1},
		{"zero channels", 1000, 48000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.freq, tt.sr, tt.channels); err == nil {
				t.Fatalf("New(%v, %v, %d) should fail", tt.freq, tt.sr, tt.channels)
			}
		})
	}
}

func TestCrossover_CornerLevels(t *testing.T) {
	xo, err := New(1000, 48000, 1)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	lp, hp := xo.LP(), xo.HP()
	if got := lp.MagnitudeDB(1000, 48000); math.Abs(got+3.01) > 0.05 {
		t.Fatalf("LP at corner = %v dB, want -3.01", got)
	}
	if got := hp.MagnitudeDB(1000, 48000); math.Abs(got+3.01) > 0.05 {
		t.Fatalf("HP at corner = %v dB, want -3.01", got)
	}
	if got := lp.MagnitudeDB(10000, 48000); got > -35 {
		t.Fatalf("LP at 10 kHz = %v dB, want strong attenuation", got)
	}
}

func TestCrossover_SumNearUnity(t *testing.T) {
	xo, err := New(1000, 48000, 1)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	lp, hp := xo.LP(), xo.HP()
	for _, f := range []float64{20, 100, 500, 1000, 2000, 8000, 20000} {
		sum := lp.Response(f, 48000) + hp.Response(f, 48000)
		db := 20 * math.Log10(math.Hypot(real(sum), imag(sum)))
		if db < -0.01 || db > 3.02 {
			t.Errorf("sum at %v Hz = %.3f dB, want within [0, +3.01]", f, db)
		}
	}
}

func TestCrossover_ProcessMatchesComplementarySum(t *testing.T) {
	xo, err := New(500, 48000, 2)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	n := 2048
	input := make([]float64, 2*n)
	for i := range n {
		v := math.Sin(2 * math.Pi * 5000 * float64(i) / 48000)
		input[2*i] = v
		input[2*i+1] = -v
	}

	lo := make([]float64, len(input))
	hi := make([]float64, len(input))
	xo.ProcessInterleaved(input, lo, hi)

	rms := func(buf []float64) float64 {
		sum := 0.0
		tail := buf[len(buf)/2:]
		for _, v := range tail {
			sum += v * v
		}
		return math.Sqrt(sum / float64(len(tail)))
	}

	// Well above the corner the highpass carries the signal.
	in := rms(input)
	if got := rms(hi) / in; math.Abs(got-1) > 0.01 {
		t.Fatalf("hi/in RMS ratio = %v, want about 1", got)
	}
	if got := rms(lo) / in; got > 0.02 {
		t.Fatalf("lo/in RMS ratio = %v, want near zero", got)
	}
}

func TestCrossover_SetFreq(t *testing.T) {
	xo, err := New(1000, 48000, 1)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := xo.SetFreq(2000); err != nil {
		t.Fatalf("SetFreq() error = %v", err)
	}
	if xo.Freq() != 2000 {
		t.Fatalf("Freq() = %v, want 2000", xo.Freq())
	}
	if err := xo.SetFreq(30000); err == nil {
		t.Fatal("SetFreq above Nyquist should fail")
	}
	if xo.Freq() != 2000 {
		t.Fatalf("failed SetFreq changed frequency to %v", xo.Freq())
	}
}
