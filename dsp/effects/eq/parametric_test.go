package eq

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-leveler/dsp/filter/design"
)

const testSampleRate = 48000.0

func TestParametricEQ_DefaultIsFlat(t *testing.T) {
	e, err := NewParametricEQ(testSampleRate, 2)
	if err != nil {
		t.Fatalf("NewParametricEQ() error = %v", err)
	}

	for _, f := range []float64{30, 100, 1000, 5000, 15000} {
		if got := e.MagnitudeDB(f); math.Abs(got) > 1e-9 {
			t.Fatalf("MagnitudeDB(%v) = %v, want 0", f, got)
		}
	}

	buf := []float64{0.1, -0.2, 0.3, -0.4, 0.5, -0.6}
	want := append([]float64(nil), buf...)
	e.ProcessInterleaved(buf)
	for i := range buf {
		if math.Abs(buf[i]-want[i]) > 1e-12 {
			t.Fatalf("sample %d = %v, want %v", i, buf[i], want[i])
		}
	}
}

func TestParametricEQ_SetBand(t *testing.T) {
	e, err := NewParametricEQ(testSampleRate, 1)
	if err != nil {
		t.Fatalf("NewParametricEQ() error = %v", err)
	}

	if err := e.SetBand(2, Band{FreqHz: 1000, GainDB: 6, Q: 1, Kind: design.KindPeaking}); err != nil {
		t.Fatalf("SetBand() error = %v", err)
	}
	if got := e.MagnitudeDB(1000); math.Abs(got-6) > 1e-6 {
		t.Fatalf("MagnitudeDB(1000) = %v, want 6", got)
	}

	if err := e.SetBand(0, Band{FreqHz: 200, GainDB: 12, Q: design.ButterworthQ, Kind: design.KindHighpass}); err != nil {
		t.Fatalf("SetBand() error = %v", err)
	}
	// Highpass ignores gain: -3 dB at the corner.
	if got := e.MagnitudeDB(200) - e.Bands()[2].Coefficients(testSampleRate).MagnitudeDB(200, testSampleRate); math.Abs(got+3.0103) > 0.01 {
		t.Fatalf("highpass corner = %v dB, want -3 dB", got)
	}
}

func TestParametricEQ_SetBandValidation(t *testing.T) {
	e, err := NewParametricEQ(testSampleRate, 1)
	if err != nil {
		t.Fatalf("NewParametricEQ() error = %v", err)
	}

	tests := []struct {
		name  string
		index int
		band  Band
	}{
		{name: "index", index: NumBands, band: Band{FreqHz: 1000, Q: 1}},
		{name: "negative index", index: -1, band: Band{FreqHz: 1000, Q: 1}},
		{name: "freq low", index: 0, band: Band{FreqHz: 5, Q: 1}},
		{name: "freq nan", index: 0, band: Band{FreqHz: math.NaN(), Q: 1}},
		{name: "gain", index: 0, band: Band{FreqHz: 1000, GainDB: 30, Q: 1}},
		{name: "q", index: 0, band: Band{FreqHz: 1000, Q: 0}},
		{name: "kind", index: 0, band: Band{FreqHz: 1000, Q: 1, Kind: design.Kind(17)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := e.SetBand(tt.index, tt.band); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	if e.Bands() != DefaultBands() {
		t.Fatal("failed SetBand must not change bands")
	}
}

func TestParametricEQ_SeriesOrderIrrelevantForMagnitude(t *testing.T) {
	e, err := NewParametricEQ(testSampleRate, 1)
	if err != nil {
		t.Fatalf("NewParametricEQ() error = %v", err)
	}
	_ = e.SetBand(1, Band{FreqHz: 300, GainDB: -4, Q: 2, Kind: design.KindPeaking})
	_ = e.SetBand(3, Band{FreqHz: 3000, GainDB: 5, Q: 2, Kind: design.KindPeaking})

	want := 0.0
	for _, b := range e.Bands() {
		c := b.Coefficients(testSampleRate)
		want += c.MagnitudeDB(1500, testSampleRate)
	}
	if got := e.MagnitudeDB(1500); math.Abs(got-want) > 1e-9 {
		t.Fatalf("MagnitudeDB(1500) = %v, want %v", got, want)
	}
}

func TestNewParametricEQ_Invalid(t *testing.T) {
	if _, err := NewParametricEQ(0, 1); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
	if _, err := NewParametricEQ(testSampleRate, 0); err == nil {
		t.Fatal("expected error for zero channels")
	}
}
