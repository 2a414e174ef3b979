package dynamics

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-leveler/dsp/filter/crossover"
)

func TestMultiband_UnityWhenNotCompressing(t *testing.T) {
	mc, err := NewMultibandCompressor(testSampleRate, 2)
	if err != nil {
		t.Fatalf("NewMultibandCompressor() error = %v", err)
	}

	buf := stereoSine(1000, 0.01, 9600)
	mc.Reserve(len(buf))
	mc.ProcessInterleaved(buf)

	want := 20*math.Log10(0.01) + 20*math.Log10(mc.Crossover().SumMagnitude(1000))
	if got := peakDB(buf[len(buf)/2:]); math.Abs(got-want) > 0.2 {
		t.Fatalf("peak = %.2f dB, want %.2f dB", got, want)
	}
	if gr := mc.GainReductionDB(); gr != 0 {
		t.Fatalf("GainReductionDB() = %v, want 0", gr)
	}
}

func TestMultiband_ReductionIsDeepestBand(t *testing.T) {
	mc, err := NewMultibandCompressor(testSampleRate, 1)
	if err != nil {
		t.Fatalf("NewMultibandCompressor() error = %v", err)
	}

	// Only the sub band sees a hot signal.
	buf := make([]float64, 9600)
	for i := range buf {
		buf[i] = 0.9 * math.Sin(2*math.Pi*60*float64(i)/testSampleRate)
	}
	mc.ProcessInterleaved(buf)

	r := mc.BandReductionDB()
	if !(r.Sub < r.Mid && r.Sub < r.High) {
		t.Fatalf("expected sub band to reduce most: %+v", r)
	}
	if mc.GainReductionDB() != r.Sub {
		t.Fatalf("GainReductionDB() = %v, want sub reduction %v", mc.GainReductionDB(), r.Sub)
	}
}

func TestMultiband_BandGain(t *testing.T) {
	mc, err := NewMultibandCompressor(testSampleRate, 1)
	if err != nil {
		t.Fatalf("NewMultibandCompressor() error = %v", err)
	}

	cfg := BandConfig{ThresholdDB: 0, Ratio: 1, KneeDB: 0, AttackMs: 5, ReleaseMs: 100, GainDB: 6}
	if err := mc.SetBandConfig(crossover.High, cfg); err != nil {
		t.Fatalf("SetBandConfig() error = %v", err)
	}
	if mc.BandGain(crossover.High) != 6 {
		t.Fatalf("BandGain() = %v, want 6", mc.BandGain(crossover.High))
	}

	buf := make([]float64, 9600)
	for i := range buf {
		buf[i] = 0.1 * math.Sin(2*math.Pi*12000*float64(i)/testSampleRate)
	}
	mc.ProcessInterleaved(buf)

	// 12 kHz sits in the high band; about +6 dB, give or take the
	// recombination ripple.
	if got := peakDB(buf[len(buf)/2:]) - 20*math.Log10(0.1); got < 5 || got > 7.5 {
		t.Fatalf("gain = %.2f dB, want about +6 dB", got)
	}
}

func TestMultiband_Validation(t *testing.T) {
	mc, err := NewMultibandCompressor(testSampleRate, 1)
	if err != nil {
		t.Fatalf("NewMultibandCompressor() error = %v", err)
	}

	if err := mc.SetCrossovers(3000, 200); err == nil {
		t.Fatal("descending crossovers should fail")
	}
	if err := mc.SetCrossovers(10, 200); err == nil {
		t.Fatal("crossover below 20 Hz should fail")
	}
	if err := mc.SetCrossovers(250, 4000); err != nil {
		t.Fatalf("SetCrossovers() error = %v", err)
	}
	if f1, f2 := mc.Crossovers(); f1 != 250 || f2 != 4000 {
		t.Fatalf("Crossovers() = %v, %v", f1, f2)
	}
	if err := mc.SetBandGain(5, 0); err == nil {
		t.Fatal("out of range band should fail")
	}
	if err := mc.SetBandGain(crossover.Mid, math.NaN()); err == nil {
		t.Fatal("NaN gain should fail")
	}
	if _, err := NewMultibandCompressor(0, 1); err == nil {
		t.Fatal("zero sample rate should fail")
	}
}
