package mixer

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-leveler/dsp/signal"
)

const testRate = 48000.0

func newMixer(t *testing.T, channels int) *OutputMixer {
	t.Helper()
	m, err := NewOutputMixer(testRate, channels)
	if err != nil {
		t.Fatalf("NewOutputMixer() error = %v", err)
	}
	return m
}

func TestOutputMixer_DefaultIsIdentity(t *testing.T) {
	m := newMixer(t, 2)
	buf := []float64{0.5, -0.25, 1.5, -2}
	m.ProcessInterleaved(buf)
	want := []float64{0.5, -0.25, 1.5, -2}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("buf[%d] = %v, want %v", i, buf[i], want[i])
		}
	}
}

func TestOutputMixer_GainSmoothing(t *testing.T) {
	m := newMixer(t, 1)
	if err := m.SetOutputGain(-6); err != nil {
		t.Fatalf("SetOutputGain() error = %v", err)
	}

	buf := make([]float64, 4800)
	for i := range buf {
		buf[i] = 1
	}
	m.ProcessInterleaved(buf)

	if buf[0] > 0.999 || buf[0] < 0.99 {
		t.Fatalf("first sample = %v, want a small first step", buf[0])
	}
	for i := 1; i < len(buf); i++ {
		if buf[i] > buf[i-1] {
			t.Fatalf("gain ramp not monotonic at %d", i)
		}
	}
	want := math.Pow(10, -6.0/20)
	if math.Abs(buf[len(buf)-1]-want) > 1e-4 {
		t.Fatalf("settled gain = %v, want %v", buf[len(buf)-1], want)
	}

	m.Reset()
	buf = []float64{1}
	m.ProcessInterleaved(buf)
	if math.Abs(buf[0]-want) > 1e-12 {
		t.Fatalf("after Reset gain = %v, want %v", buf[0], want)
	}
}

func TestOutputMixer_NoiseBed(t *testing.T) {
	m := newMixer(t, 2)
	bed, err := signal.NewNoiseCache().Bed(signal.Pink, testRate)
	if err != nil {
		t.Fatalf("Bed() error = %v", err)
	}
	m.SetNoiseBed(bed)
	if err := m.SetNoiseLevel(-20); err != nil {
		t.Fatalf("SetNoiseLevel() error = %v", err)
	}

	buf := make([]float64, 2*480)
	m.ProcessInterleaved(buf)
	for _, v := range buf {
		if v != 0 {
			t.Fatal("noise mixed in while disabled")
		}
	}

	m.SetNoiseEnabled(true)
	m.ProcessInterleaved(buf)

	level := 0.1
	off := len(bed) / 3
	for f := range 480 {
		// The disabled block did not advance the bed.
		if math.Abs(buf[2*f]-level*bed[f]) > 1e-12 {
			t.Fatalf("left[%d] = %v, want %v", f, buf[2*f], level*bed[f])
		}
		if math.Abs(buf[2*f+1]-level*bed[off+f]) > 1e-12 {
			t.Fatalf("right[%d] = %v, want %v", f, buf[2*f+1], level*bed[off+f])
		}
	}
}

func TestOutputMixer_NoiseWraps(t *testing.T) {
	m := newMixer(t, 1)
	m.SetNoiseBed([]float64{1, 2, 3})
	_ = m.SetNoiseLevel(0)
	m.SetNoiseEnabled(true)

	buf := make([]float64, 7)
	m.ProcessInterleaved(buf)
	want := []float64{1, 2, 3, 1, 2, 3, 1}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("buf = %v, want %v", buf, want)
		}
	}
	buf = make([]float64, 2)
	m.ProcessInterleaved(buf)
	if buf[0] != 2 || buf[1] != 3 {
		t.Fatalf("continuation = %v, want [2 3]", buf)
	}
}

func TestOutputMixer_Ceiling(t *testing.T) {
	m := newMixer(t, 2)
	if err := m.SetCeiling(true, -6); err != nil {
		t.Fatalf("SetCeiling() error = %v", err)
	}
	_ = m.SetOutputGain(12)
	m.Reset()

	buf := []float64{0.9, -0.9, 0.01, -0.01}
	m.ProcessInterleaved(buf)
	c := math.Pow(10, -6.0/20)
	if buf[0] != c || buf[1] != -c {
		t.Fatalf("clamped = %v, want ±%v", buf[:2], c)
	}
	if math.Abs(buf[2]-0.01*math.Pow(10, 12.0/20)) > 1e-12 {
		t.Fatalf("quiet sample = %v", buf[2])
	}
	if on, db := m.Ceiling(); !on || db != -6 {
		t.Fatalf("Ceiling() = %v, %v", on, db)
	}
}

func TestOutputMixer_Validation(t *testing.T) {
	m := newMixer(t, 1)
	if err := m.SetOutputGain(40); err == nil {
		t.Fatal("expected error for gain above range")
	}
	if err := m.SetNoiseLevel(3); err == nil {
		t.Fatal("expected error for positive noise level")
	}
	if err := m.SetCeiling(true, math.NaN()); err == nil {
		t.Fatal("expected error for NaN ceiling")
	}
	if _, err := NewOutputMixer(0, 1); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
	if _, err := NewOutputMixer(testRate, 0); err == nil {
		t.Fatal("expected error for zero channels")
	}
}
