package denoise

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-leveler/dsp/signal"
	"github.com/cwbudde/algo-leveler/internal/testutil"
)

const gateTestRate = 48000.0

// runGate streams mono input through g one hop at a time.
func runGate(t *testing.T, g *SpectralGate, in []float64) []float64 {
	t.Helper()
	hop := g.FrameSize()
	out := make([]float64, len(in))
	src := make([]float32, hop)
	dst := make([]float32, hop)
	for off := 0; off+hop <= len(in); off += hop {
		for i := range hop {
			src[i] = float32(in[off+i])
		}
		if err := g.Denoise(dst, src); err != nil {
			t.Fatalf("Denoise() error = %v", err)
		}
		for i := range hop {
			out[off+i] = float64(dst[i])
		}
	}
	return out
}

var rmsDB = testutil.RMSDB

func noise(t *testing.T, amp float64, n int) []float64 {
	t.Helper()
	src, err := signal.NewNoiseSource(signal.White, 42)
	if err != nil {
		t.Fatalf("NewNoiseSource() error = %v", err)
	}
	buf := make([]float64, n)
	src.Fill(buf)
	for i := range buf {
		buf[i] *= amp
	}
	return buf
}

func TestSpectralGate_TransparentWithoutReduction(t *testing.T) {
	g, err := NewSpectralGate(gateTestRate, 1, WithReduction(1e-9))
	if err != nil {
		t.Fatalf("NewSpectralGate() error = %v", err)
	}

	in := noise(t, 0.3, 256*40)
	out := runGate(t, g, in)

	hop := g.FrameSize()
	for i := 2 * hop; i < len(out); i++ {
		if math.Abs(out[i]-in[i-hop]) > 1e-5 {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], in[i-hop])
		}
	}
}

func TestSpectralGate_AttenuatesStationaryNoise(t *testing.T) {
	g, err := NewSpectralGate(gateTestRate, 1)
	if err != nil {
		t.Fatalf("NewSpectralGate() error = %v", err)
	}

	in := noise(t, 0.01, 256*375) // 2 s
	out := runGate(t, g, in)

	tail := len(in) / 2
	if att := rmsDB(in[tail:]) - rmsDB(out[tail:]); att < 6 {
		t.Fatalf("noise attenuation = %.1f dB, want at least 6 dB", att)
	}
}

func TestSpectralGate_PreservesToneOverNoise(t *testing.T) {
	g, err := NewSpectralGate(gateTestRate, 1)
	if err != nil {
		t.Fatalf("NewSpectralGate() error = %v", err)
	}

	const learn = 256 * 375
	const burst = 256 * 188
	in := noise(t, 0.01, learn+burst)
	for i := learn; i < len(in); i++ {
		in[i] += 0.5 * math.Sin(2*math.Pi*1000*float64(i)/gateTestRate)
	}
	out := runGate(t, g, in)

	from := learn + burst/2
	if diff := math.Abs(rmsDB(out[from:]) - rmsDB(in[from:])); diff > 0.5 {
		t.Fatalf("tone level changed by %.2f dB", diff)
	}
}

func TestSpectralGate_Stereo(t *testing.T) {
	g, err := NewSpectralGate(gateTestRate, 2, WithReduction(1e-9))
	if err != nil {
		t.Fatalf("NewSpectralGate() error = %v", err)
	}

	hop := g.FrameSize()
	src := make([]float32, 2*hop)
	dst := make([]float32, 2*hop)
	var left, right []float64
	for range 8 {
		for i := range hop {
			src[2*i] = 0.25
			src[2*i+1] = -0.5
		}
		if err := g.Denoise(dst, src); err != nil {
			t.Fatalf("Denoise() error = %v", err)
		}
		for i := range hop {
			left = append(left, float64(dst[2*i]))
			right = append(right, float64(dst[2*i+1]))
		}
	}

	last := len(left) - 1
	if math.Abs(left[last]-0.25) > 1e-5 || math.Abs(right[last]+0.5) > 1e-5 {
		t.Fatalf("channels mixed: left %v right %v", left[last], right[last])
	}
}

func TestSpectralGate_Reset(t *testing.T) {
	g, _ := NewSpectralGate(gateTestRate, 1)
	_ = runGate(t, g, noise(t, 0.5, 256*4))
	g.Reset()

	out := runGate(t, g, make([]float64, 256))
	for i, v := range out {
		if v != 0 {
			t.Fatalf("out[%d] = %v after Reset, want 0", i, v)
		}
	}
}

func TestSpectralGate_ShortBuffer(t *testing.T) {
	g, _ := NewSpectralGate(gateTestRate, 2)
	if err := g.Denoise(make([]float32, 10), make([]float32, 10)); err == nil {
		t.Fatal("expected error for short buffers")
	}
}

func TestSpectralGateLoader(t *testing.T) {
	load := SpectralGateLoader(WithNoiseRise(6))
	m, err := load(context.Background(), gateTestRate, 2)
	if err != nil {
		t.Fatalf("loader error = %v", err)
	}
	if m.FrameSize() != 256 {
		t.Fatalf("FrameSize() = %d, want 256", m.FrameSize())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := load(ctx, gateTestRate, 2); !errors.Is(err, context.Canceled) {
		t.Fatalf("loader error = %v, want context.Canceled", err)
	}
	if _, err := NewSpectralGate(-1, 1); err == nil {
		t.Fatal("expected error for negative sample rate")
	}
}

func TestSuppressor_WithSpectralGate(t *testing.T) {
	s, _ := NewSuppressor(gateTestRate, 2)
	if st := startAndWait(t, s, SpectralGateLoader()); st != StateReady {
		t.Fatalf("state = %v, want ready: %v", st, s.Err())
	}
	defer s.Close()

	buf := make([]float64, 2*480)
	for range 10 {
		if err := s.ProcessInterleaved(buf); err != nil {
			t.Fatalf("ProcessInterleaved() error = %v", err)
		}
	}
}
