package denoise

import (
	"context"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-leveler/dsp/core"
	"github.com/cwbudde/algo-leveler/dsp/window"
)

const (
	spectralGateFFTSize = 512
	spectralGateHop     = spectralGateFFTSize / 2

	defaultSpectralGateReductionDB = 20.0
	defaultSpectralGateNoiseRiseDB = 3.0 // dB per second
	defaultSpectralGateOverSub     = 2.0
	spectralGatePowerSmoothing     = 0.7
	spectralGateLearnSeconds       = 0.25
	spectralGatePowerFloor         = 1e-20
)

// SpectralGateOption configures a SpectralGate.
type SpectralGateOption func(*spectralGateConfig)

type spectralGateConfig struct {
	reductionDB float64
	noiseRiseDB float64
	overSub     float64
}

// WithReduction sets the maximum attenuation of noise-only bins in dB.
func WithReduction(dB float64) SpectralGateOption {
	return func(c *spectralGateConfig) {
		if dB > 0 && !math.IsInf(dB, 0) {
			c.reductionDB = dB
		}
	}
}

// WithNoiseRise sets how fast the noise floor estimate may climb, in dB per
// second.
func WithNoiseRise(dBPerSecond float64) SpectralGateOption {
	return func(c *spectralGateConfig) {
		if dBPerSecond > 0 && !math.IsInf(dBPerSecond, 0) {
			c.noiseRiseDB = dBPerSecond
		}
	}
}

// SpectralGate is a spectral subtraction noise suppressor.
//
// Each channel runs a 512-point STFT with 256-sample hop and square-root
// Hann analysis and synthesis windows. Per bin, the smoothed power is
// compared with a noise floor. For the first quarter second the floor
// follows the smoothed power; afterwards it follows the minimum of the
// smoothed power and otherwise rises slowly. The bin gain is
// 1 - overSub·noise/power, floored at the configured reduction.
//
// The model's frame is one hop. Its output lags the input by one hop in
// addition to the adapter latency.
type SpectralGate struct {
	sampleRate float64
	channels   int

	plan     *algofft.Plan[complex128]
	win      []float64
	invScale float64

	floorGain   float64
	riseGain    float64
	overSub     float64
	learnFrames int

	chans    []gateChannel
	spectrum []complex128
	frame    []complex128
}

type gateChannel struct {
	history []float64 // last FFT-size input samples
	overlap []float64 // overlap-add accumulator
	power   []float64
	noise   []float64
	frames  int
}

// NewSpectralGate creates a spectral gate for an interleaved stream.
func NewSpectralGate(sampleRate float64, channels int, opts ...SpectralGateOption) (*SpectralGate, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("spectral gate sample rate must be > 0: %f", sampleRate)
	}
	if channels < 1 {
		return nil, fmt.Errorf("spectral gate channel count must be positive: %d", channels)
	}

	cfg := spectralGateConfig{
		reductionDB: defaultSpectralGateReductionDB,
		noiseRiseDB: defaultSpectralGateNoiseRiseDB,
		overSub:     defaultSpectralGateOverSub,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	plan, err := algofft.NewPlan64(spectralGateFFTSize)
	if err != nil {
		return nil, fmt.Errorf("spectral gate: failed to create FFT plan: %w", err)
	}

	g := &SpectralGate{
		sampleRate:  sampleRate,
		channels:    channels,
		plan:        plan,
		win:         window.Generate(window.TypeSqrtHann, spectralGateFFTSize, window.WithPeriodic()),
		floorGain:   core.DBToLinear(-cfg.reductionDB),
		riseGain:    math.Pow(10, cfg.noiseRiseDB/10*spectralGateHop/sampleRate),
		overSub:     cfg.overSub,
		learnFrames: max(1, int(math.Round(spectralGateLearnSeconds*sampleRate/spectralGateHop))),
		chans:       make([]gateChannel, channels),
		spectrum:    make([]complex128, spectralGateFFTSize),
		frame:       make([]complex128, spectralGateFFTSize),
	}

	bins := spectralGateFFTSize/2 + 1
	for i := range g.chans {
		g.chans[i] = gateChannel{
			history: make([]float64, spectralGateFFTSize),
			overlap: make([]float64, spectralGateFFTSize),
			power:   make([]float64, bins),
			noise:   make([]float64, bins),
		}
	}

	if err := g.calibrate(); err != nil {
		return nil, err
	}

	return g, nil
}

// calibrate measures the round-trip scale of the FFT plan so the inverse is
// normalized independent of the library convention.
func (g *SpectralGate) calibrate() error {
	clear(g.spectrum)
	g.spectrum[0] = 1
	if err := g.plan.Forward(g.spectrum, g.spectrum); err != nil {
		return fmt.Errorf("spectral gate: forward FFT failed: %w", err)
	}
	if err := g.plan.Inverse(g.frame, g.spectrum); err != nil {
		return fmt.Errorf("spectral gate: inverse FFT failed: %w", err)
	}
	scale := real(g.frame[0])
	if scale == 0 || math.IsNaN(scale) {
		return fmt.Errorf("spectral gate: degenerate FFT round trip: %v", scale)
	}
	g.invScale = 1 / scale
	return nil
}

// FrameSize returns the hop size in frames.
func (g *SpectralGate) FrameSize() int { return spectralGateHop }

// Denoise processes one hop of interleaved frames.
func (g *SpectralGate) Denoise(dst, src []float32) error {
	n := spectralGateHop * g.channels
	if len(src) < n || len(dst) < n {
		return fmt.Errorf("spectral gate: need %d samples, got src %d dst %d", n, len(src), len(dst))
	}

	for c := range g.chans {
		if err := g.processChannel(&g.chans[c], dst, src, c); err != nil {
			return err
		}
	}
	return nil
}

func (g *SpectralGate) processChannel(ch *gateChannel, dst, src []float32, c int) error {
	const size, hop = spectralGateFFTSize, spectralGateHop
	stride := g.channels

	copy(ch.history, ch.history[hop:])
	for i := range hop {
		ch.history[size-hop+i] = float64(src[i*stride+c])
	}

	for i, x := range ch.history {
		g.spectrum[i] = complex(x*g.win[i], 0)
	}
	if err := g.plan.Forward(g.spectrum, g.spectrum); err != nil {
		return fmt.Errorf("spectral gate: forward FFT failed: %w", err)
	}

	g.applyGains(ch)

	if err := g.plan.Inverse(g.frame, g.spectrum); err != nil {
		return fmt.Errorf("spectral gate: inverse FFT failed: %w", err)
	}

	for i := range size {
		ch.overlap[i] += real(g.frame[i]) * g.invScale * g.win[i]
	}
	for i := range hop {
		dst[i*stride+c] = float32(ch.overlap[i])
	}
	copy(ch.overlap, ch.overlap[hop:])
	clear(ch.overlap[size-hop:])

	return nil
}

func (g *SpectralGate) applyGains(ch *gateChannel) {
	const size = spectralGateFFTSize
	half := size / 2

	for k := 0; k <= half; k++ {
		v := g.spectrum[k]
		p := real(v)*real(v) + imag(v)*imag(v)

		switch {
		case ch.frames == 0:
			ch.power[k] = p
			ch.noise[k] = p
		case ch.frames < g.learnFrames:
			ch.power[k] = spectralGatePowerSmoothing*ch.power[k] + (1-spectralGatePowerSmoothing)*p
			ch.noise[k] = ch.power[k]
		default:
			ch.power[k] = spectralGatePowerSmoothing*ch.power[k] + (1-spectralGatePowerSmoothing)*p
			ch.noise[k] = math.Min(ch.noise[k]*g.riseGain, ch.power[k])
		}

		gain := g.floorGain
		if ch.power[k] > spectralGatePowerFloor {
			gain = math.Max(g.floorGain, 1-g.overSub*ch.noise[k]/ch.power[k])
		}

		g.spectrum[k] = v * complex(gain, 0)
		if k > 0 && k < half {
			g.spectrum[size-k] = complex(real(g.spectrum[k]), -imag(g.spectrum[k]))
		}
	}
	if ch.frames < g.learnFrames {
		ch.frames++
	}
}

// Reset clears the analysis history, the overlap accumulator and the noise
// estimate.
func (g *SpectralGate) Reset() {
	for i := range g.chans {
		ch := &g.chans[i]
		clear(ch.history)
		clear(ch.overlap)
		clear(ch.power)
		clear(ch.noise)
		ch.frames = 0
	}
}

// SpectralGateLoader returns a [Loader] that builds a [SpectralGate].
func SpectralGateLoader(opts ...SpectralGateOption) Loader {
	return func(ctx context.Context, sampleRate float64, channels int) (Model, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return NewSpectralGate(sampleRate, channels, opts...)
	}
}
