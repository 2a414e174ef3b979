package effectchain

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-leveler/dsp/effects/dynamics"
)

type compressorRuntime struct {
	fx *dynamics.Compressor
}

func (r *compressorRuntime) Configure(_ Context, s *Settings) error {
	c := s.Compressor

	err := r.fx.SetThreshold(c.ThresholdDB)
	if err != nil {
		return fmt.Errorf("effectchain: configure compressor threshold: %w", err)
	}

	err = r.fx.SetRatio(c.Ratio)
	if err != nil {
		return fmt.Errorf("effectchain: configure compressor ratio: %w", err)
	}

	err = r.fx.SetKnee(c.KneeDB)
	if err != nil {
		return fmt.Errorf("effectchain: configure compressor knee: %w", err)
	}

	err = r.fx.SetAttack(c.AttackMs)
	if err != nil {
		return fmt.Errorf("effectchain: configure compressor attack: %w", err)
	}

	err = r.fx.SetRelease(c.ReleaseMs)
	if err != nil {
		return fmt.Errorf("effectchain: configure compressor release: %w", err)
	}

	err = r.fx.SetMakeupGain(c.MakeupGainDB)
	if err != nil {
		return fmt.Errorf("effectchain: configure compressor makeup gain: %w", err)
	}

	return nil
}

func (r *compressorRuntime) Process(block []float64) { r.fx.ProcessInterleaved(block) }

func (r *compressorRuntime) Reset() { r.fx.Reset() }

func (r *compressorRuntime) GainReductionDB() float64 { return r.fx.GainReductionDB() }

type multibandRuntime struct {
	fx *dynamics.MultibandCompressor
}

func (r *multibandRuntime) Configure(ctx Context, s *Settings) error {
	f1, f2 := crossoverFreqs(s, ctx.SampleRate)

	err := r.fx.SetCrossovers(f1, f2)
	if err != nil {
		return fmt.Errorf("effectchain: configure multiband crossovers: %w", err)
	}

	for band, b := range s.Bands {
		err = r.fx.SetBandConfig(band, b.config())
		if err != nil {
			return fmt.Errorf("effectchain: configure multiband: %w", err)
		}
	}

	return nil
}

func (r *multibandRuntime) Process(block []float64) { r.fx.ProcessInterleaved(block) }

func (r *multibandRuntime) Reset() { r.fx.Reset() }

func (r *multibandRuntime) GainReductionDB() float64 { return r.fx.GainReductionDB() }

func (r *multibandRuntime) BandReductionDB() dynamics.BandReduction { return r.fx.BandReductionDB() }

// crossoverFreqs keeps both crossovers below 90% of Nyquist at low sample
// rates, the lower one at most an octave under the upper one.
func crossoverFreqs(s *Settings, sampleRate float64) (f1, f2 float64) {
	f2 = math.Min(s.Crossover2Hz, 0.45*sampleRate)
	f1 = s.Crossover1Hz
	if f1 >= f2 {
		f1 = f2 / 2
	}
	return f1, f2
}

type preLimiterRuntime struct {
	fx *dynamics.Limiter
}

func (r *preLimiterRuntime) Configure(Context, *Settings) error { return nil }

func (r *preLimiterRuntime) Process(block []float64) { r.fx.ProcessInterleaved(block) }

func (r *preLimiterRuntime) Reset() { r.fx.Reset() }

type limiterRuntime struct {
	fx *dynamics.Limiter
}

func (r *limiterRuntime) Configure(_ Context, s *Settings) error {
	err := r.fx.SetCeiling(s.LimiterThresholdDB)
	if err != nil {
		return fmt.Errorf("effectchain: configure limiter threshold: %w", err)
	}

	err = r.fx.SetAttack(s.LimiterAttackMs)
	if err != nil {
		return fmt.Errorf("effectchain: configure limiter attack: %w", err)
	}

	err = r.fx.SetRelease(s.LimiterReleaseMs)
	if err != nil {
		return fmt.Errorf("effectchain: configure limiter release: %w", err)
	}

	return nil
}

func (r *limiterRuntime) Process(block []float64) { r.fx.ProcessInterleaved(block) }

func (r *limiterRuntime) Reset() { r.fx.Reset() }

func (r *limiterRuntime) GainReductionDB() float64 { return r.fx.GainReductionDB() }

type gateRuntime struct {
	fx *dynamics.Gate
}

func (r *gateRuntime) Configure(_ Context, s *Settings) error {
	err := r.fx.SetThreshold(s.GateThresholdDB)
	if err != nil {
		return fmt.Errorf("effectchain: configure gate threshold: %w", err)
	}

	err = r.fx.SetHold(s.GateHoldMs)
	if err != nil {
		return fmt.Errorf("effectchain: configure gate hold: %w", err)
	}

	err = r.fx.SetRelease(s.GateReleaseMs)
	if err != nil {
		return fmt.Errorf("effectchain: configure gate release: %w", err)
	}

	return nil
}

func (r *gateRuntime) Process(block []float64) { r.fx.ProcessInterleaved(block) }

func (r *gateRuntime) Reset() { r.fx.Reset() }

type agcRuntime struct {
	fx *dynamics.AGC
}

func (r *agcRuntime) Configure(_ Context, s *Settings) error {
	err := r.fx.SetTarget(s.AGCTargetDB)
	if err != nil {
		return fmt.Errorf("effectchain: configure agc target: %w", err)
	}

	r.fx.SetSpeed(s.AGCSpeed)

	return nil
}

func (r *agcRuntime) Process(block []float64) { r.fx.ProcessInterleaved(block) }

func (r *agcRuntime) Reset() { r.fx.Reset() }
