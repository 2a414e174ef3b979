package effectchain

import (
	"fmt"

	"github.com/cwbudde/algo-leveler/dsp/effects/mixer"
)

// suppressorRuntime wraps the session's noise suppression adapter. A block
// the adapter cannot process passes unchanged.
type suppressorRuntime struct {
	fx Suppressor
}

func (r *suppressorRuntime) Configure(Context, *Settings) error { return nil }

func (r *suppressorRuntime) Process(block []float64) {
	if r.fx == nil {
		return
	}

	_ = r.fx.ProcessInterleaved(block)
}

func (r *suppressorRuntime) Reset() {
	if r.fx != nil {
		r.fx.Reset()
	}
}

type mixerRuntime struct {
	fx *mixer.OutputMixer
}

// Configure installs the noise bed for the selected color. Beds come from
// the shared cache; Builder.Prepare warms it on the control timeline.
func (r *mixerRuntime) Configure(ctx Context, s *Settings) error {
	err := r.fx.SetOutputGain(s.OutputGainDB)
	if err != nil {
		return fmt.Errorf("effectchain: configure mixer output gain: %w", err)
	}

	err = r.fx.SetCeiling(s.LimiterEnabled, s.LimiterThresholdDB)
	if err != nil {
		return fmt.Errorf("effectchain: configure mixer ceiling: %w", err)
	}

	r.fx.SetNoiseEnabled(s.NoiseEnabled)
	if !s.NoiseEnabled {
		return nil
	}

	err = r.fx.SetNoiseLevel(s.NoiseLevelDB)
	if err != nil {
		return fmt.Errorf("effectchain: configure mixer noise level: %w", err)
	}

	bed, err := ctx.noiseCache().Bed(s.NoiseType, ctx.SampleRate)
	if err != nil {
		return fmt.Errorf("effectchain: configure mixer noise: %w", err)
	}

	r.fx.SetNoiseBed(bed)

	return nil
}

func (r *mixerRuntime) Process(block []float64) { r.fx.ProcessInterleaved(block) }

func (r *mixerRuntime) Reset() { r.fx.Reset() }
