package effectchain

import (
	"github.com/cwbudde/algo-leveler/dsp/effects/dynamics"
	"github.com/cwbudde/algo-leveler/dsp/effects/eq"
	"github.com/cwbudde/algo-leveler/dsp/effects/mixer"
)

// DefaultRegistry returns a Registry pre-populated with every built-in stage.
//
//nolint:funlen
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.MustRegister(StageCompressor, func(ctx Context) (Runtime, error) {
		fx, err := dynamics.NewCompressor(ctx.SampleRate, ctx.Channels)
		if err != nil {
			return nil, err
		}

		return &compressorRuntime{fx: fx}, nil
	})
	r.MustRegister(StageMultiband, func(ctx Context) (Runtime, error) {
		fx, err := dynamics.NewMultibandCompressor(ctx.SampleRate, ctx.Channels)
		if err != nil {
			return nil, err
		}

		fx.Reserve(ctx.blockSamples())

		return &multibandRuntime{fx: fx}, nil
	})
	r.MustRegister(StagePreLimiter, func(ctx Context) (Runtime, error) {
		fx, err := dynamics.NewPreLimiter(ctx.SampleRate, ctx.Channels)
		if err != nil {
			return nil, err
		}

		return &preLimiterRuntime{fx: fx}, nil
	})
	r.MustRegister(StageSuppressor, func(ctx Context) (Runtime, error) {
		return &suppressorRuntime{fx: ctx.Suppressor}, nil
	})
	r.MustRegister(StageBassCut, func(ctx Context) (Runtime, error) {
		fx, err := eq.NewBassCut(ctx.SampleRate, ctx.Channels)
		if err != nil {
			return nil, err
		}

		return &cutRuntime{fx: fx, freq: (*Settings).EffectiveBassCutHz}, nil
	})
	r.MustRegister(StageEQ, func(ctx Context) (Runtime, error) {
		fx, err := eq.NewParametricEQ(ctx.SampleRate, ctx.Channels)
		if err != nil {
			return nil, err
		}

		return &eqRuntime{fx: fx}, nil
	})
	r.MustRegister(StageTrebleCut, func(ctx Context) (Runtime, error) {
		fx, err := eq.NewTrebleCut(ctx.SampleRate, ctx.Channels)
		if err != nil {
			return nil, err
		}

		return &cutRuntime{fx: fx, freq: (*Settings).EffectiveTrebleCutHz}, nil
	})
	r.MustRegister(StageGate, func(ctx Context) (Runtime, error) {
		fx, err := dynamics.NewGate(ctx.SampleRate, ctx.Channels)
		if err != nil {
			return nil, err
		}

		return &gateRuntime{fx: fx}, nil
	})
	r.MustRegister(StageAGC, func(ctx Context) (Runtime, error) {
		fx, err := dynamics.NewAGC(ctx.SampleRate, ctx.Channels)
		if err != nil {
			return nil, err
		}

		return &agcRuntime{fx: fx}, nil
	})
	r.MustRegister(StageLimiter, func(ctx Context) (Runtime, error) {
		fx, err := dynamics.NewLimiter(ctx.SampleRate, ctx.Channels)
		if err != nil {
			return nil, err
		}

		return &limiterRuntime{fx: fx}, nil
	})
	r.MustRegister(StageMixer, func(ctx Context) (Runtime, error) {
		fx, err := mixer.NewOutputMixer(ctx.SampleRate, ctx.Channels)
		if err != nil {
			return nil, err
		}

		fx.Reserve(ctx.blockSamples())

		return &mixerRuntime{fx: fx}, nil
	})

	return r
}
