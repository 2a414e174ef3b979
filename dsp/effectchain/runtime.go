package effectchain

import "github.com/cwbudde/algo-leveler/dsp/effects/dynamics"

// Runtime is the per-stage processing and configuration contract.
//
// Configure and Process run on the audio timeline, between blocks and during
// a block respectively. Reset clears signal state such as envelopes and
// filter memories without touching parameters.
type Runtime interface {
	Configure(ctx Context, s *Settings) error
	Process(block []float64)
	Reset()
}

// Reducer is implemented by stages that meter gain reduction. The value is
// safe to read from any goroutine.
type Reducer interface {
	GainReductionDB() float64
}

// BandReducer is implemented by stages that meter gain reduction per band.
type BandReducer interface {
	BandReductionDB() dynamics.BandReduction
}
