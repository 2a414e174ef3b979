package effectchain

import (
	"fmt"

	"github.com/cwbudde/algo-leveler/dsp/effects/eq"
)

type eqRuntime struct {
	fx *eq.ParametricEQ
}

func (r *eqRuntime) Configure(_ Context, s *Settings) error {
	for i, b := range s.EQ {
		if r.fx.Band(i) == b.band() {
			continue
		}

		err := r.fx.SetBand(i, b.band())
		if err != nil {
			return fmt.Errorf("effectchain: configure eq: %w", err)
		}
	}

	return nil
}

func (r *eqRuntime) Process(block []float64) { r.fx.ProcessInterleaved(block) }

func (r *eqRuntime) Reset() { r.fx.Reset() }

// cutRuntime drives a bass or treble cut from its effective frequency.
type cutRuntime struct {
	fx   *eq.CutFilter
	freq func(*Settings) float64
}

func (r *cutRuntime) Configure(_ Context, s *Settings) error {
	hz := r.freq(s)
	if hz == r.fx.Freq() {
		return nil
	}

	err := r.fx.SetFreq(hz)
	if err != nil {
		return fmt.Errorf("effectchain: configure cut filter: %w", err)
	}

	return nil
}

func (r *cutRuntime) Process(block []float64) { r.fx.ProcessInterleaved(block) }

func (r *cutRuntime) Reset() { r.fx.Reset() }
