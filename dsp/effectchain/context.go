package effectchain

import "github.com/cwbudde/algo-leveler/dsp/signal"

// Context provides the stream facts that stage runtimes need.
type Context struct {
	SampleRate float64
	Channels   int
	// BlockSize is the largest block in frames; runtimes preallocate for it.
	BlockSize int

	// Noise supplies background noise beds. Nil means the process-wide
	// default cache.
	Noise *signal.NoiseCache

	// Suppressor is the session's noise suppression adapter, if any.
	Suppressor Suppressor
}

// Suppressor allows the suppressor stage to drive a noise suppression
// adapter without depending on how the model is loaded.
type Suppressor interface {
	ProcessInterleaved(buf []float64) error
	Ready() bool
	Reset()
}

func (c Context) noiseCache() *signal.NoiseCache {
	if c.Noise == nil {
		return signal.DefaultNoiseCache()
	}
	return c.Noise
}

func (c Context) blockSamples() int {
	return c.BlockSize * c.Channels
}
