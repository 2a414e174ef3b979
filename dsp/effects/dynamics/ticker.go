package dynamics

import (
	"math"

	"github.com/cwbudde/algo-leveler/dsp/core"
	"github.com/cwbudde/algo-vecmath"
)

// levelTicker measures the RMS level of an interleaved stream over fixed
// measurement intervals.
type levelTicker struct {
	intervalFrames int
	channels       int

	frames int
	sumSq  float64
}

func newLevelTicker(intervalFrames, channels int) levelTicker {
	return levelTicker{intervalFrames: max(intervalFrames, 1), channels: max(channels, 1)}
}

// feed accumulates samples from the start of seg up to the next interval
// boundary. It returns the number of samples consumed and, when an interval
// completed, its RMS level in dB.
func (t *levelTicker) feed(seg []float64) (consumed int, levelDB float64, ticked bool) {
	remaining := (t.intervalFrames - t.frames) * t.channels
	take := min(remaining, len(seg)-len(seg)%t.channels)
	if take <= 0 {
		return len(seg), 0, false
	}

	part := seg[:take]
	t.sumSq += vecmath.DotProduct(part, part)
	t.frames += take / t.channels

	if t.frames < t.intervalFrames {
		return take, 0, false
	}

	meanSq := t.sumSq / float64(t.intervalFrames*t.channels)
	t.frames = 0
	t.sumSq = 0

	return take, math.Max(core.LinearPowerToDB(meanSq), core.SilenceDB), true
}

func (t *levelTicker) setInterval(intervalFrames int) {
	t.intervalFrames = max(intervalFrames, 1)
	t.reset()
}

func (t *levelTicker) reset() {
	t.frames = 0
	t.sumSq = 0
}
