package dynamics

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-leveler/dsp/core"
)

const (
	// Default gate parameters
	defaultGateThresholdDB = -50.0
	defaultGateHoldMs      = 200.0
	defaultGateReleaseMs   = 100.0

	// gateTickRate is the level measurement rate in Hz.
	gateTickRate = 20.0
	// gateOpenMs is the time constant of the opening ramp.
	gateOpenMs = 2.0

	// Gate parameter validation ranges
	minGateThresholdDB = -100.0
	maxGateThresholdDB = 0.0
	minGateHoldMs      = 0.0
	maxGateHoldMs      = 5000.0
	minGateReleaseMs   = 1.0
	maxGateReleaseMs   = 5000.0
)

// Gate is a noise gate driven by periodic RMS measurement.
//
// Every measurement tick (20 per second) the RMS level of the input is
// compared with the threshold. A level at or above the threshold opens the
// gate and re-arms the hold counter. A level below the threshold decrements
// the hold counter, and the gate closes only once the counter reaches zero.
// The gain ramps toward 1 with a fast time constant when open and toward 0
// with the release time constant when closed.
//
// Level is measured on the input before the gain is applied. Detection is
// linked across channels.
type Gate struct {
	thresholdDB float64
	holdMs      float64
	releaseMs   float64

	sampleRate float64
	channels   int

	ticker      levelTicker
	holdTicks   int
	holdCounter int
	open        bool
	gain        float64

	openCoeff  float64
	closeCoeff float64
}

// NewGate creates a closed gate with a -50 dB threshold, 200 ms hold and
// 100 ms release.
func NewGate(sampleRate float64, channels int) (*Gate, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("gate sample rate must be positive and finite: %f", sampleRate)
	}
	if channels < 1 {
		return nil, fmt.Errorf("gate channel count must be positive: %d", channels)
	}

	g := &Gate{
		thresholdDB: defaultGateThresholdDB,
		holdMs:      defaultGateHoldMs,
		releaseMs:   defaultGateReleaseMs,
		sampleRate:  sampleRate,
		channels:    channels,
		ticker:      newLevelTicker(int(math.Round(sampleRate/gateTickRate)), channels),
	}

	g.updateCoefficients()
	return g, nil
}

// SetThreshold sets the opening threshold in dB (RMS).
func (g *Gate) SetThreshold(dB float64) error {
	if dB < minGateThresholdDB || dB > maxGateThresholdDB || math.IsNaN(dB) {
		return fmt.Errorf("gate threshold must be in [%f, %f]: %f",
			minGateThresholdDB, maxGateThresholdDB, dB)
	}
	g.thresholdDB = dB
	return nil
}

// SetHold sets the minimum time the gate stays open after the level last
// reached the threshold, in milliseconds.
func (g *Gate) SetHold(ms float64) error {
	if ms < minGateHoldMs || ms > maxGateHoldMs || math.IsNaN(ms) {
		return fmt.Errorf("gate hold must be in [%f, %f]: %f",
			minGateHoldMs, maxGateHoldMs, ms)
	}
	g.holdMs = ms
	g.updateCoefficients()
	return nil
}

// SetRelease sets the closing time constant in milliseconds.
func (g *Gate) SetRelease(ms float64) error {
	if ms < minGateReleaseMs || ms > maxGateReleaseMs || math.IsNaN(ms) {
		return fmt.Errorf("gate release must be in [%f, %f]: %f",
			minGateReleaseMs, maxGateReleaseMs, ms)
	}
	g.releaseMs = ms
	g.updateCoefficients()
	return nil
}

// Threshold returns the threshold in dB.
func (g *Gate) Threshold() float64 { return g.thresholdDB }

// Hold returns the hold time in milliseconds.
func (g *Gate) Hold() float64 { return g.holdMs }

// Release returns the release time in milliseconds.
func (g *Gate) Release() float64 { return g.releaseMs }

// HoldTicks returns the hold time expressed in measurement ticks.
func (g *Gate) HoldTicks() int { return g.holdTicks }

// TickFrames returns the measurement interval in frames.
func (g *Gate) TickFrames() int { return g.ticker.intervalFrames }

// IsOpen reports whether the gate is currently open.
func (g *Gate) IsOpen() bool { return g.open }

// Gain returns the current linear gain in [0, 1].
func (g *Gate) Gain() float64 { return g.gain }

// ProcessInterleaved gates an interleaved block in place.
func (g *Gate) ProcessInterleaved(buf []float64) {
	for off := 0; off < len(buf); {
		n, levelDB, ticked := g.ticker.feed(buf[off:])
		g.applyGain(buf[off : off+n])
		if ticked {
			g.tick(levelDB)
		}
		off += n
	}
}

// Reset closes the gate and clears the measurement.
func (g *Gate) Reset() {
	g.ticker.reset()
	g.holdCounter = 0
	g.open = false
	g.gain = 0
}

func (g *Gate) tick(levelDB float64) {
	if levelDB >= g.thresholdDB {
		g.open = true
		g.holdCounter = g.holdTicks
		return
	}

	if g.holdCounter > 0 {
		g.holdCounter--
	}
	if g.holdCounter == 0 {
		g.open = false
	}
}

func (g *Gate) applyGain(seg []float64) {
	target, coeff := 0.0, g.closeCoeff
	if g.open {
		target, coeff = 1.0, g.openCoeff
	}

	ch := g.channels
	gain := g.gain
	for i := 0; i+ch <= len(seg); i += ch {
		gain = target + (gain-target)*coeff
		for j := i; j < i+ch; j++ {
			seg[j] *= gain
		}
	}
	g.gain = core.FlushDenormals(gain)
}

func (g *Gate) updateCoefficients() {
	tickMs := 1000 * float64(g.ticker.intervalFrames) / g.sampleRate
	g.holdTicks = int(math.Ceil(g.holdMs/tickMs - 1e-9))
	g.openCoeff = core.TimeConstant(gateOpenMs, g.sampleRate)
	g.closeCoeff = core.TimeConstant(g.releaseMs, g.sampleRate)
}
