package dynamics

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cwbudde/algo-leveler/dsp/core"
)

const (
	defaultAGCTargetDB = -16.0
	minAGCTargetDB     = -60.0
	maxAGCTargetDB     = 0.0

	// agcSmoothingMs is the time constant of the applied gain.
	agcSmoothingMs = 20.0
)

// Speed selects an AGC response profile.
type Speed int

// AGC speeds.
const (
	SpeedNormal Speed = iota
	SpeedSlow
	SpeedFast
)

// Profile describes how an AGC speed measures and moves its gain.
type Profile struct {
	Interval time.Duration // measurement interval
	Attack   float64       // smoothing factor per tick while gain increases
	Release  float64       // smoothing factor per tick while gain decreases
	MaxGain  float64       // linear gain ceiling
}

var profiles = map[Speed]Profile{
	SpeedSlow:   {Interval: 200 * time.Millisecond, Attack: 0.05, Release: 0.02, MaxGain: 4},
	SpeedNormal: {Interval: 100 * time.Millisecond, Attack: 0.1, Release: 0.05, MaxGain: 6},
	SpeedFast:   {Interval: 50 * time.Millisecond, Attack: 0.25, Release: 0.1, MaxGain: 8},
}

// Profile returns the response profile of s. Unknown speeds map to normal.
func (s Speed) Profile() Profile {
	if p, ok := profiles[s]; ok {
		return p
	}
	return profiles[SpeedNormal]
}

// String returns the lower-case name of s.
func (s Speed) String() string {
	switch s {
	case SpeedSlow:
		return "slow"
	case SpeedNormal:
		return "normal"
	case SpeedFast:
		return "fast"
	default:
		return fmt.Sprintf("Speed(%d)", int(s))
	}
}

// ParseSpeed maps "slow", "normal" or "fast" to a Speed.
func ParseSpeed(name string) (Speed, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "slow":
		return SpeedSlow, nil
	case "normal":
		return SpeedNormal, nil
	case "fast":
		return SpeedFast, nil
	default:
		return SpeedNormal, fmt.Errorf("agc: unknown speed %q", name)
	}
}

// AGC is an automatic gain control that steers the RMS level of the input
// toward a target.
//
// Every measurement interval the input RMS is compared with the target. The
// controller gain moves toward the gain that would hit the target, using the
// profile's attack factor when rising and release factor when falling, and
// is clamped to [AGCMinGain, profile max]. Intervals at or below the silence
// floor leave the gain unchanged. The applied gain follows the controller
// with a short one-pole smoother.
type AGC struct {
	targetDB float64
	speed    Speed
	profile  Profile

	sampleRate float64
	channels   int

	ticker       levelTicker
	gain         float64
	applied      float64
	smoothCoeff  float64
	appliedMeter meter
}

// NewAGC creates an AGC with a -16 dB target and the normal profile.
func NewAGC(sampleRate float64, channels int) (*AGC, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("agc sample rate must be positive and finite: %f", sampleRate)
	}
	if channels < 1 {
		return nil, fmt.Errorf("agc channel count must be positive: %d", channels)
	}

	a := &AGC{
		targetDB:    defaultAGCTargetDB,
		sampleRate:  sampleRate,
		channels:    channels,
		smoothCoeff: core.TimeConstant(agcSmoothingMs, sampleRate),
		ticker:      newLevelTicker(1, channels),
	}
	a.SetSpeed(SpeedNormal)
	a.Reset()

	return a, nil
}

// SetTarget sets the target RMS level in dB.
func (a *AGC) SetTarget(dB float64) error {
	if dB < minAGCTargetDB || dB > maxAGCTargetDB || math.IsNaN(dB) {
		return fmt.Errorf("agc target must be in [%f, %f]: %f", minAGCTargetDB, maxAGCTargetDB, dB)
	}
	a.targetDB = dB
	return nil
}

// SetSpeed switches the response profile. The current gain is kept and
// clamped to the new profile's range.
func (a *AGC) SetSpeed(s Speed) {
	a.speed = s
	a.profile = s.Profile()
	a.ticker.setInterval(int(math.Round(a.profile.Interval.Seconds() * a.sampleRate)))
	a.gain = core.Clamp(a.gain, AGCMinGain, a.profile.MaxGain)
}

// Target returns the target level in dB.
func (a *AGC) Target() float64 { return a.targetDB }

// Speed returns the active speed.
func (a *AGC) Speed() Speed { return a.speed }

// Gain returns the controller gain (linear).
func (a *AGC) Gain() float64 { return a.gain }

// AppliedGainDB returns the smoothed gain applied at the end of the most
// recent block, in dB. Safe for concurrent use.
func (a *AGC) AppliedGainDB() float64 { return a.appliedMeter.load() }

// CalculateOutputDB returns the steady-state output for a sustained input.
func (a *AGC) CalculateOutputDB(inputDB float64) float64 {
	return AGCSteadyStateDB(inputDB, a.targetDB, a.profile.MaxGain)
}

// ProcessInterleaved applies automatic gain to an interleaved block in place.
func (a *AGC) ProcessInterleaved(buf []float64) {
	for off := 0; off < len(buf); {
		n, levelDB, ticked := a.ticker.feed(buf[off:])
		a.applyGain(buf[off : off+n])
		if ticked {
			a.tick(levelDB)
		}
		off += n
	}
	a.appliedMeter.store(core.LinearToDB(a.applied))
}

// Reset returns the gain to unity and clears the measurement.
func (a *AGC) Reset() {
	a.ticker.reset()
	a.gain = 1
	a.applied = 1
	a.appliedMeter.store(0)
}

func (a *AGC) tick(levelDB float64) {
	if levelDB <= AGCSilenceFloorDB {
		return
	}

	target := core.DBToLinear(a.targetDB - levelDB)
	factor := a.profile.Release
	if target > a.gain {
		factor = a.profile.Attack
	}

	a.gain += (target - a.gain) * factor
	a.gain = core.Clamp(a.gain, AGCMinGain, a.profile.MaxGain)
}

func (a *AGC) applyGain(seg []float64) {
	ch := a.channels
	g, target, coeff := a.applied, a.gain, a.smoothCoeff
	for i := 0; i+ch <= len(seg); i += ch {
		g = target + (g-target)*coeff
		for j := i; j < i+ch; j++ {
			seg[j] *= g
		}
	}
	a.applied = g
}
