package dynamics

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-leveler/dsp/core"
)

const (
	// Default compressor parameters
	defaultCompressorThresholdDB = -24.0
	defaultCompressorRatio       = 4.0
	defaultCompressorKneeDB      = 12.0
	defaultCompressorAttackMs    = 3.0
	defaultCompressorReleaseMs   = 250.0
	defaultCompressorMakeupDB    = 0.0

	// Parameter validation ranges
	minCompressorRatio     = 1.0
	maxCompressorRatio     = 100.0
	minCompressorAttackMs  = 0.1
	maxCompressorAttackMs  = 1000.0
	minCompressorReleaseMs = 1.0
	maxCompressorReleaseMs = 5000.0
	minCompressorKneeDB    = 0.0
	maxCompressorKneeDB    = 40.0
)

// CompressorMetrics holds metering information for visualization and analysis.
type CompressorMetrics struct {
	InputPeak     float64 // Maximum input level since last reset
	OutputPeak    float64 // Maximum output level since last reset
	GainReduction float64 // Deepest reduction in dB since last reset (<= 0)
}

// Compressor implements a soft-knee feed-forward compressor for interleaved
// multichannel audio.
//
// Detection is linked across channels: the loudest channel of each frame
// drives a peak envelope follower, and the resulting gain is applied to every
// channel so the stereo image does not shift. The gain computer follows
// [CompressDB].
//
// Processing is single-threaded. Parameter setters must be called from the
// processing goroutine or between blocks. GainReductionDB may be read from
// any goroutine.
type Compressor struct {
	// User-configurable parameters
	thresholdDB  float64
	ratio        float64
	kneeDB       float64
	attackMs     float64
	releaseMs    float64
	makeupGainDB float64

	sampleRate float64
	channels   int

	// Envelope follower state
	peakLevel float64

	// Computed coefficients (cached for performance)
	attackCoeff   float64
	releaseCoeff  float64
	makeupGainLin float64

	reduction meter
	metrics   CompressorMetrics
}

// NewCompressor creates a soft-knee compressor for an interleaved stream
// with the given channel count.
//
// Default parameters:
//   - Threshold: -24 dB
//   - Ratio: 4:1
//   - Knee: 12 dB
//   - Attack: 3 ms
//   - Release: 250 ms
//   - Makeup: 0 dB
func NewCompressor(sampleRate float64, channels int) (*Compressor, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("compressor sample rate must be positive and finite: %f", sampleRate)
	}
	if channels < 1 {
		return nil, fmt.Errorf("compressor channel count must be positive: %d", channels)
	}

	c := &Compressor{
		thresholdDB:  defaultCompressorThresholdDB,
		ratio:        defaultCompressorRatio,
		kneeDB:       defaultCompressorKneeDB,
		attackMs:     defaultCompressorAttackMs,
		releaseMs:    defaultCompressorReleaseMs,
		makeupGainDB: defaultCompressorMakeupDB,
		sampleRate:   sampleRate,
		channels:     channels,
	}

	c.updateCoefficients()
	return c, nil
}

// SetThreshold sets compression threshold in dB.
func (c *Compressor) SetThreshold(dB float64) error {
	if math.IsNaN(dB) || math.IsInf(dB, 0) {
		return fmt.Errorf("compressor threshold must be finite: %f", dB)
	}
	c.thresholdDB = dB
	return nil
}

// SetRatio sets compression ratio.
// Range: 1.0 to 100.0
//   - 1.0 = no compression
//   - 4.0 = 4:1 (musical compression)
//   - 20.0 and above = limiting
func (c *Compressor) SetRatio(ratio float64) error {
	if ratio < minCompressorRatio || ratio > maxCompressorRatio ||
		math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return fmt.Errorf("compressor ratio must be in [%f, %f]: %f",
			minCompressorRatio, maxCompressorRatio, ratio)
	}
	c.ratio = ratio
	return nil
}

// SetKnee sets soft-knee width in dB. 0 dB is a hard knee.
func (c *Compressor) SetKnee(kneeDB float64) error {
	if kneeDB < minCompressorKneeDB || kneeDB > maxCompressorKneeDB ||
		math.IsNaN(kneeDB) || math.IsInf(kneeDB, 0) {
		return fmt.Errorf("compressor knee must be in [%f, %f]: %f",
			minCompressorKneeDB, maxCompressorKneeDB, kneeDB)
	}
	c.kneeDB = kneeDB
	return nil
}

// SetAttack sets attack time in milliseconds.
// Range: 0.1 to 1000 ms. Faster attack = quicker compression response.
func (c *Compressor) SetAttack(ms float64) error {
	if ms < minCompressorAttackMs || ms > maxCompressorAttackMs ||
		math.IsNaN(ms) || math.IsInf(ms, 0) {
		return fmt.Errorf("compressor attack must be in [%f, %f]: %f",
			minCompressorAttackMs, maxCompressorAttackMs, ms)
	}
	c.attackMs = ms
	c.updateTimeConstants()
	return nil
}

// SetRelease sets release time in milliseconds.
// Range: 1 to 5000 ms. Slower release = smoother gain recovery.
func (c *Compressor) SetRelease(ms float64) error {
	if ms < minCompressorReleaseMs || ms > maxCompressorReleaseMs ||
		math.IsNaN(ms) || math.IsInf(ms, 0) {
		return fmt.Errorf("compressor release must be in [%f, %f]: %f",
			minCompressorReleaseMs, maxCompressorReleaseMs, ms)
	}
	c.releaseMs = ms
	c.updateTimeConstants()
	return nil
}

// SetMakeupGain sets makeup gain in dB, applied after gain reduction.
func (c *Compressor) SetMakeupGain(dB float64) error {
	if math.IsNaN(dB) || math.IsInf(dB, 0) {
		return fmt.Errorf("compressor makeup gain must be finite: %f", dB)
	}
	c.makeupGainDB = dB
	c.updateCoefficients()
	return nil
}

// Threshold returns the current threshold in dB.
func (c *Compressor) Threshold() float64 { return c.thresholdDB }

// Ratio returns the current compression ratio.
func (c *Compressor) Ratio() float64 { return c.ratio }

// Knee returns the current knee width in dB.
func (c *Compressor) Knee() float64 { return c.kneeDB }

// Attack returns the current attack time in milliseconds.
func (c *Compressor) Attack() float64 { return c.attackMs }

// Release returns the current release time in milliseconds.
func (c *Compressor) Release() float64 { return c.releaseMs }

// MakeupGain returns the current makeup gain in dB.
func (c *Compressor) MakeupGain() float64 { return c.makeupGainDB }

// SampleRate returns the current sample rate in Hz.
func (c *Compressor) SampleRate() float64 { return c.sampleRate }

// Channels returns the interleaved channel count.
func (c *Compressor) Channels() int { return c.channels }

// ProcessInterleaved compresses an interleaved block in place.
func (c *Compressor) ProcessInterleaved(buf []float64) {
	ch := c.channels
	reductionDB := 0.0

	for i := 0; i+ch <= len(buf); i += ch {
		frame := buf[i : i+ch]

		inputLevel := 0.0
		for _, x := range frame {
			inputLevel = math.Max(inputLevel, math.Abs(x))
		}

		if inputLevel > c.peakLevel {
			c.peakLevel += (inputLevel - c.peakLevel) * c.attackCoeff
		} else {
			c.peakLevel = inputLevel + (c.peakLevel-inputLevel)*c.releaseCoeff
		}
		c.peakLevel = core.FlushDenormals(c.peakLevel)

		reductionDB = c.reductionAt(c.peakLevel)
		gain := core.DBToLinear(reductionDB) * c.makeupGainLin

		outputLevel := 0.0
		for j := range frame {
			frame[j] *= gain
			outputLevel = math.Max(outputLevel, math.Abs(frame[j]))
		}

		c.updateMetrics(inputLevel, outputLevel, reductionDB)
	}

	c.reduction.store(reductionDB)
}

// GainReductionDB returns the gain reduction at the end of the most recently
// processed block, in dB (<= 0). Safe for concurrent use.
func (c *Compressor) GainReductionDB() float64 {
	return c.reduction.load()
}

// CalculateOutputDB computes the steady-state output level in dB for a
// sustained input at inputDB, including makeup gain.
func (c *Compressor) CalculateOutputDB(inputDB float64) float64 {
	return CompressDB(inputDB, c.thresholdDB, c.ratio, c.kneeDB) + c.makeupGainDB
}

// Reset clears envelope follower, metering and metrics.
func (c *Compressor) Reset() {
	c.peakLevel = 0
	c.reduction.store(0)
	c.metrics = CompressorMetrics{}
}

// Metrics returns current metering values.
func (c *Compressor) Metrics() CompressorMetrics {
	return c.metrics
}

// ResetMetrics clears metering state.
func (c *Compressor) ResetMetrics() {
	c.metrics = CompressorMetrics{}
}

// updateCoefficients recalculates all internal cached values.
func (c *Compressor) updateCoefficients() {
	c.makeupGainLin = core.DBToLinear(c.makeupGainDB)
	c.updateTimeConstants()
}

// updateTimeConstants recalculates attack and release coefficients.
func (c *Compressor) updateTimeConstants() {
	// Attack: 1 - exp(-ln2 / (attack_sec * sample_rate))
	c.attackCoeff = 1.0 - math.Exp(-math.Ln2/(c.attackMs*0.001*c.sampleRate))

	// Release: exp(-ln2 / (release_sec * sample_rate))
	c.releaseCoeff = math.Exp(-math.Ln2 / (c.releaseMs * 0.001 * c.sampleRate))
}

// reductionAt returns the static gain change in dB for an envelope level.
func (c *Compressor) reductionAt(level float64) float64 {
	if level <= 0 {
		return 0
	}

	levelDB := core.LevelDB(level)
	return CompressDB(levelDB, c.thresholdDB, c.ratio, c.kneeDB) - levelDB
}

// updateMetrics tracks peak levels and gain reduction.
func (c *Compressor) updateMetrics(inputLevel, outputLevel, reductionDB float64) {
	if inputLevel > c.metrics.InputPeak {
		c.metrics.InputPeak = inputLevel
	}
	if outputLevel > c.metrics.OutputPeak {
		c.metrics.OutputPeak = outputLevel
	}
	if reductionDB < c.metrics.GainReduction {
		c.metrics.GainReduction = reductionDB
	}
}
