package dynamics

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-leveler/dsp/core"
	"github.com/cwbudde/algo-leveler/dsp/filter/crossover"
	"github.com/cwbudde/algo-vecmath"
)

const (
	// Default crossover frequencies
	defaultCrossover1Hz = 200.0
	defaultCrossover2Hz = 3000.0

	minCrossoverFrequency = 20.0
)

// BandConfig holds the compressor configuration for a single frequency band.
// GainDB is the band's makeup gain, applied after its compressor.
type BandConfig struct {
	ThresholdDB float64
	Ratio       float64
	KneeDB      float64
	AttackMs    float64
	ReleaseMs   float64
	GainDB      float64
}

// BandReduction holds the most recent gain reduction of each band in dB.
type BandReduction struct {
	Sub  float64
	Mid  float64
	High float64
}

// MultibandMetrics holds per-band metering information.
type MultibandMetrics struct {
	Bands [crossover.NumBands]CompressorMetrics // ordered sub, mid, high
}

// MultibandCompressor splits an interleaved signal into sub, mid and high
// bands with [crossover.ThreeBand], compresses each band with its own
// [Compressor], applies a per-band linear makeup gain and sums the bands.
//
// Signal flow:
//
//	input → crossover1 → sub  → [compressor] → [gain] → ╲
//	                  ↘ crossover2 → mid  → [compressor] → [gain] →  + → output
//	                              ↘ high → [compressor] → [gain] → ╱
//
// The combined gain reduction is the deepest reduction of the three bands.
type MultibandCompressor struct {
	xover       *crossover.ThreeBand
	compressors [crossover.NumBands]*Compressor
	gainDB      [crossover.NumBands]float64
	gainLin     [crossover.NumBands]float64
	bands       [crossover.NumBands][]float64

	sampleRate float64
	channels   int
}

// NewMultibandCompressor creates a three-band compressor with crossovers at
// 200 Hz and 3 kHz. Each band starts with the [NewCompressor] defaults and
// 0 dB makeup.
func NewMultibandCompressor(sampleRate float64, channels int) (*MultibandCompressor, error) {
	if err := validateMultibandParams(defaultCrossover1Hz, defaultCrossover2Hz, sampleRate); err != nil {
		return nil, err
	}

	xo, err := crossover.NewThreeBand(defaultCrossover1Hz, defaultCrossover2Hz, sampleRate, channels)
	if err != nil {
		return nil, fmt.Errorf("multiband compressor: %w", err)
	}

	mc := &MultibandCompressor{
		xover:      xo,
		sampleRate: sampleRate,
		channels:   channels,
	}

	for i := range mc.compressors {
		c, err := NewCompressor(sampleRate, channels)
		if err != nil {
			return nil, fmt.Errorf("multiband compressor: band %d: %w", i, err)
		}
		mc.compressors[i] = c
		mc.gainLin[i] = 1
	}

	return mc, nil
}

// Reserve preallocates band buffers for blocks of up to n interleaved
// samples so processing does not allocate.
func (mc *MultibandCompressor) Reserve(n int) {
	for i := range mc.bands {
		mc.bands[i] = core.EnsureLen(mc.bands[i], n)
	}
	mc.xover.Reserve(n)
}

// SetCrossovers moves both crossover frequencies. freq1 must be below freq2.
func (mc *MultibandCompressor) SetCrossovers(freq1, freq2 float64) error {
	if err := validateMultibandParams(freq1, freq2, mc.sampleRate); err != nil {
		return err
	}
	if err := mc.xover.SetFreqs(freq1, freq2); err != nil {
		return fmt.Errorf("multiband compressor: %w", err)
	}
	return nil
}

// Crossovers returns the two crossover frequencies in Hz.
func (mc *MultibandCompressor) Crossovers() (freq1, freq2 float64) {
	return mc.xover.Freqs()
}

// Crossover returns the band splitter for analysis.
func (mc *MultibandCompressor) Crossover() *crossover.ThreeBand {
	return mc.xover
}

// Band returns the compressor for band i (crossover.Sub, Mid or High).
func (mc *MultibandCompressor) Band(i int) *Compressor {
	return mc.compressors[i]
}

// SetBandGain sets the makeup gain of a band in dB.
func (mc *MultibandCompressor) SetBandGain(band int, dB float64) error {
	if err := mc.checkBand(band); err != nil {
		return err
	}
	if math.IsNaN(dB) || math.IsInf(dB, 0) {
		return fmt.Errorf("multiband compressor: band %d gain must be finite: %f", band, dB)
	}
	mc.gainDB[band] = dB
	mc.gainLin[band] = core.DBToLinear(dB)
	return nil
}

// BandGain returns the makeup gain of a band in dB.
func (mc *MultibandCompressor) BandGain(band int) float64 {
	return mc.gainDB[band]
}

// SetBandConfig applies a complete band configuration.
func (mc *MultibandCompressor) SetBandConfig(band int, cfg BandConfig) error {
	if err := mc.checkBand(band); err != nil {
		return err
	}

	c := mc.compressors[band]
	if err := c.SetThreshold(cfg.ThresholdDB); err != nil {
		return fmt.Errorf("multiband compressor: band %d: %w", band, err)
	}
	if err := c.SetRatio(cfg.Ratio); err != nil {
		return fmt.Errorf("multiband compressor: band %d: %w", band, err)
	}
	if err := c.SetKnee(cfg.KneeDB); err != nil {
		return fmt.Errorf("multiband compressor: band %d: %w", band, err)
	}
	if err := c.SetAttack(cfg.AttackMs); err != nil {
		return fmt.Errorf("multiband compressor: band %d: %w", band, err)
	}
	if err := c.SetRelease(cfg.ReleaseMs); err != nil {
		return fmt.Errorf("multiband compressor: band %d: %w", band, err)
	}

	return mc.SetBandGain(band, cfg.GainDB)
}

// ProcessInterleaved compresses an interleaved block in place.
func (mc *MultibandCompressor) ProcessInterleaved(buf []float64) {
	n := len(buf)
	if n == 0 {
		return
	}
	if len(mc.bands[0]) < n {
		mc.Reserve(n)
	}

	sub, mid, high := mc.bands[crossover.Sub][:n], mc.bands[crossover.Mid][:n], mc.bands[crossover.High][:n]
	mc.xover.Split(buf, sub, mid, high)

	for i, band := range [...][]float64{sub, mid, high} {
		mc.compressors[i].ProcessInterleaved(band)
		if mc.gainLin[i] != 1 {
			vecmath.ScaleBlock(band, band, mc.gainLin[i])
		}
	}

	copy(buf, sub)
	vecmath.AddBlockInPlace(buf, mid)
	vecmath.AddBlockInPlace(buf, high)
}

// GainReductionDB returns the deepest of the three bands' most recent
// reductions in dB.
func (mc *MultibandCompressor) GainReductionDB() float64 {
	r := mc.BandReductionDB()
	return math.Min(r.Sub, math.Min(r.Mid, r.High))
}

// BandReductionDB returns the most recent gain reduction of every band.
// Safe for concurrent use.
func (mc *MultibandCompressor) BandReductionDB() BandReduction {
	return BandReduction{
		Sub:  mc.compressors[crossover.Sub].GainReductionDB(),
		Mid:  mc.compressors[crossover.Mid].GainReductionDB(),
		High: mc.compressors[crossover.High].GainReductionDB(),
	}
}

// Reset clears crossover and compressor states.
func (mc *MultibandCompressor) Reset() {
	mc.xover.Reset()
	for _, c := range mc.compressors {
		c.Reset()
	}
}

// Metrics returns per-band metering values.
func (mc *MultibandCompressor) Metrics() MultibandMetrics {
	var m MultibandMetrics
	for i, c := range mc.compressors {
		m.Bands[i] = c.Metrics()
	}
	return m
}

func (mc *MultibandCompressor) checkBand(band int) error {
	if band < 0 || band >= crossover.NumBands {
		return fmt.Errorf("multiband compressor: band index %d out of range [0, %d)", band, crossover.NumBands)
	}
	return nil
}

func validateMultibandParams(freq1, freq2, sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("multiband compressor: sample rate must be positive and finite: %f", sampleRate)
	}
	if freq1 < minCrossoverFrequency {
		return fmt.Errorf("multiband compressor: crossover frequency %.1f below minimum %.1f Hz", freq1, minCrossoverFrequency)
	}
	if freq2 <= freq1 {
		return fmt.Errorf("multiband compressor: crossover frequencies must be ascending: %.1f, %.1f", freq1, freq2)
	}
	if freq2 >= sampleRate/2 {
		return fmt.Errorf("multiband compressor: crossover frequency %.1f must be below Nyquist %.1f Hz", freq2, sampleRate/2)
	}
	return nil
}
