package effectchain

import (
	"github.com/cwbudde/algo-leveler/dsp/effects/dynamics"
	"github.com/cwbudde/algo-leveler/dsp/effects/eq"
	"github.com/cwbudde/algo-leveler/dsp/filter/design"
	"github.com/cwbudde/algo-leveler/dsp/signal"
)

// CompressorSettings configures the single-band compressor.
type CompressorSettings struct {
	ThresholdDB  float64
	Ratio        float64
	KneeDB       float64
	AttackMs     float64
	ReleaseMs    float64
	MakeupGainDB float64
}

// BandSettings configures one band of the multiband compressor. GainDB is
// the band's own makeup, independent of the single-band makeup.
type BandSettings struct {
	ThresholdDB float64
	Ratio       float64
	KneeDB      float64
	AttackMs    float64
	ReleaseMs   float64
	GainDB      float64
}

// EQBandSettings configures one equalizer band.
type EQBandSettings struct {
	FreqHz float64
	GainDB float64
	Q      float64
	Type   design.Kind
}

// Settings is the complete parameter set of one processing graph. It is a
// plain value: copies are independent snapshots.
type Settings struct {
	Enabled bool

	CompressorEnabled bool
	Compressor        CompressorSettings

	MultibandEnabled bool
	Crossover1Hz     float64
	Crossover2Hz     float64
	Bands            [3]BandSettings // sub, mid, high

	EQEnabled bool
	EQ        [eq.NumBands]EQBandSettings

	FiltersEnabled bool
	BassCutHz      float64
	TrebleCutHz    float64

	NoiseSuppressionEnabled bool

	GateEnabled     bool
	GateThresholdDB float64
	GateHoldMs      float64
	GateReleaseMs   float64

	AGCEnabled  bool
	AGCTargetDB float64
	AGCSpeed    dynamics.Speed

	LimiterEnabled     bool
	LimiterThresholdDB float64
	LimiterAttackMs    float64
	LimiterReleaseMs   float64

	NoiseEnabled bool
	NoiseLevelDB float64
	NoiseType    signal.Color

	OutputGainDB float64
}

// DefaultSettings returns the settings of a new session: processing
// enabled, every optional stage off.
func DefaultSettings() Settings {
	s := Settings{
		Enabled: true,
		Compressor: CompressorSettings{
			ThresholdDB:  -24,
			Ratio:        4,
			KneeDB:       12,
			AttackMs:     3,
			ReleaseMs:    250,
			MakeupGainDB: 0,
		},
		Crossover1Hz: 200,
		Crossover2Hz: 3000,
		Bands: [3]BandSettings{
			{ThresholdDB: -24, Ratio: 4, KneeDB: 12, AttackMs: 10, ReleaseMs: 300},
			{ThresholdDB: -24, Ratio: 3, KneeDB: 12, AttackMs: 5, ReleaseMs: 200},
			{ThresholdDB: -24, Ratio: 3, KneeDB: 12, AttackMs: 2, ReleaseMs: 150},
		},
		FiltersEnabled:     true,
		BassCutHz:          eq.BassCutFloorHz,
		TrebleCutHz:        20000,
		GateThresholdDB:    -50,
		GateHoldMs:         200,
		GateReleaseMs:      100,
		AGCTargetDB:        -16,
		AGCSpeed:           dynamics.SpeedNormal,
		LimiterThresholdDB: -1,
		LimiterAttackMs:    1,
		LimiterReleaseMs:   100,
		NoiseLevelDB:       -50,
		NoiseType:          signal.Pink,
	}

	for i, b := range eq.DefaultBands() {
		s.EQ[i] = EQBandSettings{FreqHz: b.FreqHz, GainDB: b.GainDB, Q: b.Q, Type: b.Kind}
	}

	return s
}

// EffectiveBassCutHz returns the bass cut frequency the graph uses. With the
// filters disabled it is the inactive floor.
func (s *Settings) EffectiveBassCutHz() float64 {
	if !s.FiltersEnabled {
		return eq.BassCutFloorHz
	}
	return s.BassCutHz
}

// EffectiveTrebleCutHz returns the treble cut frequency the graph uses. With
// the filters disabled it is the inactive maximum.
func (s *Settings) EffectiveTrebleCutHz() float64 {
	if !s.FiltersEnabled {
		return eq.MaxTrebleCutHz
	}
	return s.TrebleCutHz
}

// BassCutActive reports whether the bass cut belongs in the signal path.
func (s *Settings) BassCutActive() bool {
	return eq.BassCutActive(s.EffectiveBassCutHz())
}

// TrebleCutActive reports whether the treble cut belongs in the signal path
// at sampleRate.
func (s *Settings) TrebleCutActive(sampleRate float64) bool {
	return eq.TrebleCutActive(s.EffectiveTrebleCutHz(), sampleRate)
}

func (b EQBandSettings) band() eq.Band {
	return eq.Band{FreqHz: b.FreqHz, GainDB: b.GainDB, Q: b.Q, Kind: b.Type}
}

func (b BandSettings) config() dynamics.BandConfig {
	return dynamics.BandConfig{
		ThresholdDB: b.ThresholdDB,
		Ratio:       b.Ratio,
		KneeDB:      b.KneeDB,
		AttackMs:    b.AttackMs,
		ReleaseMs:   b.ReleaseMs,
		GainDB:      b.GainDB,
	}
}
