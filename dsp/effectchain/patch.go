package effectchain

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/cwbudde/algo-leveler/dsp/effects/dynamics"
	"github.com/cwbudde/algo-leveler/dsp/effects/eq"
	"github.com/cwbudde/algo-leveler/dsp/filter/design"
	"github.com/cwbudde/algo-leveler/dsp/signal"
)

// Setting keys referenced outside the field table.
const (
	KeyEnabled           = "enabled"
	KeyCompressorEnabled = "compressorEnabled"
	KeyMultibandEnabled  = "multibandEnabled"
	KeyCrossover1Hz      = "crossover1Hz"
	KeyCrossover2Hz      = "crossover2Hz"
)

// Ignored names a patch field that was not applied and why.
type Ignored struct {
	Key    string
	Reason string
}

// PatchResult reports what ApplyPatch did with each field of a patch.
type PatchResult struct {
	Applied []string
	Ignored []Ignored
}

// Changed reports whether at least one field was applied.
func (r PatchResult) Changed() bool { return len(r.Applied) > 0 }

type fieldKind int

const (
	boolField fieldKind = iota
	numField
	enumField
)

// field describes one key of the flat settings record.
type field struct {
	key      string
	kind     fieldKind
	min, max float64

	flag func(*Settings) *bool
	num  func(*Settings) *float64

	// enum fields
	parse  func(s *Settings, name string) error
	format func(s *Settings) string
}

var (
	fields     []field
	fieldByKey map[string]*field
)

func init() {
	fields = buildFields()

	fieldByKey = make(map[string]*field, len(fields))
	for i := range fields {
		fieldByKey[fields[i].key] = &fields[i]
	}
}

func flagField(key string, p func(*Settings) *bool) field {
	return field{key: key, kind: boolField, flag: p}
}

func numberField(key string, lo, hi float64, p func(*Settings) *float64) field {
	return field{key: key, kind: numField, min: lo, max: hi, num: p}
}

func buildFields() []field {
	f := []field{
		flagField(KeyEnabled, func(s *Settings) *bool { return &s.Enabled }),
		flagField(KeyCompressorEnabled, func(s *Settings) *bool { return &s.CompressorEnabled }),
		numberField("thresholdDB", -100, 0, func(s *Settings) *float64 { return &s.Compressor.ThresholdDB }),
		numberField("ratio", 1, 20, func(s *Settings) *float64 { return &s.Compressor.Ratio }),
		numberField("kneeDB", 0, 40, func(s *Settings) *float64 { return &s.Compressor.KneeDB }),
		numberField("attackMs", 0.1, 1000, func(s *Settings) *float64 { return &s.Compressor.AttackMs }),
		numberField("releaseMs", 1, 5000, func(s *Settings) *float64 { return &s.Compressor.ReleaseMs }),
		numberField("makeupGainDB", -24, 24, func(s *Settings) *float64 { return &s.Compressor.MakeupGainDB }),

		flagField(KeyMultibandEnabled, func(s *Settings) *bool { return &s.MultibandEnabled }),
		numberField(KeyCrossover1Hz, 20, 2000, func(s *Settings) *float64 { return &s.Crossover1Hz }),
		numberField(KeyCrossover2Hz, 200, 16000, func(s *Settings) *float64 { return &s.Crossover2Hz }),
	}

	for i, prefix := range [...]string{"sub", "mid", "high"} {
		band := func(s *Settings) *BandSettings { return &s.Bands[i] }
		f = append(f,
			numberField(prefix+"ThresholdDB", -100, 0, func(s *Settings) *float64 { return &band(s).ThresholdDB }),
			numberField(prefix+"Ratio", 1, 20, func(s *Settings) *float64 { return &band(s).Ratio }),
			numberField(prefix+"KneeDB", 0, 40, func(s *Settings) *float64 { return &band(s).KneeDB }),
			numberField(prefix+"AttackMs", 0.1, 1000, func(s *Settings) *float64 { return &band(s).AttackMs }),
			numberField(prefix+"ReleaseMs", 1, 5000, func(s *Settings) *float64 { return &band(s).ReleaseMs }),
			numberField(prefix+"GainDB", -24, 24, func(s *Settings) *float64 { return &band(s).GainDB }),
		)
	}

	f = append(f, flagField("eqEnabled", func(s *Settings) *bool { return &s.EQEnabled }))

	for i := range eq.NumBands {
		band := func(s *Settings) *EQBandSettings { return &s.EQ[i] }
		prefix := fmt.Sprintf("eq%d", i+1)
		f = append(f,
			numberField(prefix+"FreqHz", eq.MinBandFreqHz, eq.MaxBandFreqHz, func(s *Settings) *float64 { return &band(s).FreqHz }),
			numberField(prefix+"GainDB", eq.MinBandGainDB, eq.MaxBandGainDB, func(s *Settings) *float64 { return &band(s).GainDB }),
			numberField(prefix+"Q", eq.MinBandQ, eq.MaxBandQ, func(s *Settings) *float64 { return &band(s).Q }),
			field{
				key:  prefix + "Type",
				kind: enumField,
				parse: func(s *Settings, name string) error {
					k, err := design.ParseKind(name)
					if err == nil {
						band(s).Type = k
					}
					return err
				},
				format: func(s *Settings) string { return band(s).Type.String() },
			},
		)
	}

	f = append(f,
		flagField("filtersEnabled", func(s *Settings) *bool { return &s.FiltersEnabled }),
		numberField("bassCutHz", eq.BassCutFloorHz, eq.MaxBassCutHz, func(s *Settings) *float64 { return &s.BassCutHz }),
		numberField("trebleCutHz", eq.MinTrebleCutHz, eq.MaxTrebleCutHz, func(s *Settings) *float64 { return &s.TrebleCutHz }),

		flagField("noiseSuppressionEnabled", func(s *Settings) *bool { return &s.NoiseSuppressionEnabled }),

		flagField("gateEnabled", func(s *Settings) *bool { return &s.GateEnabled }),
		numberField("gateThresholdDB", -100, 0, func(s *Settings) *float64 { return &s.GateThresholdDB }),
		numberField("gateHoldMs", 0, 5000, func(s *Settings) *float64 { return &s.GateHoldMs }),
		numberField("gateReleaseMs", 1, 5000, func(s *Settings) *float64 { return &s.GateReleaseMs }),

		flagField("agcEnabled", func(s *Settings) *bool { return &s.AGCEnabled }),
		numberField("agcTargetDB", -40, 0, func(s *Settings) *float64 { return &s.AGCTargetDB }),
		field{
			key:  "agcSpeed",
			kind: enumField,
			parse: func(s *Settings, name string) error {
				sp, err := dynamics.ParseSpeed(name)
				if err == nil {
					s.AGCSpeed = sp
				}
				return err
			},
			format: func(s *Settings) string { return s.AGCSpeed.String() },
		},

		flagField("limiterEnabled", func(s *Settings) *bool { return &s.LimiterEnabled }),
		numberField("limiterThresholdDB", -30, 0, func(s *Settings) *float64 { return &s.LimiterThresholdDB }),
		numberField("limiterAttackMs", 0.1, 100, func(s *Settings) *float64 { return &s.LimiterAttackMs }),
		numberField("limiterReleaseMs", 1, 2000, func(s *Settings) *float64 { return &s.LimiterReleaseMs }),

		flagField("noiseEnabled", func(s *Settings) *bool { return &s.NoiseEnabled }),
		numberField("noiseLevelDB", -90, -10, func(s *Settings) *float64 { return &s.NoiseLevelDB }),
		field{
			key:  "noiseType",
			kind: enumField,
			parse: func(s *Settings, name string) error {
				c, err := signal.ParseColor(name)
				if err == nil {
					s.NoiseType = c
				}
				return err
			},
			format: func(s *Settings) string { return s.NoiseType.String() },
		},

		numberField("outputGainDB", -24, 24, func(s *Settings) *float64 { return &s.OutputGainDB }),
	)

	return f
}

// Keys returns every settings key in table order.
func Keys() []string {
	keys := make([]string, len(fields))
	for i := range fields {
		keys[i] = fields[i].key
	}
	return keys
}

// ApplyPatch returns a copy of base with the fields of patch applied.
//
// Fields are applied one by one. Unknown keys, wrongly typed values and
// out-of-range values are ignored and reported without rejecting the rest of
// the patch. A crossover change that would put crossover1Hz at or above
// crossover2Hz is ignored. Turning the compressor or the multiband
// compressor on turns the other off; when a patch turns both on, multiband
// wins.
func ApplyPatch(base Settings, patch map[string]any) (Settings, PatchResult) {
	next := base

	var res PatchResult

	keys := make([]string, 0, len(patch))
	for k := range patch {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		f, ok := fieldByKey[key]
		if !ok {
			res.Ignored = append(res.Ignored, Ignored{Key: key, Reason: "unknown key"})
			continue
		}

		if err := f.apply(&next, patch[key]); err != nil {
			res.Ignored = append(res.Ignored, Ignored{Key: key, Reason: err.Error()})
			continue
		}

		res.Applied = append(res.Applied, key)
	}

	if next.Crossover1Hz >= next.Crossover2Hz {
		for _, key := range [...]string{KeyCrossover1Hz, KeyCrossover2Hz} {
			if res.drop(key, "crossover1Hz must stay below crossover2Hz") {
				*fieldByKey[key].num(&next) = *fieldByKey[key].num(&base)
			}
		}
	}

	enabledCompressor := res.applied(KeyCompressorEnabled) && next.CompressorEnabled
	enabledMultiband := res.applied(KeyMultibandEnabled) && next.MultibandEnabled

	switch {
	case enabledMultiband:
		next.CompressorEnabled = false
	case enabledCompressor:
		next.MultibandEnabled = false
	}

	return next, res
}

func (r *PatchResult) applied(key string) bool {
	for _, k := range r.Applied {
		if k == key {
			return true
		}
	}
	return false
}

// drop moves key from Applied to Ignored. It reports whether key had been
// applied.
func (r *PatchResult) drop(key, reason string) bool {
	for i, k := range r.Applied {
		if k == key {
			r.Applied = append(r.Applied[:i], r.Applied[i+1:]...)
			r.Ignored = append(r.Ignored, Ignored{Key: key, Reason: reason})
			return true
		}
	}
	return false
}

func (f *field) apply(s *Settings, raw any) error {
	switch f.kind {
	case boolField:
		v, ok := raw.(bool)
		if !ok {
			return fmt.Errorf("want bool, got %T", raw)
		}
		*f.flag(s) = v
	case numField:
		v, ok := toFloat(raw)
		if !ok {
			return fmt.Errorf("want number, got %T", raw)
		}
		if math.IsNaN(v) || v < f.min || v > f.max {
			return fmt.Errorf("%g outside [%g, %g]", v, f.min, f.max)
		}
		*f.num(s) = v
	case enumField:
		name, ok := raw.(string)
		if !ok {
			return fmt.Errorf("want string, got %T", raw)
		}
		return f.parse(s, name)
	}
	return nil
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// ToMap returns s as a flat key/value record: bools, float64 numbers and
// enum names. ApplyPatch(DefaultSettings(), ToMap(s)) reproduces s.
func ToMap(s Settings) map[string]any {
	m := make(map[string]any, len(fields))
	for i := range fields {
		f := &fields[i]
		switch f.kind {
		case boolField:
			m[f.key] = *f.flag(&s)
		case numField:
			m[f.key] = *f.num(&s)
		case enumField:
			m[f.key] = f.format(&s)
		}
	}
	return m
}
