package effectchain

import (
	"fmt"
	"slices"
	"strings"
)

// StageKind identifies one stage of the processing graph.
type StageKind int

// Stage kinds in signal order.
const (
	StageCompressor StageKind = iota
	StageMultiband
	StagePreLimiter
	StageSuppressor
	StageBassCut
	StageEQ
	StageTrebleCut
	StageGate
	StageAGC
	StageLimiter
	StageMixer

	numStageKinds
)

var stageNames = [...]string{
	StageCompressor: "compressor",
	StageMultiband:  "multiband",
	StagePreLimiter: "prelimiter",
	StageSuppressor: "suppressor",
	StageBassCut:    "basscut",
	StageEQ:         "eq",
	StageTrebleCut:  "treblecut",
	StageGate:       "gate",
	StageAGC:        "agc",
	StageLimiter:    "limiter",
	StageMixer:      "mixer",
}

// String returns the lower-case name of k.
func (k StageKind) String() string {
	if k < 0 || k >= numStageKinds {
		return fmt.Sprintf("StageKind(%d)", int(k))
	}
	return stageNames[k]
}

// StageKinds returns every stage kind in signal order.
func StageKinds() []StageKind {
	kinds := make([]StageKind, numStageKinds)
	for i := range kinds {
		kinds[i] = StageKind(i)
	}
	return kinds
}

// Conditions are the runtime facts, besides settings, that decide the
// topology.
type Conditions struct {
	SampleRate      float64
	SuppressorReady bool
}

// Topology is the ordered list of stages wired between source and sink. A
// bypass topology has no stages: the source reaches the sink unchanged.
type Topology struct {
	Bypass bool
	Stages []StageKind
}

// Equal reports whether t and o wire the same stages in the same order.
func (t Topology) Equal(o Topology) bool {
	return t.Bypass == o.Bypass && slices.Equal(t.Stages, o.Stages)
}

// Contains reports whether k is wired.
func (t Topology) Contains(k StageKind) bool {
	return slices.Contains(t.Stages, k)
}

// String renders t as "source → a → b → sink".
func (t Topology) String() string {
	var b strings.Builder
	b.WriteString("source")
	for _, k := range t.Stages {
		b.WriteString(" → ")
		b.WriteString(k.String())
	}
	b.WriteString(" → sink")
	return b.String()
}

// Plan decides which stages the graph wires for s under c. The decision
// order is fixed:
//
//  1. global disable bypasses everything, the mixer included
//  2. multiband compressor, else compressor, else nothing
//  3. pre-limiter and suppressor, when suppression is enabled and ready
//  4. bass cut, when active
//  5. equalizer, when enabled
//  6. treble cut, when active
//  7. gate, AGC and limiter, each when enabled
//  8. output mixer
func Plan(s Settings, c Conditions) Topology {
	if !s.Enabled {
		return Topology{Bypass: true}
	}

	stages := make([]StageKind, 0, numStageKinds)

	switch {
	case s.MultibandEnabled:
		stages = append(stages, StageMultiband)
	case s.CompressorEnabled:
		stages = append(stages, StageCompressor)
	}

	if s.NoiseSuppressionEnabled && c.SuppressorReady {
		stages = append(stages, StagePreLimiter, StageSuppressor)
	}

	if s.BassCutActive() {
		stages = append(stages, StageBassCut)
	}

	if s.EQEnabled {
		stages = append(stages, StageEQ)
	}

	if s.TrebleCutActive(c.SampleRate) {
		stages = append(stages, StageTrebleCut)
	}

	if s.GateEnabled {
		stages = append(stages, StageGate)
	}

	if s.AGCEnabled {
		stages = append(stages, StageAGC)
	}

	if s.LimiterEnabled {
		stages = append(stages, StageLimiter)
	}

	stages = append(stages, StageMixer)

	return Topology{Stages: stages}
}
