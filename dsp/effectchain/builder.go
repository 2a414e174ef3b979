package effectchain

import (
	"fmt"

	"github.com/cwbudde/algo-leveler/dsp/core"
)

// Builder turns topologies into graphs. It owns one runtime per stage kind,
// created on first use and shared by every graph it builds, so a stage that
// stays wired across a rebuild keeps its state.
//
// A Builder belongs to the control timeline and is not safe for concurrent
// use.
type Builder struct {
	ctx      Context
	registry *Registry
	runtimes [numStageKinds]Runtime
}

// NewBuilder creates a builder for ctx. A nil registry means
// DefaultRegistry.
func NewBuilder(ctx Context, registry *Registry) (*Builder, error) {
	if !(ctx.SampleRate > 0) || !core.IsFinite(ctx.SampleRate) {
		return nil, fmt.Errorf("effectchain: sample rate must be positive and finite: %f", ctx.SampleRate)
	}

	if ctx.Channels < 1 {
		return nil, fmt.Errorf("effectchain: channel count must be positive: %d", ctx.Channels)
	}

	if ctx.BlockSize < 1 {
		return nil, fmt.Errorf("effectchain: block size must be positive: %d", ctx.BlockSize)
	}

	if registry == nil {
		registry = DefaultRegistry()
	}

	return &Builder{ctx: ctx, registry: registry}, nil
}

// Context returns the builder context.
func (b *Builder) Context() Context { return b.ctx }

// Conditions returns the topology conditions for the builder's stream.
func (b *Builder) Conditions() Conditions {
	c := Conditions{SampleRate: b.ctx.SampleRate}
	if b.ctx.Suppressor != nil {
		c.SuppressorReady = b.ctx.Suppressor.Ready()
	}
	return c
}

// Build wires the stages of t into a new Graph, creating missing runtimes.
func (b *Builder) Build(t Topology) (*Graph, error) {
	stages := make([]stageNode, 0, len(t.Stages))

	for _, kind := range t.Stages {
		rt, err := b.runtime(kind)
		if err != nil {
			return nil, err
		}

		stages = append(stages, stageNode{kind: kind, runtime: rt})
	}

	return newGraph(t, stages), nil
}

// Runtime returns the runtime for kind, or nil if none was created yet.
func (b *Builder) Runtime(kind StageKind) Runtime {
	if kind < 0 || kind >= numStageKinds {
		return nil
	}
	return b.runtimes[kind]
}

// Prepare does the allocation-heavy work s will need on the audio timeline:
// it generates the noise bed when noise is enabled.
func (b *Builder) Prepare(s Settings) error {
	if !s.Enabled || !s.NoiseEnabled {
		return nil
	}

	_, err := b.ctx.noiseCache().Bed(s.NoiseType, b.ctx.SampleRate)
	if err != nil {
		return fmt.Errorf("effectchain: prepare noise bed: %w", err)
	}

	return nil
}

func (b *Builder) runtime(kind StageKind) (Runtime, error) {
	if kind < 0 || kind >= numStageKinds {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStage, kind)
	}

	if rt := b.runtimes[kind]; rt != nil {
		return rt, nil
	}

	rt, err := b.registry.New(b.ctx, kind)
	if err != nil {
		return nil, err
	}

	b.runtimes[kind] = rt

	return rt, nil
}
