package effectchain

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/cwbudde/algo-leveler/dsp/effects/dynamics"
)

// Program is a settings snapshot together with the graph that realizes it.
// Programs are immutable once published.
type Program struct {
	Settings Settings
	Graph    *Graph
}

type configError struct{ err error }

// Chain hands programs from the control timeline to the audio timeline.
//
// Publish stores the next program; Process picks it up at the next block
// boundary, so every block runs entirely under one program. On pickup the
// chain configures the program's stages, resets stages that were not wired
// before, installs the program and disconnects the retired graph. A program
// replaced before the audio timeline took it is never applied.
//
// Metering reads the installed program and is safe from any goroutine.
type Chain struct {
	ctx Context

	pending atomic.Pointer[Program]
	current atomic.Pointer[Program]

	lastErr atomic.Pointer[configError]
	swaps   atomic.Uint64
}

// NewChain creates a chain for ctx with no program: blocks pass unchanged
// until the first Publish.
func NewChain(ctx Context) *Chain {
	return &Chain{ctx: ctx}
}

// Context returns the chain context.
func (c *Chain) Context() Context { return c.ctx }

// Publish schedules p for the next block boundary. It never blocks.
func (c *Chain) Publish(p *Program) {
	c.pending.Store(p)
}

// Pending reports whether a published program is waiting for pickup.
func (c *Chain) Pending() bool { return c.pending.Load() != nil }

// Process runs one block in place. It must only be called from the audio
// timeline.
func (c *Chain) Process(block []float64) {
	if p := c.pending.Swap(nil); p != nil {
		c.install(p)
	}

	cur := c.current.Load()
	if cur == nil || cur.Graph == nil {
		return
	}

	cur.Graph.Process(block)
}

func (c *Chain) install(p *Program) {
	prev := c.current.Load()

	var prevGraph *Graph
	if prev != nil {
		prevGraph = prev.Graph
	}

	if p.Graph != nil {
		for _, s := range p.Graph.stages {
			err := s.runtime.Configure(c.ctx, &p.Settings)
			if err != nil {
				c.lastErr.Store(&configError{err: fmt.Errorf("%s: %w", s.kind, err)})
			}

			if prevGraph == nil || !prevGraph.wires(s.runtime) {
				s.runtime.Reset()
			}
		}
	}

	c.current.Store(p)
	c.swaps.Add(1)

	if prevGraph != nil && prevGraph != p.Graph {
		// A retired graph may already be unwired; that is not an error.
		if err := prevGraph.Disconnect(); err != nil && !errors.Is(err, ErrDisconnected) {
			c.lastErr.Store(&configError{err: err})
		}
	}
}

// TakeErr returns and clears the most recent stage configuration error.
func (c *Chain) TakeErr() error {
	e := c.lastErr.Swap(nil)
	if e == nil {
		return nil
	}
	return e.err
}

// Swaps returns how many programs the audio timeline has installed.
func (c *Chain) Swaps() uint64 { return c.swaps.Load() }

// Current returns the installed program, or nil before the first pickup.
func (c *Chain) Current() *Program { return c.current.Load() }

// Topology returns the installed topology. Before the first pickup the
// chain is a bypass.
func (c *Chain) Topology() Topology {
	cur := c.current.Load()
	if cur == nil || cur.Graph == nil {
		return Topology{Bypass: true}
	}
	return cur.Graph.Topology()
}

// GainReductionDB returns the gain reduction of the installed dynamics
// stage, or 0 when no compressor is wired.
func (c *Chain) GainReductionDB() float64 {
	for _, kind := range [...]StageKind{StageMultiband, StageCompressor} {
		if r, ok := c.stage(kind).(Reducer); ok {
			return r.GainReductionDB()
		}
	}
	return 0
}

// BandReductionDB returns the per-band gain reduction of the installed
// multiband compressor. ok is false when it is not wired.
func (c *Chain) BandReductionDB() (dynamics.BandReduction, bool) {
	if r, ok := c.stage(StageMultiband).(BandReducer); ok {
		return r.BandReductionDB(), true
	}
	return dynamics.BandReduction{}, false
}

func (c *Chain) stage(kind StageKind) Runtime {
	cur := c.current.Load()
	if cur == nil || cur.Graph == nil {
		return nil
	}

	rt, _ := cur.Graph.Stage(kind)

	return rt
}

// Close drops any pending program and disconnects the installed graph. Call
// it once the audio timeline has stopped.
func (c *Chain) Close() {
	c.pending.Store(nil)

	cur := c.current.Load()
	if cur == nil || cur.Graph == nil {
		return
	}

	_ = cur.Graph.Disconnect()
}
