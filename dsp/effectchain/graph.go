package effectchain

import (
	"encoding/json"
	"errors"
	"slices"
	"sync/atomic"
)

// Reserved node IDs of a graph description.
const (
	SourceNodeID = "_source"
	SinkNodeID   = "_sink"
)

// ErrDisconnected is returned when disconnecting a graph that is no longer
// wired.
var ErrDisconnected = errors.New("effectchain: graph already disconnected")

type stageNode struct {
	kind    StageKind
	runtime Runtime
}

// Graph is an immutable wiring of stage runtimes in signal order. A new
// topology always gets a new Graph; runtimes may be shared between graphs
// built by the same Builder.
type Graph struct {
	topology     Topology
	stages       []stageNode
	disconnected atomic.Bool
}

func newGraph(t Topology, stages []stageNode) *Graph {
	return &Graph{
		topology: Topology{Bypass: t.Bypass, Stages: slices.Clone(t.Stages)},
		stages:   stages,
	}
}

// Topology returns the stages g wires.
func (g *Graph) Topology() Topology {
	return Topology{Bypass: g.topology.Bypass, Stages: slices.Clone(g.topology.Stages)}
}

// Stage returns the runtime wired for kind.
func (g *Graph) Stage(kind StageKind) (Runtime, bool) {
	for _, s := range g.stages {
		if s.kind == kind {
			return s.runtime, true
		}
	}
	return nil, false
}

func (g *Graph) wires(rt Runtime) bool {
	for _, s := range g.stages {
		if s.runtime == rt {
			return true
		}
	}
	return false
}

// Process runs block through every stage in order. A disconnected graph
// leaves the block unchanged.
func (g *Graph) Process(block []float64) {
	if g.disconnected.Load() {
		return
	}

	for _, s := range g.stages {
		s.runtime.Process(block)
	}
}

// Disconnect unwires g. A second call returns ErrDisconnected.
func (g *Graph) Disconnect() error {
	if !g.disconnected.CompareAndSwap(false, true) {
		return ErrDisconnected
	}
	return nil
}

// Disconnected reports whether g has been unwired.
func (g *Graph) Disconnected() bool { return g.disconnected.Load() }

// graphNode is a JSON-serializable node of a graph description.
type graphNode struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// graphConnection is a JSON-serializable connection between two nodes.
// Port 1 of gate and AGC nodes is the level detector input.
type graphConnection struct {
	From          string `json:"from"`
	To            string `json:"to"`
	FromPortIndex int    `json:"fromPortIndex,omitempty"` //nolint:tagliatelle
	ToPortIndex   int    `json:"toPortIndex,omitempty"`   //nolint:tagliatelle
}

// graphState is the root JSON structure of a graph description.
type graphState struct {
	Bypass      bool              `json:"bypass"`
	Nodes       []graphNode       `json:"nodes"`
	Connections []graphConnection `json:"connections"`
}

// MarshalJSON describes the wiring of g as nodes and connections. The
// multiband stage expands into its split, band and sum nodes; the gate and
// AGC get a detector node tapping their input in parallel.
func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(describe(g.topology))
}

func describe(t Topology) graphState {
	st := graphState{
		Bypass: t.Bypass,
		Nodes:  []graphNode{{ID: SourceNodeID, Type: "source"}},
	}

	link := func(from, to string, fromPort, toPort int) {
		st.Connections = append(st.Connections, graphConnection{
			From: from, To: to, FromPortIndex: fromPort, ToPortIndex: toPort,
		})
	}
	node := func(id, typ string) {
		st.Nodes = append(st.Nodes, graphNode{ID: id, Type: typ})
	}

	cur := SourceNodeID

	for _, k := range t.Stages {
		name := k.String()

		switch k {
		case StageMultiband:
			split, sum := name+".split", name+".sum"
			node(split, "split-3band")
			link(cur, split, 0, 0)

			for band, b := range [...]string{"sub", "mid", "high"} {
				id := name + "." + b
				node(id, StageCompressor.String())
				link(split, id, band, 0)
				link(id, sum, 0, band)
			}

			node(sum, "sum")
			cur = sum

		case StageGate, StageAGC:
			det := name + ".detector"
			node(det, "rms-detector")
			node(name, "gain")
			link(cur, det, 0, 0)
			link(cur, name, 0, 0)
			link(det, name, 0, 1)
			cur = name

		default:
			node(name, name)
			link(cur, name, 0, 0)
			cur = name
		}
	}

	st.Nodes = append(st.Nodes, graphNode{ID: SinkNodeID, Type: "sink"})
	link(cur, SinkNodeID, 0, 0)

	return st
}
