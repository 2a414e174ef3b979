// Package effectchain wires the processing graph of one audio source.
//
// Settings is the flat parameter record; ApplyPatch merges partial updates
// into it field by field. Plan maps settings to a Topology, the ordered
// list of stages to wire. A Builder turns a topology into an immutable
// Graph of stage runtimes, and a Chain hands {settings, graph} programs
// from the control timeline to the audio timeline at block boundaries.
//
// TransferDB and CheckMonotonic evaluate the steady-state level transfer of
// a configuration without running audio.
package effectchain
