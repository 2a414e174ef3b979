// Package buffer provides the interleaved multichannel Frame a session reads
// from its device, runs through the processing graph and writes back. DSP
// stages operate on the raw interleaved []float64; Frame carries the channel
// layout alongside it.
package buffer
