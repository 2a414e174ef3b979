// Package biquad provides biquad (second-order IIR) filter runtime primitives.
//
// A [Section] implements Direct Form II Transposed processing for a single
// second-order section defined by [Coefficients]. [Interleaved] applies one
// section to every channel of an interleaved buffer with per-channel state,
// and [Chain] cascades interleaved sections for multi-band equalizers.
//
// This package provides the processing runtime only. Coefficient design
// lives in dsp/filter/design.
package biquad
