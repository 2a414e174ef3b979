// Package testutil holds signal generators and level meters shared by the
// DSP tests.
package testutil

import "math"

// Sine returns frames of an interleaved sine with the same sample on every
// channel.
func Sine(freqHz, sampleRate, amp float64, channels, frames int) []float64 {
	out := make([]float64, channels*frames)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range frames {
		v := amp * math.Sin(step*float64(i))
		for c := range channels {
			out[i*channels+c] = v
		}
	}
	return out
}
