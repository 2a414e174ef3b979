// Package crossover provides Butterworth crossover networks for splitting
// an interleaved audio signal into frequency bands.
//
// [Crossover] is one lowpass/highpass pair at a shared corner frequency.
// [ThreeBand] cascades two pairs into sub, mid and high bands, the layout
// used by the multiband compressor. Recombining the bands without gain
// yields a near-unity magnitude response.
//
// Example:
//
//	xo, _ := crossover.NewThreeBand(200, 3000, 48000, 2)
//	xo.Split(block, sub, mid, high)
package crossover
