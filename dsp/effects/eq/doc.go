// Package eq provides the tonal stages of the leveler: a five-band
// parametric equalizer and the bass/treble cut filters.
//
// All stages process interleaved float64 blocks in place and keep one
// biquad state per channel. Changing a band or a cut frequency recomputes
// coefficients without clearing the filter state.
package eq
