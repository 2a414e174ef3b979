// Package design computes biquad coefficients for the equalizer bands and
// cut filters from the audio EQ cookbook formulas.
//
// [Design] covers every [Kind]; [Lowpass] and [Highpass] are shorthands for
// the crossover and cut filters. A band whose frequency is not strictly
// inside (0, Nyquist) designs to [biquad.Identity] and passes audio
// unchanged.
package design
