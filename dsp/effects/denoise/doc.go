// Package denoise adapts a frame-based noise suppression model to the
// block-based processing graph.
//
// A [Model] is loaded off the audio timeline by a [Loader]. The
// [Suppressor] stays in the NotReady state until loading finishes, then
// moves to Ready or, on failure, permanently to Failed. Callers leave the
// stage out of the signal path unless it is Ready.
//
// [SpectralGate] is the built-in model: an STFT spectral subtraction gate
// with a minimum-tracking noise floor.
package denoise
