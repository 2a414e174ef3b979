package dynamics

import "github.com/cwbudde/algo-leveler/internal/testutil"

const testSampleRate = 48000.0

var (
	peakDB = testutil.PeakDB
	rmsDB  = testutil.RMSDB
)

// stereoSine returns frames of an interleaved stereo sine at amplitude amp.
func stereoSine(freq, amp float64, frames int) []float64 {
	return testutil.Sine(freq, testSampleRate, amp, 2, frames)
}
