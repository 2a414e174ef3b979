package buffer

import "fmt"

// Frame is a block of interleaved multichannel samples.
// DSP functions accept the raw interleaved slice; use Samples() to bridge.
type Frame struct {
	samples  []float64
	channels int
}

// New returns a zero-filled Frame holding frames sample frames of the given
// channel count.
func New(channels, frames int) *Frame {
	if channels < 1 {
		channels = 1
	}
	if frames < 0 {
		frames = 0
	}
	return &Frame{samples: make([]float64, channels*frames), channels: channels}
}

// FromInterleaved wraps an existing interleaved slice without copying.
// Mutations to the slice are visible through the Frame and vice versa.
func FromInterleaved(samples []float64, channels int) (*Frame, error) {
	if channels < 1 {
		return nil, fmt.Errorf("buffer: channel count must be positive: %d", channels)
	}
	if len(samples)%channels != 0 {
		return nil, fmt.Errorf("buffer: %d samples do not divide into %d channels", len(samples), channels)
	}
	return &Frame{samples: samples, channels: channels}, nil
}

// Samples returns the underlying interleaved slice.
func (f *Frame) Samples() []float64 {
	return f.samples
}

// Channels returns the interleaved channel count.
func (f *Frame) Channels() int {
	return f.channels
}

// Frames returns the number of sample frames.
func (f *Frame) Frames() int {
	return len(f.samples) / f.channels
}

// Len returns the number of interleaved samples.
func (f *Frame) Len() int {
	return len(f.samples)
}

// Resize sets the frame count and channel layout, reusing existing capacity
// when possible. Newly exposed samples are zeroed.
func (f *Frame) Resize(channels, frames int) {
	if channels < 1 {
		channels = 1
	}
	if frames < 0 {
		frames = 0
	}
	n := channels * frames
	oldLen := len(f.samples)
	if n <= cap(f.samples) {
		f.samples = f.samples[:n]
	} else {
		s := make([]float64, n)
		copy(s, f.samples)
		f.samples = s
	}
	f.channels = channels
	for i := oldLen; i < n; i++ {
		f.samples[i] = 0
	}
}

// Zero sets all samples to 0.
func (f *Frame) Zero() {
	clear(f.samples)
}

// Channel copies one channel into dst and returns the number of frames copied.
func (f *Frame) Channel(ch int, dst []float64) int {
	if ch < 0 || ch >= f.channels {
		return 0
	}
	n := 0
	for i := ch; i < len(f.samples) && n < len(dst); i += f.channels {
		dst[n] = f.samples[i]
		n++
	}
	return n
}

// SetChannel writes src into one channel and returns the number of frames written.
func (f *Frame) SetChannel(ch int, src []float64) int {
	if ch < 0 || ch >= f.channels {
		return 0
	}
	n := 0
	for i := ch; i < len(f.samples) && n < len(src); i += f.channels {
		f.samples[i] = src[n]
		n++
	}
	return n
}

// CopyFrom overwrites f with the layout and content of src.
func (f *Frame) CopyFrom(src *Frame) {
	f.Resize(src.channels, src.Frames())
	copy(f.samples, src.samples)
}

// Copy returns a deep copy of the frame.
func (f *Frame) Copy() *Frame {
	s := make([]float64, len(f.samples))
	copy(s, f.samples)
	return &Frame{samples: s, channels: f.channels}
}

// Equal reports whether both frames have the same layout and identical samples.
func (f *Frame) Equal(other *Frame) bool {
	if other == nil || f.channels != other.channels || len(f.samples) != len(other.samples) {
		return false
	}
	for i, v := range f.samples {
		if other.samples[i] != v {
			return false
		}
	}
	return true
}
