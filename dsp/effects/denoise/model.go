package denoise

import (
	"context"
	"errors"
)

// ErrNotReady is returned when audio reaches a suppressor whose model has
// not finished loading or failed to load.
var ErrNotReady = errors.New("denoise: suppressor not ready")

// Model is a noise suppression model working on fixed-size frames.
//
// FrameSize is the number of frames per call. Denoise reads
// FrameSize()*channels interleaved samples from src and writes the same
// number to dst. dst and src may alias.
type Model interface {
	FrameSize() int
	Denoise(dst, src []float32) error
}

// Resetter is implemented by models with internal state that should be
// cleared when the stage re-enters the signal path.
type Resetter interface {
	Reset()
}

// Loader creates a model for the given stream format. It runs off the audio
// timeline and may block; it should return when ctx is cancelled.
type Loader func(ctx context.Context, sampleRate float64, channels int) (Model, error)
