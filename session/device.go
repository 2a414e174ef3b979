package session

import (
	"context"
	"errors"
)

// ErrSourceUnavailable is returned when a source cannot be opened.
var ErrSourceUnavailable = errors.New("session: source unavailable")

// Device is the capture and render endpoint of one source.
//
// Read fills buf with the next interleaved block and returns the number of
// frames read; io.EOF ends the stream. Write delivers a processed block.
// Both are called from the session's audio loop only.
type Device interface {
	SampleRate() float64
	Channels() int
	// BlockSize is the largest block Read returns, in frames.
	BlockSize() int

	Read(ctx context.Context, buf []float64) (int, error)
	Write(buf []float64) error
	Close() error
}

// Opener opens the device of a source.
type Opener interface {
	Open(ctx context.Context, source string) (Device, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, source string) (Device, error)

// Open implements Opener.
func (f OpenerFunc) Open(ctx context.Context, source string) (Device, error) {
	return f(ctx, source)
}
