package denoise

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"
)

type failure struct{ err error }

// Suppressor runs a [Model] inside the processing graph.
//
// Samples are queued into a model-sized input frame; every time the frame
// fills, the model denoises it into the output frame, which is drained while
// the next input frame fills. The stage therefore delays the signal by
// exactly one model frame and emits silence during the first one.
//
// Start and Close belong to the control timeline. ProcessInterleaved and
// Reset belong to the audio timeline. State may be read from anywhere.
type Suppressor struct {
	sampleRate float64
	channels   int

	state   atomic.Int32
	failure atomic.Pointer[failure]

	startOnce sync.Once
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	onChange  func(State)

	// Published before the Ready state is stored.
	model    Model
	frameLen int
	in       []float32
	out      []float32

	// Audio timeline only.
	pos int
}

// NewSuppressor creates a suppressor in the NotReady state.
func NewSuppressor(sampleRate float64, channels int) (*Suppressor, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("denoise: sample rate must be positive and finite: %f", sampleRate)
	}
	if channels < 1 {
		return nil, fmt.Errorf("denoise: channel count must be positive: %d", channels)
	}
	return &Suppressor{sampleRate: sampleRate, channels: channels}, nil
}

// Start loads the model in a background goroutine. onChange, if not nil, is
// called from that goroutine once the state leaves NotReady, and again if
// the model later fails on the audio timeline. Only the first call to Start
// has any effect.
func (s *Suppressor) Start(ctx context.Context, load Loader, onChange func(State)) {
	s.startOnce.Do(func() {
		ctx, s.cancel = context.WithCancel(ctx)
		s.onChange = onChange
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.load(ctx, load)
		}()
	})
}

func (s *Suppressor) load(ctx context.Context, load Loader) {
	if load == nil {
		s.fail(errors.New("denoise: no model loader"))
		return
	}

	m, err := load(ctx, s.sampleRate, s.channels)
	if err == nil && m == nil {
		err = errors.New("denoise: loader returned no model")
	}
	if err == nil && m.FrameSize() < 1 {
		err = fmt.Errorf("denoise: model frame size must be positive: %d", m.FrameSize())
	}
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		s.fail(fmt.Errorf("denoise: load model: %w", err))
		return
	}

	s.model = m
	s.frameLen = m.FrameSize() * s.channels
	s.in = make([]float32, s.frameLen)
	s.out = make([]float32, s.frameLen)
	s.state.Store(int32(StateReady))
	s.notify(StateReady)
}

func (s *Suppressor) fail(err error) {
	s.failure.Store(&failure{err: err})
	s.state.Store(int32(StateFailed))
	s.notify(StateFailed)
}

func (s *Suppressor) notify(st State) {
	if s.onChange != nil {
		s.onChange(st)
	}
}

// State returns the current readiness.
func (s *Suppressor) State() State { return State(s.state.Load()) }

// Ready reports whether the model is loaded and usable.
func (s *Suppressor) Ready() bool { return s.State() == StateReady }

// Err returns the load or processing error after the suppressor failed.
func (s *Suppressor) Err() error {
	if f := s.failure.Load(); f != nil {
		return f.err
	}
	return nil
}

// LatencyFrames returns the delay the stage adds in frames, or 0 before the
// model is ready.
func (s *Suppressor) LatencyFrames() int {
	if !s.Ready() {
		return 0
	}
	return s.frameLen / s.channels
}

// ProcessInterleaved denoises an interleaved block in place. It returns
// [ErrNotReady] and leaves buf untouched unless the suppressor is Ready.
// A model error moves the suppressor to Failed and is returned; the rest of
// the block is left unprocessed.
func (s *Suppressor) ProcessInterleaved(buf []float64) error {
	if !s.Ready() {
		return ErrNotReady
	}

	for i, x := range buf {
		s.in[s.pos] = float32(x)
		buf[i] = float64(s.out[s.pos])
		s.pos++

		if s.pos == s.frameLen {
			s.pos = 0
			if err := s.model.Denoise(s.out, s.in); err != nil {
				err = fmt.Errorf("denoise: model: %w", err)
				s.failure.Store(&failure{err: err})
				s.state.Store(int32(StateFailed))
				if s.onChange != nil {
					go s.onChange(StateFailed)
				}
				return err
			}
		}
	}

	return nil
}

// Reset clears the frame queues so the stage starts again with one frame of
// silence.
func (s *Suppressor) Reset() {
	if !s.Ready() {
		return
	}
	clear(s.in)
	clear(s.out)
	s.pos = 0
	if r, ok := s.model.(Resetter); ok {
		r.Reset()
	}
}

// Close cancels a pending load, waits for the loader goroutine and closes the
// model if it implements io.Closer.
func (s *Suppressor) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()

	if s.Ready() {
		if c, ok := s.model.(io.Closer); ok {
			return c.Close()
		}
	}
	return nil
}
