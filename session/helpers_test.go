package session

import (
	"context"
	"errors"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

const (
	testSampleRate = 48000.0
	testChannels   = 2
	testBlock      = 480
)

// fakeDevice produces a 1 kHz sine. In stepped mode every Read waits for a
// token on steps; otherwise it streams frames until total frames were read
// and then reports io.EOF.
type fakeDevice struct {
	amp   float64
	total int // frames; 0 means unlimited
	steps chan struct{}

	mu     sync.Mutex
	frame  int
	input  []float64
	output []float64

	closed atomic.Bool
}

func newSteppedDevice(amp float64) *fakeDevice {
	return &fakeDevice{amp: amp, steps: make(chan struct{})}
}

func (d *fakeDevice) SampleRate() float64 { return testSampleRate }
func (d *fakeDevice) Channels() int       { return testChannels }
func (d *fakeDevice) BlockSize() int      { return testBlock }

func (d *fakeDevice) Read(ctx context.Context, buf []float64) (int, error) {
	if d.steps != nil {
		select {
		case <-d.steps:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	frames := len(buf) / testChannels
	if d.total > 0 {
		frames = min(frames, d.total-d.frame)
		if frames == 0 {
			return 0, io.EOF
		}
	}

	for i := range frames {
		v := d.amp * math.Sin(2*math.Pi*1000*float64(d.frame+i)/testSampleRate)
		buf[2*i] = v
		buf[2*i+1] = v
	}

	d.frame += frames
	d.input = append(d.input, buf[:frames*testChannels]...)

	return frames, nil
}

func (d *fakeDevice) Write(buf []float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.output = append(d.output, buf...)

	return nil
}

func (d *fakeDevice) Close() error {
	if d.closed.Swap(true) {
		return errors.New("closed twice")
	}
	return nil
}

// lastBlocks returns copies of the last n input and output blocks.
func (d *fakeDevice) lastBlocks(n int) (in, out []float64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	size := n * testBlock * testChannels

	return append([]float64(nil), d.input[len(d.input)-size:]...),
		append([]float64(nil), d.output[len(d.output)-size:]...)
}

func openerFor(dev *fakeDevice) Opener {
	return OpenerFunc(func(context.Context, string) (Device, error) { return dev, nil })
}

func newTestManager(t *testing.T, dev *fakeDevice, opts ...Option) (*Manager, *test.Hook) {
	t.Helper()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	m := NewManager(append([]Option{WithLogger(logger), WithOpener(openerFor(dev))}, opts...)...)
	t.Cleanup(func() { _ = m.Close() })

	return m, hook
}

// step lets the device deliver n blocks and waits until the session
// processed them.
func step(t *testing.T, s *Session, dev *fakeDevice, n int) {
	t.Helper()

	want := s.Blocks() + uint64(n)
	for range n {
		select {
		case dev.steps <- struct{}{}:
		case <-time.After(5 * time.Second):
			t.Fatal("audio loop did not read")
		}
	}

	require.Eventually(t, func() bool { return s.Blocks() >= want }, 5*time.Second, time.Millisecond)
}

func hasEntry(hook *test.Hook, level logrus.Level, msg string) bool {
	for _, e := range hook.AllEntries() {
		if e.Level == level && e.Message == msg {
			return true
		}
	}
	return false
}
