package effectchain

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-leveler/internal/testutil"
)

const (
	testSampleRate = 48000.0
	testChannels   = 2
	testBlock      = 480
)

// stubRuntime counts calls and scales the block by gain.
type stubRuntime struct {
	gain           float64
	configureErr   error
	configureCalls int
	processCalls   int
	resetCalls     int
	lastSettings   Settings
}

func (s *stubRuntime) Configure(_ Context, set *Settings) error {
	s.configureCalls++
	s.lastSettings = *set

	return s.configureErr
}

func (s *stubRuntime) Process(block []float64) {
	s.processCalls++

	for i := range block {
		block[i] *= s.gain
	}
}

func (s *stubRuntime) Reset() { s.resetCalls++ }

// stubRegistry registers a unity stubRuntime for every stage kind and
// returns the instances by kind.
func stubRegistry(t *testing.T) (*Registry, map[StageKind]*stubRuntime) {
	t.Helper()

	r := NewRegistry()
	stubs := make(map[StageKind]*stubRuntime)

	for _, kind := range StageKinds() {
		stub := &stubRuntime{gain: 1}
		stubs[kind] = stub
		require.NoError(t, r.Register(kind, func(Context) (Runtime, error) { return stub, nil }))
	}

	return r, stubs
}

func testContext() Context {
	return Context{SampleRate: testSampleRate, Channels: testChannels, BlockSize: testBlock}
}

func newTestBuilder(t *testing.T, r *Registry) *Builder {
	t.Helper()

	b, err := NewBuilder(testContext(), r)
	require.NoError(t, err)

	return b
}

// program plans s, builds its graph and returns the program.
func program(t *testing.T, b *Builder, s Settings) *Program {
	t.Helper()

	g, err := b.Build(Plan(s, b.Conditions()))
	require.NoError(t, err)
	require.NoError(t, b.Prepare(s))

	return &Program{Settings: s, Graph: g}
}

func stereoSine(freq, amp float64, frames int) []float64 {
	return testutil.Sine(freq, testSampleRate, amp, testChannels, frames)
}

var peak = testutil.Peak
