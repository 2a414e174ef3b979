package effectchain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dummyFactory(_ Context) (Runtime, error) {
	return &stubRuntime{gain: 1}, nil
}

func TestRegistryRegister(t *testing.T) {
	t.Parallel()

	t.Run("registers and looks up factory", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		require.NoError(t, r.Register(StageGate, dummyFactory))
		assert.NotNil(t, r.Lookup(StageGate))
		assert.Nil(t, r.Lookup(StageAGC))
	})

	t.Run("rejects invalid kind", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		assert.Error(t, r.Register(StageKind(-1), dummyFactory))
		assert.Error(t, r.Register(numStageKinds, dummyFactory))
	})

	t.Run("rejects nil factory", func(t *testing.T) {
		t.Parallel()

		assert.Error(t, NewRegistry().Register(StageGate, nil))
	})

	t.Run("rejects duplicate registration", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		require.NoError(t, r.Register(StageGate, dummyFactory))

		err := r.Register(StageGate, dummyFactory)
		assert.ErrorIs(t, err, errDuplicateStage)
	})

	t.Run("must register panics on duplicate", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		r.MustRegister(StageGate, dummyFactory)
		assert.Panics(t, func() { r.MustRegister(StageGate, dummyFactory) })
	})
}

func TestRegistryNew(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.MustRegister(StageEQ, func(Context) (Runtime, error) { return nil, errors.New("boom") })

	_, err := r.New(testContext(), StageGate)
	assert.ErrorIs(t, err, ErrUnknownStage)

	_, err = r.New(testContext(), StageEQ)
	assert.ErrorContains(t, err, "boom")
}

func TestDefaultRegistryCoversEveryStage(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry()

	for _, kind := range StageKinds() {
		t.Run(kind.String(), func(t *testing.T) {
			t.Parallel()

			rt, err := r.New(testContext(), kind)
			require.NoError(t, err)

			s := DefaultSettings()
			s.NoiseEnabled = true
			s.LimiterEnabled = true
			require.NoError(t, rt.Configure(testContext(), &s))

			block := stereoSine(1000, 0.1, testBlock)
			rt.Process(block)
			rt.Reset()
		})
	}
}
