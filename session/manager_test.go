package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-leveler/dsp/core"
	"github.com/cwbudde/algo-leveler/dsp/effectchain"
	"github.com/cwbudde/algo-leveler/dsp/effects/denoise"
	"github.com/cwbudde/algo-leveler/dsp/effects/dynamics"
)

func TestCreateSessionSourceUnavailable(t *testing.T) {
	t.Parallel()

	t.Run("opener error", func(t *testing.T) {
		t.Parallel()

		m := NewManager(WithOpener(OpenerFunc(func(context.Context, string) (Device, error) {
			return nil, errors.New("no such device")
		})))

		_, err := m.CreateSession(context.Background(), "mic")
		require.ErrorIs(t, err, ErrSourceUnavailable)
		assert.ErrorContains(t, err, "no such device")
		assert.Empty(t, m.Sessions())
	})

	t.Run("no opener", func(t *testing.T) {
		t.Parallel()

		_, err := NewManager().CreateSession(context.Background(), "mic")
		assert.ErrorIs(t, err, ErrSourceUnavailable)
	})

	t.Run("invalid device", func(t *testing.T) {
		t.Parallel()

		dev := &badDevice{fakeDevice: newSteppedDevice(0)}
		m := NewManager(WithOpener(OpenerFunc(func(context.Context, string) (Device, error) { return dev, nil })))

		_, err := m.CreateSession(context.Background(), "mic")
		assert.ErrorIs(t, err, ErrSourceUnavailable)
		assert.True(t, dev.closed.Load(), "a failed session must release its device")
		assert.Empty(t, m.Sessions())
	})
}

// badDevice reports a zero block size.
type badDevice struct{ *fakeDevice }

func (badDevice) BlockSize() int { return 0 }

func TestCreateSessionDefaults(t *testing.T) {
	t.Parallel()

	dev := newSteppedDevice(0.1)
	m, hook := newTestManager(t, dev)

	id, err := m.CreateSession(context.Background(), "mic")
	require.NoError(t, err)
	assert.Equal(t, []ID{id}, m.Sessions())

	st, err := m.State(id)
	require.NoError(t, err)
	assert.Equal(t, id, st.ID)
	assert.Equal(t, "mic", st.Source)
	assert.True(t, st.Enabled)
	assert.Equal(t, effectchain.DefaultSettings(), st.Settings)
	assert.True(t, st.Topology.Equal(effectchain.Topology{Stages: []effectchain.StageKind{effectchain.StageMixer}}))
	assert.Equal(t, denoise.StateNotReady, st.Suppressor)
	assert.True(t, hasEntry(hook, logrus.InfoLevel, "Session created"))
}

func TestCreateSessionRestoresPersistedSettings(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	require.NoError(t, store.Save("mic", map[string]any{
		"compressorEnabled": true,
		"ratio":             8.0,
		"bogus":             1.0,
	}))

	dev := newSteppedDevice(0.1)
	m, hook := newTestManager(t, dev, WithStore(store))

	id, err := m.CreateSession(context.Background(), "mic")
	require.NoError(t, err)

	st, err := m.State(id)
	require.NoError(t, err)
	assert.True(t, st.Settings.CompressorEnabled)
	assert.InDelta(t, 8, st.Settings.Compressor.Ratio, 0)
	assert.True(t, st.Topology.Contains(effectchain.StageCompressor))
	assert.True(t, hasEntry(hook, logrus.DebugLevel, "Ignored persisted setting"))
}

func TestUpdateSettings(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	dev := newSteppedDevice(0.1)
	m, hook := newTestManager(t, dev, WithStore(store))

	id, err := m.CreateSession(context.Background(), "mic")
	require.NoError(t, err)

	res, err := m.UpdateSettings(id, map[string]any{
		"limiterEnabled":     true,
		"limiterThresholdDB": -3.0,
		"ratio":              500.0,
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"limiterEnabled", "limiterThresholdDB"}, res.Applied)
	require.Len(t, res.Ignored, 1)
	assert.Equal(t, "ratio", res.Ignored[0].Key)
	assert.True(t, hasEntry(hook, logrus.DebugLevel, "Ignored settings field"))
	assert.True(t, hasEntry(hook, logrus.InfoLevel, "Rebuilding processing graph"))

	record, ok, err := store.Load("mic")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, true, record["limiterEnabled"])
	assert.InDelta(t, -3.0, record["limiterThresholdDB"], 0)

	st, err := m.State(id)
	require.NoError(t, err)
	assert.True(t, st.Topology.Contains(effectchain.StageLimiter))

	_, err = m.UpdateSettings(id+1, map[string]any{"ratio": 2.0})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestUpdateSettingsWithoutChangesSkipsPersistence(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	dev := newSteppedDevice(0.1)
	m, _ := newTestManager(t, dev, WithStore(store))

	id, err := m.CreateSession(context.Background(), "mic")
	require.NoError(t, err)

	res, err := m.UpdateSettings(id, map[string]any{"nothing": 1.0})
	require.NoError(t, err)
	assert.False(t, res.Changed())

	_, ok, err := store.Load("mic")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNumericUpdateKeepsGraph(t *testing.T) {
	t.Parallel()

	dev := newSteppedDevice(0.1)
	m, _ := newTestManager(t, dev)

	id, err := m.CreateSession(context.Background(), "mic")
	require.NoError(t, err)

	s, ok := m.Session(id)
	require.True(t, ok)

	_, err = m.UpdateSettings(id, map[string]any{"compressorEnabled": true})
	require.NoError(t, err)
	g := s.Graph()

	_, err = m.UpdateSettings(id, map[string]any{"ratio": 10.0, "eq1GainDB": 3.0, "outputGainDB": -2.0})
	require.NoError(t, err)
	assert.Same(t, g, s.Graph())

	_, err = m.UpdateSettings(id, map[string]any{"bassCutHz": 120.0})
	require.NoError(t, err)
	assert.NotSame(t, g, s.Graph())
}

func TestMutualExclusivityThroughManager(t *testing.T) {
	t.Parallel()

	dev := newSteppedDevice(0.1)
	m, _ := newTestManager(t, dev)

	id, err := m.CreateSession(context.Background(), "mic")
	require.NoError(t, err)

	_, err = m.UpdateSettings(id, map[string]any{"compressorEnabled": true})
	require.NoError(t, err)
	_, err = m.UpdateSettings(id, map[string]any{"multibandEnabled": true})
	require.NoError(t, err)

	st, err := m.State(id)
	require.NoError(t, err)
	assert.True(t, st.Settings.MultibandEnabled)
	assert.False(t, st.Settings.CompressorEnabled)
	assert.True(t, st.Topology.Contains(effectchain.StageMultiband))
	assert.False(t, st.Topology.Contains(effectchain.StageCompressor))
}

func TestSetEnabledBypassIsIdentity(t *testing.T) {
	t.Parallel()

	dev := newSteppedDevice(0.5)
	m, _ := newTestManager(t, dev)

	id, err := m.CreateSession(context.Background(), "mic")
	require.NoError(t, err)

	s, _ := m.Session(id)

	_, err = m.UpdateSettings(id, map[string]any{
		"compressorEnabled": true,
		"noiseEnabled":      true,
		"outputGainDB":      6.0,
	})
	require.NoError(t, err)
	step(t, s, dev, 2)

	in, out := dev.lastBlocks(1)
	assert.NotEqual(t, in, out)

	require.NoError(t, m.SetEnabled(id, false))
	step(t, s, dev, 1)

	in, out = dev.lastBlocks(1)
	assert.Equal(t, in, out)

	st, err := m.State(id)
	require.NoError(t, err)
	assert.False(t, st.Enabled)
	assert.True(t, st.Topology.Bypass)

	assert.ErrorIs(t, m.SetEnabled(id+7, true), ErrSessionNotFound)
}

func TestLimiterCeilingOnStream(t *testing.T) {
	t.Parallel()

	dev := newSteppedDevice(1)
	m, _ := newTestManager(t, dev)

	id, err := m.CreateSession(context.Background(), "mic")
	require.NoError(t, err)

	s, _ := m.Session(id)

	_, err = m.UpdateSettings(id, map[string]any{
		"limiterEnabled":     true,
		"limiterThresholdDB": -6.0,
		"outputGainDB":       12.0,
	})
	require.NoError(t, err)
	step(t, s, dev, 10)

	_, out := dev.lastBlocks(10)
	for _, v := range out {
		require.LessOrEqual(t, v, core.DBToLinear(-6)+1e-12)
		require.GreaterOrEqual(t, v, -core.DBToLinear(-6)-1e-12)
	}
}

func TestMetering(t *testing.T) {
	t.Parallel()

	dev := newSteppedDevice(0.5)
	m, _ := newTestManager(t, dev)

	id, err := m.CreateSession(context.Background(), "mic")
	require.NoError(t, err)

	s, _ := m.Session(id)

	_, err = m.UpdateSettings(id, map[string]any{"compressorEnabled": true})
	require.NoError(t, err)
	step(t, s, dev, 10)

	assert.Less(t, m.Reduction(id), -1.0)
	assert.Equal(t, dynamics.BandReduction{}, m.MultibandReduction(id))

	st, err := m.State(id)
	require.NoError(t, err)
	assert.Less(t, st.GainReductionDB, -1.0)

	_, err = m.UpdateSettings(id, map[string]any{"multibandEnabled": true})
	require.NoError(t, err)
	step(t, s, dev, 10)

	bands := m.MultibandReduction(id)
	assert.Less(t, bands.Mid, -1.0)
	assert.InDelta(t, min(bands.Sub, bands.Mid, bands.High), m.Reduction(id), 1e-9)
}

func TestMeteringUnknownSession(t *testing.T) {
	t.Parallel()

	m := NewManager()
	assert.InDelta(t, 0, m.Reduction(42), 0)
	assert.Equal(t, dynamics.BandReduction{}, m.MultibandReduction(42))

	_, err := m.State(42)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDestroySession(t *testing.T) {
	t.Parallel()

	dev := newSteppedDevice(0.1)
	m, hook := newTestManager(t, dev)

	id, err := m.CreateSession(context.Background(), "mic")
	require.NoError(t, err)

	s, _ := m.Session(id)
	step(t, s, dev, 1)
	g := s.Graph()

	require.NoError(t, m.DestroySession(id))

	assert.True(t, dev.closed.Load())
	assert.True(t, g.Disconnected())
	assert.Empty(t, m.Sessions())
	assert.InDelta(t, 0, m.Reduction(id), 0)
	assert.True(t, hasEntry(hook, logrus.InfoLevel, "Session destroyed"))

	select {
	case <-s.Done():
	default:
		t.Fatal("audio loop still running after destroy")
	}

	require.NoError(t, s.Err())
	assert.ErrorIs(t, m.DestroySession(id), ErrSessionNotFound)

	_, err = s.Update(map[string]any{"ratio": 2.0})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManagerClose(t *testing.T) {
	t.Parallel()

	dev := newSteppedDevice(0.1)
	m, _ := newTestManager(t, dev)

	_, err := m.CreateSession(context.Background(), "mic")
	require.NoError(t, err)

	require.NoError(t, m.Close())
	assert.Empty(t, m.Sessions())
	assert.True(t, dev.closed.Load())

	_, err = m.CreateSession(context.Background(), "mic")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSessionEndOfStream(t *testing.T) {
	t.Parallel()

	dev := &fakeDevice{amp: 0.25, total: 5*testBlock + 100}
	m, _ := newTestManager(t, dev)

	id, err := m.CreateSession(context.Background(), "file")
	require.NoError(t, err)

	s, _ := m.Session(id)

	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("session did not finish")
	}

	require.NoError(t, s.Err())
	assert.Equal(t, uint64(6), s.Blocks())
	assert.Len(t, dev.output, len(dev.input))
	assert.Equal(t, dev.input, dev.output, "default settings are transparent")
}
