package session

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-leveler/dsp/effectchain"
	"github.com/cwbudde/algo-leveler/dsp/effects/dynamics"
	"github.com/cwbudde/algo-leveler/dsp/signal"
)

// Errors returned by the Manager.
var (
	ErrSessionNotFound = errors.New("session: not found")
	ErrClosed          = errors.New("session: manager closed")
)

// ID identifies a session.
type ID uint64

// Manager is the registry of live sessions. Creating and destroying
// sessions are the only operations that change the registry; every other
// call is routed to one session.
type Manager struct {
	cfg config
	log *logrus.Logger

	mu       sync.RWMutex
	sessions map[ID]*Session
	nextID   ID
	closed   bool
}

// NewManager creates an empty Manager.
func NewManager(opts ...Option) *Manager {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.logger == nil {
		cfg.logger = logrus.StandardLogger()
	}

	if cfg.store == nil {
		cfg.store = NewMemoryStore()
	}

	if cfg.noise == nil {
		cfg.noise = signal.DefaultNoiseCache()
	}

	if cfg.registry == nil {
		cfg.registry = effectchain.DefaultRegistry()
	}

	return &Manager{
		cfg:      cfg,
		log:      cfg.logger,
		sessions: make(map[ID]*Session),
	}
}

// CreateSession opens source and starts processing it with the source's
// persisted settings, or defaults. A failure leaves no state behind.
func (m *Manager) CreateSession(ctx context.Context, source string) (ID, error) {
	log := m.log.WithFields(logrus.Fields{
		"function": "CreateSession",
		"source":   source,
	})

	m.mu.RLock()
	closed := m.closed
	m.mu.RUnlock()

	if closed {
		return 0, ErrClosed
	}

	if m.cfg.opener == nil {
		return 0, fmt.Errorf("%w: %s: no opener configured", ErrSourceUnavailable, source)
	}

	dev, err := m.cfg.opener.Open(ctx, source)
	if err != nil {
		log.WithField("error", err.Error()).Warn("Failed to open source")
		return 0, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, source, err)
	}

	settings := m.loadSettings(source, log)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		_ = dev.Close()

		return 0, ErrClosed
	}
	m.nextID++
	id := m.nextID
	m.mu.Unlock()

	s, err := newSession(id, source, dev, settings, m.cfg, log.WithField("session", id))
	if err != nil {
		_ = dev.Close()
		log.WithField("error", err.Error()).Warn("Failed to build session")

		return 0, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, source, err)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		s.close()

		return 0, ErrClosed
	}
	m.sessions[id] = s
	m.mu.Unlock()

	s.start()

	log.WithFields(logrus.Fields{
		"session":     id,
		"sample_rate": dev.SampleRate(),
		"channels":    dev.Channels(),
		"block_size":  dev.BlockSize(),
		"topology":    s.Topology().String(),
	}).Info("Session created")

	return id, nil
}

func (m *Manager) loadSettings(source string, log *logrus.Entry) effectchain.Settings {
	settings := effectchain.DefaultSettings()

	record, ok, err := m.cfg.store.Load(source)
	if err != nil {
		log.WithField("error", err.Error()).Warn("Failed to load persisted settings, using defaults")
		return settings
	}

	if !ok {
		return settings
	}

	settings, res := effectchain.ApplyPatch(settings, record)
	for _, ig := range res.Ignored {
		log.WithFields(logrus.Fields{
			"key":    ig.Key,
			"reason": ig.Reason,
		}).Debug("Ignored persisted setting")
	}

	return settings
}

func (m *Manager) session(id ID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]

	return s, ok
}

// UpdateSettings applies a partial settings patch. Unknown, wrongly typed
// and out-of-range fields are ignored one by one and reported in the
// result. The new settings are persisted when anything changed.
func (m *Manager) UpdateSettings(id ID, patch map[string]any) (effectchain.PatchResult, error) {
	s, ok := m.session(id)
	if !ok {
		return effectchain.PatchResult{}, fmt.Errorf("%w: %d", ErrSessionNotFound, id)
	}

	return s.Update(patch)
}

// SetEnabled switches all processing of a session on or off.
func (m *Manager) SetEnabled(id ID, enabled bool) error {
	_, err := m.UpdateSettings(id, map[string]any{effectchain.KeyEnabled: enabled})
	return err
}

// State returns a snapshot of a session.
func (m *Manager) State(id ID) (State, error) {
	s, ok := m.session(id)
	if !ok {
		return State{}, fmt.Errorf("%w: %d", ErrSessionNotFound, id)
	}

	return s.State(), nil
}

// Reduction returns the current gain reduction of a session's compressor in
// dB. An unknown session reports 0.
func (m *Manager) Reduction(id ID) float64 {
	s, ok := m.session(id)
	if !ok {
		return 0
	}

	return s.Reduction()
}

// MultibandReduction returns the current per-band gain reduction of a
// session's multiband compressor. An unknown session, or one without the
// multiband compressor wired, reports zeros.
func (m *Manager) MultibandReduction(id ID) dynamics.BandReduction {
	s, ok := m.session(id)
	if !ok {
		return dynamics.BandReduction{}
	}

	return s.MultibandReduction()
}

// Sessions returns the IDs of all live sessions in ascending order.
func (m *Manager) Sessions() []ID {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Sorted(maps.Keys(m.sessions))
}

// Session returns a live session.
func (m *Manager) Session(id ID) (*Session, bool) {
	return m.session(id)
}

// DestroySession stops a session. It waits for the audio loop to drain,
// then disconnects the graph and closes the device.
func (m *Manager) DestroySession(id ID) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %d", ErrSessionNotFound, id)
	}

	err := s.close()

	m.log.WithFields(logrus.Fields{
		"function": "DestroySession",
		"session":  id,
		"source":   s.source,
		"blocks":   s.Blocks(),
	}).Info("Session destroyed")

	return err
}

// Close destroys every session and rejects new ones.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.closed = true
	ids := slices.Sorted(maps.Keys(m.sessions))
	m.mu.Unlock()

	var errs []error
	for _, id := range ids {
		if err := m.DestroySession(id); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
