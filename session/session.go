package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-leveler/dsp/buffer"
	"github.com/cwbudde/algo-leveler/dsp/effectchain"
	"github.com/cwbudde/algo-leveler/dsp/effects/denoise"
	"github.com/cwbudde/algo-leveler/dsp/effects/dynamics"
)

// State is a snapshot of a session.
type State struct {
	ID              ID
	Source          string
	Enabled         bool
	Settings        effectchain.Settings
	GainReductionDB float64
	// Topology is the most recently published topology. The audio loop
	// installs it at its next block boundary.
	Topology   effectchain.Topology
	Suppressor denoise.State
	Blocks     uint64
}

// Session processes one source. Control methods may be called from any
// goroutine; they are serialized against each other and never block the
// audio loop.
type Session struct {
	id     ID
	source string
	log    *logrus.Entry

	device Device
	store  Store
	loader denoise.Loader

	chain      *effectchain.Chain
	suppressor *denoise.Suppressor

	// Control timeline state.
	mu                sync.Mutex
	settings          effectchain.Settings
	builder           *effectchain.Builder
	published         *effectchain.Program
	suppressorStarted bool
	closed            bool

	ctx     context.Context
	cancel  context.CancelFunc
	started atomic.Bool
	done    chan struct{}
	runErr  error
	blocks  atomic.Uint64
}

func newSession(
	id ID,
	source string,
	dev Device,
	settings effectchain.Settings,
	cfg config,
	log *logrus.Entry,
) (*Session, error) {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		id:       id,
		source:   source,
		log:      log,
		device:   dev,
		store:    cfg.store,
		loader:   cfg.loader,
		settings: settings,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	chainCtx := effectchain.Context{
		SampleRate: dev.SampleRate(),
		Channels:   dev.Channels(),
		BlockSize:  dev.BlockSize(),
		Noise:      cfg.noise,
	}

	if cfg.loader != nil {
		sup, err := denoise.NewSuppressor(dev.SampleRate(), dev.Channels())
		if err != nil {
			cancel()
			return nil, err
		}

		s.suppressor = sup
		chainCtx.Suppressor = sup
	}

	builder, err := effectchain.NewBuilder(chainCtx, cfg.registry)
	if err != nil {
		cancel()
		return nil, err
	}

	s.builder = builder
	s.chain = effectchain.NewChain(chainCtx)

	s.mu.Lock()
	err = s.publishLocked()
	s.mu.Unlock()

	if err != nil {
		cancel()
		return nil, err
	}

	return s, nil
}

// ID returns the session ID.
func (s *Session) ID() ID { return s.id }

// Source returns the source the session processes.
func (s *Session) Source() string { return s.source }

// Done is closed when the audio loop has stopped.
func (s *Session) Done() <-chan struct{} { return s.done }

// Err returns the error that stopped the audio loop, after Done is closed.
// The end of the stream is not an error.
func (s *Session) Err() error {
	select {
	case <-s.done:
		return s.runErr
	default:
		return nil
	}
}

// Blocks returns the number of blocks processed so far.
func (s *Session) Blocks() uint64 { return s.blocks.Load() }

// Settings returns the current settings.
func (s *Session) Settings() effectchain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.settings
}

// Topology returns the most recently published topology.
func (s *Session) Topology() effectchain.Topology {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.published.Graph.Topology()
}

// Graph returns the most recently published graph.
func (s *Session) Graph() *effectchain.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.published.Graph
}

// Reduction returns the current compressor gain reduction in dB.
func (s *Session) Reduction() float64 { return s.chain.GainReductionDB() }

// MultibandReduction returns the current per-band gain reduction.
func (s *Session) MultibandReduction() dynamics.BandReduction {
	r, _ := s.chain.BandReductionDB()
	return r
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		ID:              s.id,
		Source:          s.source,
		Enabled:         s.settings.Enabled,
		Settings:        s.settings,
		GainReductionDB: s.chain.GainReductionDB(),
		Topology:        s.published.Graph.Topology(),
		Suppressor:      denoise.StateNotReady,
		Blocks:          s.blocks.Load(),
	}

	if s.suppressor != nil {
		st.Suppressor = s.suppressor.State()
	}

	return st
}

// Update applies a partial settings patch and persists the result when
// anything changed.
func (s *Session) Update(patch map[string]any) (effectchain.PatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return effectchain.PatchResult{}, fmt.Errorf("%w: %d", ErrSessionNotFound, s.id)
	}

	next, res := effectchain.ApplyPatch(s.settings, patch)

	for _, ig := range res.Ignored {
		s.log.WithFields(logrus.Fields{
			"function": "Update",
			"key":      ig.Key,
			"reason":   ig.Reason,
		}).Debug("Ignored settings field")
	}

	if !res.Changed() {
		return res, nil
	}

	s.settings = next

	if err := s.publishLocked(); err != nil {
		return res, err
	}

	if err := s.store.Save(s.source, effectchain.ToMap(next)); err != nil {
		s.log.WithFields(logrus.Fields{
			"function": "Update",
			"error":    err.Error(),
		}).Error("Failed to persist settings")

		return res, err
	}

	return res, nil
}

// publishLocked plans the current settings, rebuilds the graph when the
// topology changed and hands the program to the audio loop.
func (s *Session) publishLocked() error {
	if err := s.chain.TakeErr(); err != nil {
		s.log.WithFields(logrus.Fields{
			"function": "publish",
			"error":    err.Error(),
		}).Warn("Stage configuration failed")
	}

	s.maybeStartSuppressorLocked()

	top := effectchain.Plan(s.settings, s.builder.Conditions())

	var graph *effectchain.Graph
	if s.published != nil && s.published.Graph.Topology().Equal(top) {
		graph = s.published.Graph
	} else {
		g, err := s.builder.Build(top)
		if err != nil {
			return fmt.Errorf("session: build graph: %w", err)
		}

		graph = g

		s.log.WithFields(logrus.Fields{
			"function": "publish",
			"topology": top.String(),
		}).Info("Rebuilding processing graph")
	}

	if err := s.builder.Prepare(s.settings); err != nil {
		return fmt.Errorf("session: %w", err)
	}

	p := &effectchain.Program{Settings: s.settings, Graph: graph}
	s.chain.Publish(p)
	s.published = p

	return nil
}

func (s *Session) maybeStartSuppressorLocked() {
	if s.suppressor == nil || s.suppressorStarted {
		return
	}

	if !s.settings.Enabled || !s.settings.NoiseSuppressionEnabled {
		return
	}

	s.suppressorStarted = true
	s.suppressor.Start(s.ctx, s.loader, s.onSuppressorState)

	s.log.WithField("function", "publish").Info("Loading noise suppression model")
}

// onSuppressorState replans when the suppressor becomes ready or fails.
func (s *Session) onSuppressorState(st denoise.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	log := s.log.WithFields(logrus.Fields{
		"function": "onSuppressorState",
		"state":    st.String(),
	})

	if st == denoise.StateFailed {
		log.WithField("error", fmt.Sprint(s.suppressor.Err())).Warn("Noise suppression unavailable, bypassing it")
	} else {
		log.Info("Noise suppression ready")
	}

	if err := s.publishLocked(); err != nil {
		log.WithField("error", err.Error()).Error("Failed to rebuild graph")
	}
}

func (s *Session) start() {
	s.started.Store(true)
	go s.run()
}

// run is the audio loop.
func (s *Session) run() {
	defer close(s.done)

	ch, size := s.device.Channels(), s.device.BlockSize()
	frame := buffer.New(ch, size)

	for s.ctx.Err() == nil {
		frame.Resize(ch, size)

		n, err := s.device.Read(s.ctx, frame.Samples())
		if n > 0 {
			frame.Resize(ch, n)
			s.chain.Process(frame.Samples())

			if werr := s.device.Write(frame.Samples()); werr != nil {
				s.runErr = fmt.Errorf("session: write: %w", werr)
				return
			}

			s.blocks.Add(1)
		}

		if err != nil {
			if !errors.Is(err, io.EOF) && s.ctx.Err() == nil {
				s.runErr = fmt.Errorf("session: read: %w", err)
			}

			return
		}
	}
}

// close stops the audio loop, waits for it to drain and releases the
// graph, the suppressor and the device.
func (s *Session) close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	if s.started.Load() {
		<-s.done
	}

	s.chain.Close()

	var errs []error
	if s.suppressor != nil {
		if err := s.suppressor.Close(); err != nil {
			errs = append(errs, fmt.Errorf("session: close suppressor: %w", err))
		}
	}

	if err := s.device.Close(); err != nil {
		errs = append(errs, fmt.Errorf("session: close device: %w", err))
	}

	return errors.Join(errs...)
}
