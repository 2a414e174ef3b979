package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-leveler/dsp/core"
	"github.com/cwbudde/algo-leveler/dsp/effectchain"
	"github.com/cwbudde/algo-leveler/dsp/effects/denoise"
	"github.com/cwbudde/algo-leveler/session"
)

type processCmd struct {
	settingsFlags

	Store     string `type:"path" help:"Directory that persists settings per input file."`
	BlockSize int    `default:"480" help:"Frames per processing block."`
	Denoise   bool   `help:"Load the spectral gate noise suppressor. It joins the graph once loaded."`
	Graph     bool   `help:"Print the processing graph as JSON to stdout. Combine with -q for JSON only."`
	Quiet     bool   `short:"q" help:"Do not print the summary."`

	Input  string `arg:"" type:"existingfile" help:"Input WAV file."`
	Output string `arg:"" type:"path" help:"Output WAV file."`
}

func (c *processCmd) Run(env *runEnv) error {
	store, err := c.openStore()
	if err != nil {
		return err
	}

	// The record is saved before the session exists so the first block
	// already runs with the requested configuration.
	base := effectchain.DefaultSettings()
	if record, ok, err := store.Load(c.Input); err != nil {
		env.log.WithField("error", err.Error()).Warn("Failed to load persisted settings, using defaults")
	} else if ok {
		base, _ = effectchain.ApplyPatch(base, record)
	}

	settings, err := c.settings(base, env.log)
	if err != nil {
		return err
	}

	if err := store.Save(c.Input, effectchain.ToMap(settings)); err != nil {
		return err
	}

	var dev *wavDevice

	opts := []session.Option{
		session.WithLogger(env.log),
		session.WithStore(store),
		session.WithOpener(wavOpener(c.Output, c.BlockSize, &dev)),
	}
	if c.Denoise {
		opts = append(opts, session.WithDenoiseLoader(denoise.SpectralGateLoader()))
	}

	m := session.NewManager(opts...)
	defer m.Close()

	start := time.Now()

	id, err := m.CreateSession(env.ctx, c.Input)
	if err != nil {
		return err
	}

	s, _ := m.Session(id)
	peakReduction := c.wait(env, s)

	state := s.State()

	if c.Graph {
		raw, err := json.MarshalIndent(s.Graph(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(env.stdout, string(raw))
	}

	if err := m.DestroySession(id); err != nil {
		return err
	}

	if err := s.Err(); err != nil {
		return err
	}

	if env.ctx.Err() != nil {
		return env.ctx.Err()
	}

	elapsed := time.Since(start)
	seconds := float64(dev.frames) / dev.sampleRate

	env.log.WithFields(logrus.Fields{
		"function": "process",
		"input":    c.Input,
		"output":   c.Output,
		"frames":   dev.frames,
		"elapsed":  elapsed.String(),
	}).Debug("Processing finished")

	if c.Quiet {
		return nil
	}

	fmt.Fprint(env.stdout, renderSummary("leveler "+filepath.Base(c.Input), []row{
		{"Output", c.Output},
		{"Format", fmt.Sprintf("%.0f Hz, %d ch, %d-bit", dev.sampleRate, dev.channels, dev.bitDepth)},
		{"Graph", state.Topology.String()},
		{"Noise suppressor", state.Suppressor.String()},
		{"Duration", fmt.Sprintf("%.2fs in %d blocks", seconds, state.Blocks)},
		{"Speed", fmt.Sprintf("%.1fx realtime", seconds/max(elapsed.Seconds(), 1e-9))},
		{"Input peak", fmt.Sprintf("%.2f dBFS", core.LevelDB(dev.peakIn))},
		{"Output peak", fmt.Sprintf("%.2f dBFS", core.LevelDB(dev.peakOut))},
		{"Max reduction", fmt.Sprintf("%.2f dB", peakReduction)},
	}))

	return nil
}

func (c *processCmd) openStore() (session.Store, error) {
	if c.Store == "" {
		return session.NewMemoryStore(), nil
	}

	return session.NewFileStore(c.Store)
}

// wait polls the gain reduction meter until the session ends or the
// command is interrupted, and returns the deepest reduction seen.
func (c *processCmd) wait(env *runEnv, s *session.Session) float64 {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	peak := 0.0
	for {
		select {
		case <-s.Done():
			return min(peak, s.Reduction())
		case <-env.ctx.Done():
			return peak
		case <-ticker.C:
			peak = min(peak, s.Reduction())
		}
	}
}
