package session

import (
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-leveler/dsp/effectchain"
	"github.com/cwbudde/algo-leveler/dsp/effects/denoise"
	"github.com/cwbudde/algo-leveler/dsp/signal"
)

type config struct {
	logger   *logrus.Logger
	store    Store
	opener   Opener
	loader   denoise.Loader
	noise    *signal.NoiseCache
	registry *effectchain.Registry
}

// Option configures a Manager.
type Option func(*config)

// WithLogger sets the logger. The default is logrus.StandardLogger().
func WithLogger(l *logrus.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithStore sets the settings store. The default keeps settings in memory.
func WithStore(s Store) Option {
	return func(c *config) { c.store = s }
}

// WithOpener sets how sources are opened. Without one every source is
// unavailable.
func WithOpener(o Opener) Option {
	return func(c *config) { c.opener = o }
}

// WithDenoiseLoader sets the noise suppression model loader. Without one
// noise suppression never becomes ready.
func WithDenoiseLoader(l denoise.Loader) Option {
	return func(c *config) { c.loader = l }
}

// WithNoiseCache sets the cache of background noise beds shared by all
// sessions. The default is the process-wide cache.
func WithNoiseCache(n *signal.NoiseCache) Option {
	return func(c *config) { c.noise = n }
}

// WithRegistry sets the stage registry. The default is
// effectchain.DefaultRegistry().
func WithRegistry(r *effectchain.Registry) Option {
	return func(c *config) { c.registry = r }
}
