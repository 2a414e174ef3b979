package signal

import (
	"sync"
	"time"
)

// NoiseBedDuration is the length of a cached noise bed.
const NoiseBedDuration = 2 * time.Second

type noiseKey struct {
	color      Color
	sampleRate int
}

// NoiseCache holds one looping mono noise bed per color and sample rate.
// Beds are generated lazily on first use and shared read-only by every
// caller. Concurrent first access may generate a bed more than once; one
// result wins and all callers observe it.
type NoiseCache struct {
	beds sync.Map // noiseKey -> []float64
}

// NewNoiseCache creates an empty cache.
func NewNoiseCache() *NoiseCache {
	return &NoiseCache{}
}

var defaultNoiseCache = NewNoiseCache()

// DefaultNoiseCache returns the process-wide cache.
func DefaultNoiseCache() *NoiseCache { return defaultNoiseCache }

// Bed returns the noise bed for color at sampleRate. The returned slice must
// not be modified.
func (c *NoiseCache) Bed(color Color, sampleRate float64) ([]float64, error) {
	key := noiseKey{color: color, sampleRate: int(sampleRate)}
	if v, ok := c.beds.Load(key); ok {
		return v.([]float64), nil
	}

	n := int(NoiseBedDuration.Seconds() * sampleRate)
	if n < 1 {
		n = 1
	}
	src, err := NewNoiseSource(color, noiseSeed(color))
	if err != nil {
		return nil, err
	}
	bed := make([]float64, n)
	src.Fill(bed)

	v, _ := c.beds.LoadOrStore(key, bed)
	return v.([]float64), nil
}

// Len returns the number of cached beds.
func (c *NoiseCache) Len() int {
	n := 0
	c.beds.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func noiseSeed(color Color) int64 {
	return 0x5eed + int64(color)
}
