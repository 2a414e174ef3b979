package dynamics

import (
	"math"
	"sync/atomic"
)

// meter publishes a float64 from the processing goroutine to any number of
// readers without locking.
type meter struct {
	bits atomic.Uint64
}

func (m *meter) store(v float64) {
	m.bits.Store(math.Float64bits(v))
}

func (m *meter) load() float64 {
	return math.Float64frombits(m.bits.Load())
}
