package signal

import (
	"fmt"
	"math/rand"
	"strings"
)

// Color selects the spectral shape of generated noise.
type Color int

// Noise colors.
const (
	White Color = iota
	Pink
	Brown
)

var colorNames = [...]string{
	White: "white",
	Pink:  "pink",
	Brown: "brown",
}

// String returns the lower-case name of c.
func (c Color) String() string {
	if c < 0 || int(c) >= len(colorNames) {
		return fmt.Sprintf("Color(%d)", int(c))
	}
	return colorNames[c]
}

// ParseColor maps "white", "pink" or "brown" to a Color.
func ParseColor(name string) (Color, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for c, n := range colorNames {
		if n == name {
			return Color(c), nil
		}
	}
	return White, fmt.Errorf("signal: unknown noise color %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	if c < 0 || int(c) >= len(colorNames) {
		return nil, fmt.Errorf("signal: invalid noise color %d", int(c))
	}
	return []byte(colorNames[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Brown noise integrator constants.
const (
	brownStep  = 0.02
	brownLeak  = 1.02
	brownScale = 3.5
	pinkScale  = 0.11
)

// NoiseSource is a stateful noise generator. White noise is uniform in
// [-1, 1]. Pink noise uses Paul Kellet's refined six-pole filter. Brown
// noise is leaky-integrated white noise.
type NoiseSource struct {
	color Color
	rng   *rand.Rand

	pink  [7]float64
	brown float64
}

// NewNoiseSource creates a noise source of the given color seeded with seed.
func NewNoiseSource(color Color, seed int64) (*NoiseSource, error) {
	if color < White || color > Brown {
		return nil, fmt.Errorf("signal: invalid noise color %d", int(color))
	}
	return &NoiseSource{color: color, rng: rand.New(rand.NewSource(seed))}, nil
}

// Color returns the noise color.
func (n *NoiseSource) Color() Color { return n.color }

// Next returns the next noise sample.
func (n *NoiseSource) Next() float64 {
	white := n.rng.Float64()*2 - 1

	switch n.color {
	case Pink:
		p := &n.pink
		p[0] = 0.99886*p[0] + white*0.0555179
		p[1] = 0.99332*p[1] + white*0.0750759
		p[2] = 0.96900*p[2] + white*0.1538520
		p[3] = 0.86650*p[3] + white*0.3104856
		p[4] = 0.55000*p[4] + white*0.5329522
		p[5] = -0.7616*p[5] - white*0.0168980
		out := p[0] + p[1] + p[2] + p[3] + p[4] + p[5] + p[6] + white*0.5362
		p[6] = white * 0.115926
		return out * pinkScale
	case Brown:
		n.brown = (n.brown + brownStep*white) / brownLeak
		return n.brown * brownScale
	default:
		return white
	}
}

// Fill writes len(buf) consecutive samples into buf.
func (n *NoiseSource) Fill(buf []float64) {
	for i := range buf {
		buf[i] = n.Next()
	}
}

// Reset clears the filter state. The random sequence continues.
func (n *NoiseSource) Reset() {
	n.pink = [7]float64{}
	n.brown = 0
}
