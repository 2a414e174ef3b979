package design

import (
	"fmt"
	"strings"
)

// Kind selects the response shape of a single biquad band.
type Kind int

// Supported band kinds.
const (
	KindPeaking Kind = iota
	KindHighpass
	KindLowpass
	KindLowShelf
	KindHighShelf
)

var kindNames = [...]string{
	KindPeaking:   "peaking",
	KindHighpass:  "highpass",
	KindLowpass:   "lowpass",
	KindLowShelf:  "lowshelf",
	KindHighShelf: "highshelf",
}

// String returns the lower-case name of k.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// UsesGain reports whether the gain parameter affects the response of k.
func (k Kind) UsesGain() bool {
	return k == KindPeaking || k == KindLowShelf || k == KindHighShelf
}

// ParseKind maps a name such as "lowshelf" to its Kind. Matching is
// case-insensitive.
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("design: unknown filter kind %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(kindNames) {
		return nil, fmt.Errorf("design: invalid filter kind %d", int(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
