package denoise

import "fmt"

// State is the readiness of a suppressor.
type State int32

const (
	StateNotReady State = iota
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotReady:
		return "not-ready"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}
