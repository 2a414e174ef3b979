package effectchain

import (
	"errors"
	"fmt"
)

// ErrUnknownStage is returned when no factory is registered for a stage kind.
var ErrUnknownStage = errors.New("effectchain: unknown stage")

// Factory builds one Runtime instance for a stage.
type Factory func(ctx Context) (Runtime, error)

// Registry maps stage kinds to their factories.
type Registry struct {
	factories map[StageKind]Factory
}

var errDuplicateStage = errors.New("duplicate stage kind")

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[StageKind]Factory)}
}

// Register adds a factory for the given stage kind.
func (r *Registry) Register(kind StageKind, factory Factory) error {
	if kind < 0 || kind >= numStageKinds {
		return fmt.Errorf("invalid stage kind %d", int(kind))
	}

	if factory == nil {
		return errors.New("nil factory")
	}

	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("%w: %s", errDuplicateStage, kind)
	}

	r.factories[kind] = factory

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(kind StageKind, factory Factory) {
	err := r.Register(kind, factory)
	if err != nil {
		panic("effectchain registry: " + err.Error())
	}
}

// Lookup returns the factory for the given stage kind, or nil.
func (r *Registry) Lookup(kind StageKind) Factory {
	return r.factories[kind]
}

// New builds a runtime for kind.
func (r *Registry) New(ctx Context, kind StageKind) (Runtime, error) {
	factory := r.Lookup(kind)
	if factory == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStage, kind)
	}

	rt, err := factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("effectchain: create %s: %w", kind, err)
	}

	return rt, nil
}
