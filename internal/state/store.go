package state

import (
	"context"
	"errors"

	"candleview/internal/bus"
	"candleview/internal/ports"
)

type change struct {
	prev, next State
	action     Action
}

// Store is the single owner of the chart state. It is not safe for
// concurrent use; dispatches happen on the UI loop.
type Store struct {
	state   State
	logger  ports.Logger
	changes bus.Topic[change]
}

// NewStore creates a store holding initial.
func NewStore(initial State, logger ports.Logger) (*Store, error) {
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	return &Store{state: initial, logger: logger}, nil
}

// State returns the current state.
func (s *Store) State() State { return s.state }

// Dispatch reduces a into the current state. Subscribers are notified only
// when the action was applied.
func (s *Store) Dispatch(a Action) error {
	next, err := Reduce(s.state, a)
	if err != nil {
		s.logger.Warn(context.Background(), "Chart action rejected", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	prev := s.state
	s.state = next
	s.logger.Debug(context.Background(), "Chart action applied", map[string]interface{}{
		"action": a.Type(),
	})
	s.changes.Publish(change{prev: prev, next: next, action: a})
	return nil
}

// Subscribe registers fn for applied actions and returns its unsubscribe func.
func (s *Store) Subscribe(fn func(a Action, prev, next State)) (unsubscribe func()) {
	return s.changes.Subscribe(func(c change) { fn(c.action, c.prev, c.next) })
}
