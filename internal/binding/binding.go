// Package binding maps MIDI control events onto mutations of the live show
// configuration.
//
// A Config is the user-editable description of a rule. Attaching it to a
// show.Configuration yields Bindings, whose callbacks write into named slots
// of that configuration. The Dispatcher routes every incoming Event to the
// bindings registered for its command type; filtering on the control index
// is left to each callback.
package binding

import (
	"errors"
)

var (
	ErrInvalidRange       = errors.New("binding: range start after range end")
	ErrRangeExceedsTarget = errors.New("binding: range wider than target")
	ErrUnknownTarget      = errors.New("binding: unknown target slot")
	ErrUnknownType        = errors.New("binding: unknown binding type")
)

// Event is one decoded MIDI control event. Value is normalised, 0..1 for
// ordinary controls.
type Event struct {
	Type  CommandType
	Index int
	Value float64
}

// Callback handles an event routed to its binding. Events for indices the
// binding does not cover are ignored and return nil.
type Callback func(index int, value float64) error

// Binding is an instantiated rule. It is owned by the Dispatcher it was
// registered with and is never updated in place.
type Binding struct {
	Key      Key
	Callback Callback
}
