// Package events provides a simple event emitter.
package events

import (
	"github.com/chuckpreslar/emission"
)

// Emitter is a simple event emitter.
// This is a thin wrapper of emission.Emitter that modifies the On and Once
// methods to return a function that cancels the callback registration.
type Emitter struct {
	*emission.Emitter
}

// NewEmitter creates a simple event emitter.
func NewEmitter() *Emitter {
	return &Emitter{
		Emitter: emission.NewEmitter(),
	}
}

// On registers a callback when an event occurs.
// Returns a function that cancels the callback registration.
func (emitter *Emitter) On(event, listener any) (cancel func()) {
	emitter.Emitter.On(event, listener)
	return func() { emitter.Emitter.Off(event, listener) }
}

// Once registers a one-time callback when an event occurs.
// Returns a function that cancels the callback registration.
func (emitter *Emitter) Once(event, listener any) (cancel func()) {
	emitter.Emitter.Once(event, listener)
	return func() { emitter.Emitter.Off(event, listener) }
}
