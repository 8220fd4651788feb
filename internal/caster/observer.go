package caster

import "github.com/muurk/reccaster/internal/protocol"

// Direction tells whether a frame was sent or received
type Direction string

const (
	Sent     Direction = "sent"
	Received Direction = "received"
)

// Observer is notified of state changes and protocol frames. Methods are
// called synchronously from the goroutine running the caster and must not
// block for long.
type Observer interface {
	// StateChanged is called when the state changes. Self-loops (a Ping
	// answered while keeping alive) are reported through FrameExchanged only.
	StateChanged(from, to State, reason string)

	// FrameExchanged is called for every message sent or received
	FrameExchanged(dir Direction, msg protocol.Message)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnStateChanged   func(from, to State, reason string)
	OnFrameExchanged func(dir Direction, msg protocol.Message)
}

// StateChanged implements Observer
func (o ObserverFuncs) StateChanged(from, to State, reason string) {
	if o.OnStateChanged != nil {
		o.OnStateChanged(from, to, reason)
	}
}

// FrameExchanged implements Observer
func (o ObserverFuncs) FrameExchanged(dir Direction, msg protocol.Message) {
	if o.OnFrameExchanged != nil {
		o.OnFrameExchanged(dir, msg)
	}
}
