// Package publisher defines the fan-out interface between the ingest path
// and the delivery surfaces.
package publisher

import (
	"roost.dev/pkg/encoders/event"
)

// Message is a control message addressed to one publisher implementation,
// discriminated by Type.
type Message interface {
	Type() (typeName string)
}

// I registers subscriptions and delivers accepted events to them.
type I interface {
	// Type identifies the publisher implementation.
	Type() (typeName string)
	// Deliver fans an accepted event out to matching subscriptions.
	Deliver(ev *event.E)
	// Receive handles a subscription control message.
	Receive(msg Message)
}

// Publishers is a list of publishers addressed as one.
type Publishers []I
