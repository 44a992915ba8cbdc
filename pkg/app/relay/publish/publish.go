// Package publish composes the delivery surfaces into one publisher the
// ingest path can address.
package publish

import (
	"roost.dev/pkg/encoders/event"
	"roost.dev/pkg/interfaces/publisher"
)

// Type identifies the composite publisher.
const Type = "composite"

// S relays publisher traffic to every registered publisher. Control
// messages are routed by their type name.
type S struct {
	publishers publisher.Publishers
}

var _ publisher.I = &S{}

// New bundles the given publishers.
func New(publishers ...publisher.I) (s *S) {
	return &S{publishers: publishers}
}

func (s *S) Type() (typeName string) { return Type }

// Deliver fans the event out to every delivery surface.
func (s *S) Deliver(ev *event.E) {
	for _, p := range s.publishers {
		p.Deliver(ev)
	}
}

// Receive routes a control message to the publisher it addresses.
func (s *S) Receive(msg publisher.Message) {
	for _, p := range s.publishers {
		if p.Type() == msg.Type() {
			p.Receive(msg)
		}
	}
}
