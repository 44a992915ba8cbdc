// Package server defines the interface the protocol handlers use to reach
// the relay: storage, fan-out, policy and configuration.
package server

import (
	"net/http"

	"github.com/puzpuzpuz/xsync/v3"

	"roost.dev/pkg/app/config"
	"roost.dev/pkg/encoders/event"
	"roost.dev/pkg/interfaces/publisher"
	"roost.dev/pkg/interfaces/store"
	"roost.dev/pkg/utils/context"
)

// I is the server as seen by the websocket and HTTP protocol handlers.
type I interface {
	// Context returns the server lifetime context.
	Context() context.T
	// Storage returns the event store.
	Storage() store.I
	// Publisher returns the composite event publisher.
	Publisher() publisher.I
	// Config returns the active configuration.
	Config() *config.C
	// AuthRequired reports whether NIP-42 auth is demanded up front.
	AuthRequired() bool
	// OwnerPubkey returns the configured owner key, nil when owner-only
	// mode is off.
	OwnerPubkey() []byte
	// ServiceURL derives the websocket URL clients used to reach this
	// relay, for NIP-42 relay tag checks.
	ServiceURL(r *http.Request) string
	// AcceptEvent applies relay policy (time window, expiration,
	// owner-only, proof of work, delegation). The reason carries the
	// machine-readable prefix when not accepted.
	AcceptEvent(c context.T, ev *event.E) (accept bool, reason string)
	// AddEvent persists an accepted event, applying kind treatment, and
	// fans it out. The reason is the OK message detail.
	AddEvent(c context.T, ev *event.E) (accepted bool, reason string)
	// Clients is the live connection counter.
	Clients() *xsync.Counter
	// SupportedNIPs lists the advertised NIP numbers, sorted.
	SupportedNIPs() []int
}
