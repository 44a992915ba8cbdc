package relay

import (
	"errors"
	"time"

	"roost.dev/pkg/encoders/event"
	"roost.dev/pkg/encoders/reason"
	"roost.dev/pkg/interfaces/store"
	"roost.dev/pkg/utils/chk"
	"roost.dev/pkg/utils/context"
	"roost.dev/pkg/utils/log"
)

// AddEvent persists an accepted event and fans it out. Ephemeral kinds
// skip the store, duplicates are acknowledged without a second broadcast,
// and a stale replaceable is refused. The publish mutex extends the
// store's write serialization through fan-out, so live delivery observes
// the same total order a later backfill returns.
func (s *Server) AddEvent(c context.T, ev *event.E) (
	accepted bool, notice string,
) {
	ev.ReceivedAt = time.Now().Unix()
	if ev.Kind.IsEphemeral() {
		s.listeners.Deliver(ev)
		return true, ""
	}
	s.publishMx.Lock()
	defer s.publishMx.Unlock()
	if err := s.store.SaveEvent(c, ev); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicate):
			return true, reason.Duplicate.F("")
		case errors.Is(err, store.ErrStale):
			return false, reason.Invalid.F(
				"a newer event for this replaceable identity is stored",
			)
		default:
			chk.E(err)
			return false, reason.Error.F("failed to store event")
		}
	}
	log.D.F("stored event %s kind %d", ev.IDHex(), ev.Kind)
	s.listeners.Deliver(ev)
	return true, ""
}
