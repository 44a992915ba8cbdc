package relay

import (
	"bytes"
	"time"

	"roost.dev/pkg/encoders/event"
	"roost.dev/pkg/encoders/reason"
	"roost.dev/pkg/protocol/delegation"
	"roost.dev/pkg/utils/context"
	"roost.dev/pkg/utils/log"
)

// AcceptEvent applies relay policy to a structurally valid, signature
// checked event: the created_at window, dead-on-arrival expirations, proof
// of work, delegation and the owner-only gate.
func (s *Server) AcceptEvent(c context.T, ev *event.E) (
	accept bool, notice string,
) {
	now := time.Now().Unix()
	if s.cfg.FutureLimit > 0 && ev.CreatedAt > now+s.cfg.FutureLimit {
		return false, reason.Invalid.F(
			"created_at %d is more than %d seconds in the future",
			ev.CreatedAt, s.cfg.FutureLimit,
		)
	}
	if s.cfg.PastLimit > 0 && ev.CreatedAt < now-s.cfg.PastLimit {
		return false, reason.Invalid.F(
			"created_at %d is more than %d seconds in the past",
			ev.CreatedAt, s.cfg.PastLimit,
		)
	}
	if ev.Expired(now) {
		return false, reason.Invalid.F("event is already expired")
	}
	if s.cfg.MinPow > 0 && ev.Difficulty() < s.cfg.MinPow {
		return false, reason.PoW.F(
			"difficulty %d is less than the required %d",
			ev.Difficulty(), s.cfg.MinPow,
		)
	}
	var delegator []byte
	if ev.Tags.First(delegation.Tag) != nil {
		var err error
		if delegator, err = delegation.Check(ev); err != nil {
			return false, reason.Invalid.F("%s", err.Error())
		}
		log.T.F(
			"event %s delegated by %0x", ev.IDHex(), delegator,
		)
	}
	if len(s.owner) > 0 {
		if !bytes.Equal(ev.Pubkey, s.owner) &&
			!bytes.Equal(delegator, s.owner) {
			return false, reason.Restricted.F("only owner can publish")
		}
	}
	return true, ""
}
