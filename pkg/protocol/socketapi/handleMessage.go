package socketapi

import (
	"fmt"

	"roost.dev/pkg/encoders/envelopes"
	"roost.dev/pkg/encoders/event"
	"roost.dev/pkg/encoders/reason"
	"roost.dev/pkg/utils/log"
)

// HandleMessage routes one inbound frame. The returned keepAlive is false
// when the session has misbehaved enough to be dropped.
func (a *A) HandleMessage(msg []byte) (keepAlive bool) {
	keepAlive = true
	remote := a.RealRemote()
	log.T.C(
		func() string {
			return fmt.Sprintf("%s received message:\n%s", remote, msg)
		},
	)
	label, rest, err := envelopes.Identify(msg)
	if err != nil {
		a.Enqueue(envelopes.Notice(reason.Invalid.F("%s", err.Error())))
		if a.Listener.FailedParse() {
			log.I.F("dropping %s, too many malformed frames", remote)
			return false
		}
		return
	}
	if !a.Listener.Allow() {
		// an EVENT gets its refusal on the OK surface so the client can
		// tell which publish was throttled
		if label == envelopes.LEvent && len(rest) > 0 {
			if ev, e := event.Parse(rest[0]); e == nil {
				a.Enqueue(
					envelopes.Ok(
						ev.ID, false, reason.RateLimited.F("slow down"),
					),
				)
				return
			}
		}
		a.Enqueue(envelopes.Notice(reason.RateLimited.F("slow down")))
		return
	}
	switch label {
	case envelopes.LEvent:
		keepAlive = a.HandleEvent(a.Ctx, rest)
	case envelopes.LReq:
		keepAlive = a.HandleReq(a.Ctx, rest)
	case envelopes.LCount:
		keepAlive = a.HandleCount(a.Ctx, rest)
	case envelopes.LClose:
		a.HandleClose(rest)
	case envelopes.LAuth:
		a.HandleAuth(rest)
	default:
		a.Enqueue(envelopes.Notice(reason.Unsupported.F("%s", label)))
		if a.Listener.FailedParse() {
			log.I.F("dropping %s, too many malformed frames", remote)
			return false
		}
	}
	return
}
