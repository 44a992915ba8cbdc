package socketapi

import (
	"encoding/json"

	"roost.dev/pkg/encoders/envelopes"
	"roost.dev/pkg/encoders/event"
	"roost.dev/pkg/encoders/reason"
	"roost.dev/pkg/protocol/auth"
	"roost.dev/pkg/utils/log"
)

// HandleAuth checks an AUTH response event against the session challenge
// and marks the session authenticated when it holds up.
func (a *A) HandleAuth(rest []json.RawMessage) {
	if len(rest) < 1 {
		a.Enqueue(envelopes.Notice(reason.Invalid.F("AUTH missing payload")))
		return
	}
	ev, err := event.Parse(rest[0])
	if err != nil {
		a.Enqueue(envelopes.Notice(reason.Invalid.F("%s", err.Error())))
		return
	}
	if !ev.IDValid() {
		a.Enqueue(
			envelopes.Ok(
				ev.ID, false,
				reason.Invalid.F("event id does not match canonical form"),
			),
		)
		return
	}
	var valid bool
	if valid, err = ev.Verify(); err != nil || !valid {
		a.Enqueue(
			envelopes.Ok(ev.ID, false, reason.Invalid.F("signature is invalid")),
		)
		return
	}
	var ok bool
	if ok, err = auth.Validate(
		ev, a.Challenge(), a.ServiceURL(a.Req()),
	); !ok {
		a.Enqueue(
			envelopes.Ok(ev.ID, false, reason.Invalid.F("%s", err.Error())),
		)
		return
	}
	a.SetAuthedPubkey(ev.Pubkey)
	log.I.F("client %s authed as %s", a.RealRemote(), ev.PubkeyHex())
	a.Enqueue(envelopes.Ok(ev.ID, true, ""))
}
