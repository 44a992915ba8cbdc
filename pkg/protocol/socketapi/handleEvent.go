package socketapi

import (
	"encoding/json"
	"strconv"
	"strings"

	"roost.dev/pkg/encoders/envelopes"
	"roost.dev/pkg/encoders/event"
	"roost.dev/pkg/encoders/filter"
	"roost.dev/pkg/encoders/hex"
	"roost.dev/pkg/encoders/kind"
	"roost.dev/pkg/encoders/reason"
	"roost.dev/pkg/utils/chk"
	"roost.dev/pkg/utils/context"
	"roost.dev/pkg/utils/log"
)

// HandleEvent runs the ingest pipeline for one EVENT frame: structural
// checks, id and signature verification, session auth, relay policy, kind
// treatment, persistence and fan-out. Exactly one OK envelope is sent for
// every event that parses far enough to have an id.
func (a *A) HandleEvent(c context.T, rest []json.RawMessage) (keepAlive bool) {
	keepAlive = true
	if len(rest) < 1 {
		a.Enqueue(envelopes.Notice(reason.Invalid.F("EVENT missing payload")))
		return !a.Listener.FailedParse()
	}
	ev, err := event.Parse(rest[0])
	if err != nil {
		a.Enqueue(envelopes.Notice(reason.Invalid.F("%s", err.Error())))
		return !a.Listener.FailedParse()
	}
	log.T.F("handleEvent %s %s", a.RealRemote(), ev.IDHex())
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
	if valid, err = ev.Verify(); err != nil {
		a.Enqueue(
			envelopes.Ok(
				ev.ID, false,
				reason.Error.F("failed to verify signature: %s", err.Error()),
			),
		)
		return
	}
	if !valid {
		a.Enqueue(
			envelopes.Ok(ev.ID, false, reason.Invalid.F("signature is invalid")),
		)
		return
	}
	if a.I.AuthRequired() && !a.IsAuthed() {
		a.Enqueue(
			envelopes.Ok(
				ev.ID, false,
				reason.AuthRequired.F("auth required for publishing"),
			),
		)
		a.Enqueue(envelopes.AuthChallenge(a.Challenge()))
		return
	}
	if ev.Kind == kind.ClientAuth {
		a.Enqueue(
			envelopes.Ok(
				ev.ID, false,
				reason.Invalid.F("auth events must use the AUTH envelope"),
			),
		)
		return
	}
	accept, notice := a.I.AcceptEvent(c, ev)
	if !accept {
		a.Enqueue(envelopes.Ok(ev.ID, false, notice))
		if strings.HasPrefix(notice, string(reason.AuthRequired)) {
			a.Enqueue(envelopes.AuthChallenge(a.Challenge()))
		}
		return
	}
	if ev.Kind == kind.Deletion {
		if ok := a.handleDeletion(c, ev); !ok {
			return
		}
	}
	accepted, detail := a.I.AddEvent(c, ev)
	a.Enqueue(envelopes.Ok(ev.ID, accepted, detail))
	return
}

// handleDeletion processes the targets of a kind 5 event: ids named in e
// tags and replaceable identities named in a tags, author-matched rows
// only. Returns false when a response has already been sent.
func (a *A) handleDeletion(c context.T, ev *event.E) (ok bool) {
	sto := a.Storage()
	var ids [][]byte
	for _, v := range ev.Tags.Values("e") {
		id, err := hex.Dec(v)
		if err != nil || len(id) != 32 {
			a.Enqueue(
				envelopes.Ok(
					ev.ID, false,
					reason.Invalid.F("deletion e tag is not an event id: %q", v),
				),
			)
			return
		}
		ids = append(ids, id)
	}
	for _, v := range ev.Tags.Values("a") {
		split := strings.SplitN(v, ":", 3)
		if len(split) != 3 {
			continue
		}
		k, err := strconv.ParseUint(split[0], 10, 16)
		if err != nil || !kind.T(k).IsParameterizedReplaceable() {
			continue
		}
		if split[1] != ev.PubkeyHex() {
			a.Enqueue(
				envelopes.Ok(
					ev.ID, false,
					reason.Blocked.F("cannot delete another author's events"),
				),
			)
			return
		}
		f := &filter.F{
			Authors: []string{split[1]},
			Kinds:   []kind.T{kind.T(k)},
			Tags:    map[string][]string{"d": {split[2]}},
			Until:   &ev.CreatedAt,
		}
		targets, err := sto.QueryEvents(c, filter.S{f}, 100)
		if chk.E(err) {
			a.Enqueue(
				envelopes.Ok(ev.ID, false, reason.Error.F("query failed")),
			)
			return
		}
		for _, t := range targets {
			ids = append(ids, t.ID)
		}
	}
	if len(ids) > 0 {
		n, err := sto.DeleteByAuthor(c, ev.Pubkey, ids)
		if chk.E(err) {
			a.Enqueue(
				envelopes.Ok(ev.ID, false, reason.Error.F("deletion failed")),
			)
			return
		}
		log.I.F("deleted %d events for %s", n, ev.PubkeyHex())
	}
	return true
}
