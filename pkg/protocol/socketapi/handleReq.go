package socketapi

import (
	"encoding/json"

	"roost.dev/pkg/encoders/envelopes"
	"roost.dev/pkg/encoders/filter"
	"roost.dev/pkg/encoders/reason"
	"roost.dev/pkg/utils/chk"
	"roost.dev/pkg/utils/context"
	"roost.dev/pkg/utils/log"
)

const (
	// MaxSubIDLength is the longest accepted subscription id.
	MaxSubIDLength = 64
	// MaxFilters caps the filters on one REQ; extras are dropped with a
	// notice.
	MaxFilters = 10
	// MaxQueryLimit caps any single stored-event query.
	MaxQueryLimit = 500
)

// parseSub pulls the subscription id and filter set out of a REQ or COUNT
// frame. A nil filter set with empty subID means a response was already
// sent.
func (a *A) parseSub(rest []json.RawMessage) (
	subID string, fs filter.S, ok bool,
) {
	if len(rest) < 1 {
		a.Enqueue(
			envelopes.Notice(reason.Invalid.F("missing subscription id")),
		)
		return
	}
	if err := json.Unmarshal(rest[0], &subID); err != nil {
		a.Enqueue(
			envelopes.Notice(reason.Invalid.F("subscription id is not a string")),
		)
		return
	}
	if subID == "" || len(subID) > MaxSubIDLength {
		a.Enqueue(
			envelopes.Closed(
				subID, reason.Invalid.F(
					"subscription id must be 1-%d chars", MaxSubIDLength,
				),
			),
		)
		return
	}
	raw := rest[1:]
	if len(raw) == 0 {
		a.Enqueue(
			envelopes.Closed(
				subID, reason.Invalid.F("at least one filter is required"),
			),
		)
		return
	}
	if len(raw) > MaxFilters {
		a.Enqueue(
			envelopes.Notice(
				reason.Invalid.F(
					"too many filters, using the first %d", MaxFilters,
				),
			),
		)
		raw = raw[:MaxFilters]
	}
	for _, r := range raw {
		f := &filter.F{}
		if err := json.Unmarshal(r, f); err != nil {
			a.Enqueue(
				envelopes.Closed(
					subID, reason.Invalid.F("bad filter: %s", err.Error()),
				),
			)
			return
		}
		fs = append(fs, f)
	}
	fs.CapLimits(MaxQueryLimit)
	ok = true
	return
}

// HandleReq answers a REQ with the stored matches, an EOSE, and a live
// subscription registered after the backfill so the stream picks up where
// the query left off.
func (a *A) HandleReq(c context.T, rest []json.RawMessage) (keepAlive bool) {
	keepAlive = true
	subID, fs, ok := a.parseSub(rest)
	if !ok {
		return !a.Listener.FailedParse()
	}
	if a.I.AuthRequired() && !a.IsAuthed() {
		a.Enqueue(
			envelopes.Closed(
				subID, reason.AuthRequired.F("auth required for subscriptions"),
			),
		)
		a.Enqueue(envelopes.AuthChallenge(a.Challenge()))
		return
	}
	if !a.TrySub(subID, a.Config().MaxSubs) {
		a.Enqueue(
			envelopes.Closed(
				subID,
				reason.Blocked.F(
					"no more than %d concurrent subscriptions", a.Config().MaxSubs,
				),
			),
		)
		return
	}
	evs, err := a.Storage().QueryEvents(c, fs, MaxQueryLimit)
	if chk.E(err) {
		a.Unsub(subID)
		a.Enqueue(envelopes.Closed(subID, reason.Error.F("query failed")))
		return
	}
	log.T.F(
		"req %s from %s matched %d stored events", subID, a.RealRemote(),
		len(evs),
	)
	for _, ev := range evs {
		a.Enqueue(envelopes.Event(subID, ev))
	}
	a.Enqueue(envelopes.Eose(subID))
	a.Publisher().Receive(
		&W{Listener: a.Listener, Id: subID, Filters: fs},
	)
	return
}
