package socketapi

import (
	"encoding/json"

	"roost.dev/pkg/encoders/envelopes"
	"roost.dev/pkg/encoders/reason"
	"roost.dev/pkg/utils/chk"
	"roost.dev/pkg/utils/context"
)

// HandleCount answers a COUNT frame with the number of stored matches.
func (a *A) HandleCount(c context.T, rest []json.RawMessage) (keepAlive bool) {
	keepAlive = true
	subID, fs, ok := a.parseSub(rest)
	if !ok {
		return !a.Listener.FailedParse()
	}
	if a.I.AuthRequired() && !a.IsAuthed() {
		a.Enqueue(
			envelopes.Closed(
				subID, reason.AuthRequired.F("auth required for counting"),
			),
		)
		a.Enqueue(envelopes.AuthChallenge(a.Challenge()))
		return
	}
	n, err := a.Storage().CountEvents(c, fs)
	if chk.E(err) {
		a.Enqueue(envelopes.Closed(subID, reason.Error.F("count failed")))
		return
	}
	a.Enqueue(envelopes.Count(subID, n))
	return
}
