package socketapi

import (
	"encoding/json"

	"roost.dev/pkg/encoders/envelopes"
	"roost.dev/pkg/encoders/reason"
)

// HandleClose drops the named subscription. Closing an unknown id is a
// no-op.
func (a *A) HandleClose(rest []json.RawMessage) {
	var subID string
	if len(rest) < 1 || json.Unmarshal(rest[0], &subID) != nil || subID == "" {
		a.Enqueue(
			envelopes.Notice(reason.Invalid.F("CLOSE requires a subscription id")),
		)
		return
	}
	a.Unsub(subID)
	a.Publisher().Receive(
		&W{Cancel: true, Listener: a.Listener, Id: subID},
	)
}
