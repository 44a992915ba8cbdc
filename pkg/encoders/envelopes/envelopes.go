// Package envelopes identifies and builds the JSON array frames of the
// relay wire protocol.
package envelopes

import (
	"encoding/json"

	"roost.dev/pkg/encoders/event"
	"roost.dev/pkg/encoders/hex"
	"roost.dev/pkg/utils/errorf"
)

// Client to server labels.
const (
	LEvent  = "EVENT"
	LReq    = "REQ"
	LClose  = "CLOSE"
	LCount  = "COUNT"
	LAuth   = "AUTH"
	LOk     = "OK"
	LEose   = "EOSE"
	LNotice = "NOTICE"
	LClosed = "CLOSED"
)

// Identify splits a frame into its label and the remaining elements.
func Identify(msg []byte) (label string, rest []json.RawMessage, err error) {
	var elems []json.RawMessage
	if err = json.Unmarshal(msg, &elems); err != nil {
		err = errorf.E("message is not a JSON array")
		return
	}
	if len(elems) == 0 {
		err = errorf.E("message array is empty")
		return
	}
	if err = json.Unmarshal(elems[0], &label); err != nil {
		err = errorf.E("message label is not a string")
		return
	}
	rest = elems[1:]
	return
}

func marshal(elems ...any) []byte {
	b, err := json.Marshal(elems)
	if err != nil {
		// only reachable with values this package constructs
		panic(err)
	}
	return b
}

// Event builds ["EVENT", subId, event].
func Event(subID string, ev *event.E) []byte {
	return marshal(LEvent, subID, ev)
}

// Ok builds ["OK", id, accepted, reason].
func Ok(id []byte, accepted bool, reason string) []byte {
	return marshal(LOk, hex.Enc(id), accepted, reason)
}

// Eose builds ["EOSE", subId].
func Eose(subID string) []byte { return marshal(LEose, subID) }

// Notice builds ["NOTICE", message].
func Notice(message string) []byte { return marshal(LNotice, message) }

// Closed builds ["CLOSED", subId, reason].
func Closed(subID, reason string) []byte {
	return marshal(LClosed, subID, reason)
}

// Count builds ["COUNT", subId, {"count": n}].
func Count(subID string, n int64) []byte {
	return marshal(LCount, subID, struct {
		Count int64 `json:"count"`
	}{n})
}

// AuthChallenge builds ["AUTH", challenge].
func AuthChallenge(challenge string) []byte {
	return marshal(LAuth, challenge)
}
