package event

import (
	"encoding/json"

	"roost.dev/pkg/crypto/p256k"
	"roost.dev/pkg/crypto/sha256"
	"roost.dev/pkg/encoders/hex"
	"roost.dev/pkg/encoders/kind"
	"roost.dev/pkg/encoders/tags"
	"roost.dev/pkg/utils/errorf"
)

// MaxContentLength is the largest accepted content field in bytes.
const MaxContentLength = 65536

// MaxTags is the largest accepted number of tags on one event.
const MaxTags = 2000

type wire struct {
	ID        string     `json:"id"`
	Pubkey    string     `json:"pubkey"`
	CreatedAt int64      `json:"created_at"`
	Kind      int64      `json:"kind"`
	Tags      [][]string `json:"tags"`
	Content   string     `json:"content"`
	Sig       string     `json:"sig"`
}

// Parse decodes and structurally validates a wire-format event. It checks
// field types, hex charset and lengths, kind range and tag shape; id and
// signature validity are separate checks.
func Parse(b []byte) (ev *E, err error) {
	var w wire
	if err = json.Unmarshal(b, &w); err != nil {
		err = errorf.E("invalid event JSON: %s", err.Error())
		return
	}
	return fromWire(&w)
}

func fromWire(w *wire) (ev *E, err error) {
	ev = &E{}
	if len(w.ID) != sha256.Size*2 {
		err = errorf.E("id must be %d hex chars, got %d", sha256.Size*2, len(w.ID))
		return nil, err
	}
	if ev.ID, err = hex.Dec(w.ID); err != nil {
		return nil, errorf.E("id is not valid hex")
	}
	if len(w.Pubkey) != p256k.PubKeyLen*2 {
		err = errorf.E(
			"pubkey must be %d hex chars, got %d", p256k.PubKeyLen*2,
			len(w.Pubkey),
		)
		return nil, err
	}
	if ev.Pubkey, err = hex.Dec(w.Pubkey); err != nil {
		return nil, errorf.E("pubkey is not valid hex")
	}
	if len(w.Sig) != p256k.SigLen*2 {
		err = errorf.E("sig must be %d hex chars, got %d", p256k.SigLen*2, len(w.Sig))
		return nil, err
	}
	if ev.Sig, err = hex.Dec(w.Sig); err != nil {
		return nil, errorf.E("sig is not valid hex")
	}
	if w.Kind < 0 || w.Kind > 65535 {
		return nil, errorf.E("kind %d out of range", w.Kind)
	}
	ev.Kind = kind.T(w.Kind)
	ev.CreatedAt = w.CreatedAt
	if len(w.Tags) > MaxTags {
		return nil, errorf.E("too many tags: %d > %d", len(w.Tags), MaxTags)
	}
	for i, tag := range w.Tags {
		if len(tag) == 0 {
			return nil, errorf.E("tag %d is empty", i)
		}
	}
	ev.Tags = tags.T(w.Tags)
	if ev.Tags == nil {
		ev.Tags = tags.T{}
	}
	if len(w.Content) > MaxContentLength {
		return nil, errorf.E(
			"content too long: %d > %d", len(w.Content), MaxContentLength,
		)
	}
	ev.Content = w.Content
	return ev, nil
}

// MarshalJSON emits the wire form with lowercase hex fields.
func (ev *E) MarshalJSON() ([]byte, error) {
	t := ev.Tags
	if t == nil {
		t = tags.T{}
	}
	return json.Marshal(&wire{
		ID:        hex.Enc(ev.ID),
		Pubkey:    hex.Enc(ev.Pubkey),
		CreatedAt: ev.CreatedAt,
		Kind:      int64(ev.Kind),
		Tags:      t,
		Content:   ev.Content,
		Sig:       hex.Enc(ev.Sig),
	})
}

// UnmarshalJSON decodes with the same strict validation as Parse.
func (ev *E) UnmarshalJSON(b []byte) (err error) {
	var parsed *E
	if parsed, err = Parse(b); err != nil {
		return
	}
	*ev = *parsed
	return
}
