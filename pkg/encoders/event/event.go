// Package event implements the nostr event record: strict parsing,
// canonical id computation, signature checks and the storage codec.
package event

import (
	"bytes"
	"math/bits"
	"strconv"

	"roost.dev/pkg/crypto/p256k"
	"roost.dev/pkg/crypto/sha256"
	"roost.dev/pkg/encoders/hex"
	"roost.dev/pkg/encoders/kind"
	"roost.dev/pkg/encoders/tags"
	"roost.dev/pkg/encoders/text"
	"roost.dev/pkg/utils/chk"
)

// E is a parsed event. Immutable after validation; ReceivedAt is assigned
// by the relay and is not part of the canonical form.
type E struct {
	ID         []byte `msgpack:"id"`
	Pubkey     []byte `msgpack:"pubkey"`
	CreatedAt  int64  `msgpack:"created_at"`
	Kind       kind.T `msgpack:"kind"`
	Tags       tags.T `msgpack:"tags"`
	Content    string `msgpack:"content"`
	Sig        []byte `msgpack:"sig"`
	ReceivedAt int64  `msgpack:"received_at"`
}

// S is a list of events.
type S []*E

// Serialize produces the canonical form the id is computed over:
// [0,pubkey,created_at,kind,tags,content] with no insignificant whitespace
// and the protocol escape set.
func (ev *E) Serialize() (b []byte) {
	b = make([]byte, 0, 256+len(ev.Content))
	b = append(b, '[', '0', ',', '"')
	b = hex.EncAppend(b, ev.Pubkey)
	b = append(b, '"', ',')
	b = strconv.AppendInt(b, ev.CreatedAt, 10)
	b = append(b, ',')
	b = strconv.AppendUint(b, uint64(ev.Kind), 10)
	b = append(b, ',', '[')
	for i, tag := range ev.Tags {
		if i > 0 {
			b = append(b, ',')
		}
		b = append(b, '[')
		for j, el := range tag {
			if j > 0 {
				b = append(b, ',')
			}
			b = text.AppendQuoted(b, el)
		}
		b = append(b, ']')
	}
	b = append(b, ']', ',')
	b = text.AppendQuoted(b, ev.Content)
	b = append(b, ']')
	return
}

// GetIDBytes computes the event id from the canonical form.
func (ev *E) GetIDBytes() []byte {
	h := sha256.Sum256(ev.Serialize())
	return h[:]
}

// IDValid reports whether the embedded id matches the canonical hash.
func (ev *E) IDValid() bool {
	return bytes.Equal(ev.ID, ev.GetIDBytes())
}

// Sign populates Pubkey, ID and Sig from the signer. CreatedAt must be set
// by the caller beforehand.
func (ev *E) Sign(keys *p256k.Signer) (err error) {
	ev.Pubkey = keys.Pub()
	ev.ID = ev.GetIDBytes()
	if ev.Sig, err = keys.Sign(ev.ID); chk.E(err) {
		return
	}
	return
}

// Verify checks the schnorr signature against the event's pubkey and id.
func (ev *E) Verify() (valid bool, err error) {
	keys := p256k.Signer{}
	if err = keys.InitPub(ev.Pubkey); err != nil {
		return
	}
	if valid, err = keys.Verify(ev.ID, ev.Sig); err != nil {
		return
	}
	return
}

// Difficulty returns the number of leading zero bits in the event id, the
// NIP-13 proof-of-work measure.
func (ev *E) Difficulty() (n int) {
	for _, b := range ev.ID {
		if b == 0 {
			n += 8
			continue
		}
		n += bits.LeadingZeros8(b)
		break
	}
	return
}

// Expiration returns the expiration tag value, if present and numeric.
func (ev *E) Expiration() (ts int64, ok bool) {
	v, present := ev.Tags.FirstValue("expiration")
	if !present {
		return
	}
	var err error
	if ts, err = strconv.ParseInt(v, 10, 64); err != nil {
		return 0, false
	}
	ok = true
	return
}

// Expired reports whether the event carries an expiration tag in the past
// relative to now.
func (ev *E) Expired(now int64) bool {
	ts, ok := ev.Expiration()
	return ok && ts < now
}

// IDHex returns the id as a lowercase hex string.
func (ev *E) IDHex() string { return hex.Enc(ev.ID) }

// PubkeyHex returns the pubkey as a lowercase hex string.
func (ev *E) PubkeyHex() string { return hex.Enc(ev.Pubkey) }
