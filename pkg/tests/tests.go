// Package tests has helpers for building signed events in tests.
package tests

import (
	"time"

	"lukechampine.com/frand"

	"roost.dev/pkg/crypto/p256k"
	"roost.dev/pkg/encoders/event"
	"roost.dev/pkg/encoders/hex"
	"roost.dev/pkg/encoders/kind"
	"roost.dev/pkg/encoders/tags"
)

// NewSigner returns a fresh random keypair.
func NewSigner() (s *p256k.Signer, err error) {
	s = &p256k.Signer{}
	err = s.Generate()
	return
}

// SignedEvent builds and signs an event with the given fields. A zero
// createdAt means now.
func SignedEvent(
	s *p256k.Signer, k kind.T, content string, t tags.T, createdAt int64,
) (ev *event.E, err error) {
	if createdAt == 0 {
		createdAt = time.Now().Unix()
	}
	if t == nil {
		t = tags.T{}
	}
	ev = &event.E{
		CreatedAt: createdAt,
		Kind:      k,
		Tags:      t,
		Content:   content,
	}
	err = ev.Sign(s)
	return
}

// TextNote builds a signed kind 1 note with random content.
func TextNote(s *p256k.Signer) (ev *event.E, err error) {
	return SignedEvent(
		s, kind.TextNote, hex.Enc(frand.Bytes(12)), nil, time.Now().Unix(),
	)
}
