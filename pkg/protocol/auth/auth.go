// Package auth implements the NIP-42 challenge/response handshake used to
// bind a websocket session to a pubkey.
package auth

import (
	"encoding/base64"
	"net/url"
	"strings"
	"time"

	"lukechampine.com/frand"

	"roost.dev/pkg/encoders/event"
	"roost.dev/pkg/encoders/kind"
	"roost.dev/pkg/utils/chk"
	"roost.dev/pkg/utils/errorf"
)

// Window is how far an auth event's created_at may deviate from relay
// time in either direction.
const Window = 10 * time.Minute

// GenerateChallenge returns a fresh 16 character challenge string.
func GenerateChallenge() string {
	return base64.URLEncoding.EncodeToString(frand.Bytes(12))
}

// normalizeURL lowercases and strips the trailing slash so ws://HOST/ and
// ws://host compare equal.
func normalizeURL(input string) (*url.URL, error) {
	return url.Parse(strings.ToLower(strings.TrimSuffix(input, "/")))
}

// Validate checks an AUTH response event against the session challenge and
// the relay's own URL. The id and signature must already have been
// verified by the caller; everything protocol-level is checked here.
func Validate(ev *event.E, challenge, relayURL string) (
	ok bool, err error,
) {
	if ev.Kind != kind.ClientAuth {
		err = errorf.E("wrong kind for auth event: %d", ev.Kind)
		return
	}
	c, present := ev.Tags.FirstValue("challenge")
	if !present || c != challenge {
		err = errorf.E("challenge tag missing or mismatched")
		return
	}
	r, present := ev.Tags.FirstValue("relay")
	if !present || r == "" {
		err = errorf.E("relay tag missing from auth event")
		return
	}
	var expected, found *url.URL
	if expected, err = normalizeURL(relayURL); chk.D(err) {
		return
	}
	if found, err = normalizeURL(r); err != nil {
		err = errorf.E("cannot parse relay tag url %q: %s", r, err)
		return
	}
	if expected.Host != found.Host {
		err = errorf.E(
			"relay tag host mismatch: expected %q got %q",
			expected.Host, found.Host,
		)
		return
	}
	now := time.Now()
	created := time.Unix(ev.CreatedAt, 0)
	if created.After(now.Add(Window)) || created.Before(now.Add(-Window)) {
		err = errorf.E("auth event timestamp outside the accepted window")
		return
	}
	ok = true
	return
}
