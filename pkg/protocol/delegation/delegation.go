// Package delegation checks NIP-26 delegation tags, letting a delegator
// authorize another key to publish on its behalf under conditions.
package delegation

import (
	"strconv"
	"strings"

	"roost.dev/pkg/crypto/p256k"
	"roost.dev/pkg/crypto/sha256"
	"roost.dev/pkg/encoders/event"
	"roost.dev/pkg/encoders/hex"
	"roost.dev/pkg/utils/errorf"
)

// Tag is the tag name carrying a delegation.
const Tag = "delegation"

// Check validates the delegation tag on ev, if present. The returned
// delegator is nil when the event carries no delegation.
func Check(ev *event.E) (delegator []byte, err error) {
	tag := ev.Tags.First(Tag)
	if tag == nil {
		return
	}
	if len(tag) < 4 {
		err = errorf.E("delegation tag needs pubkey, conditions and token")
		return
	}
	pk, conditions, token := tag[1], tag[2], tag[3]
	if delegator, err = hex.Dec(pk); err != nil ||
		len(delegator) != p256k.PubKeyLen {
		return nil, errorf.E("delegation pubkey is not valid")
	}
	var sig []byte
	if sig, err = hex.Dec(token); err != nil || len(sig) != p256k.SigLen {
		return nil, errorf.E("delegation token is not a valid signature")
	}
	if err = checkConditions(ev, conditions); err != nil {
		return nil, err
	}
	digest := sha256.Sum256(
		[]byte("nostr:delegation:" + ev.PubkeyHex() + ":" + conditions),
	)
	signer := p256k.Signer{}
	if err = signer.InitPub(delegator); err != nil {
		return nil, errorf.E("delegation pubkey is not valid: %s", err.Error())
	}
	var valid bool
	if valid, err = signer.Verify(digest[:], sig); err != nil || !valid {
		return nil, errorf.E("delegation token signature is invalid")
	}
	return
}

// checkConditions tests the event against the ampersand-joined condition
// string. Multiple kind conditions form a permitted set; unknown
// conditions are rejected rather than ignored.
func checkConditions(ev *event.E, conditions string) (err error) {
	var kinds []uint64
	for _, cond := range strings.Split(conditions, "&") {
		if cond == "" {
			continue
		}
		switch {
		case strings.HasPrefix(cond, "kind="):
			var k uint64
			if k, err = strconv.ParseUint(
				cond[len("kind="):], 10, 16,
			); err != nil {
				return errorf.E("bad delegation kind condition %q", cond)
			}
			kinds = append(kinds, k)
		case strings.HasPrefix(cond, "created_at<"):
			var ts int64
			if ts, err = strconv.ParseInt(
				cond[len("created_at<"):], 10, 64,
			); err != nil {
				return errorf.E("bad delegation time condition %q", cond)
			}
			if ev.CreatedAt >= ts {
				return errorf.E("event is after the delegation window")
			}
		case strings.HasPrefix(cond, "created_at>"):
			var ts int64
			if ts, err = strconv.ParseInt(
				cond[len("created_at>"):], 10, 64,
			); err != nil {
				return errorf.E("bad delegation time condition %q", cond)
			}
			if ev.CreatedAt <= ts {
				return errorf.E("event is before the delegation window")
			}
		default:
			return errorf.E("unknown delegation condition %q", cond)
		}
	}
	if len(kinds) > 0 {
		permitted := false
		for _, k := range kinds {
			if uint64(ev.Kind) == k {
				permitted = true
				break
			}
		}
		if !permitted {
			return errorf.E("kind %d not permitted by delegation", ev.Kind)
		}
	}
	return nil
}
