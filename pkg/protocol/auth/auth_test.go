package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"roost.dev/pkg/encoders/kind"
	"roost.dev/pkg/encoders/tags"
	"roost.dev/pkg/protocol/auth"
	"roost.dev/pkg/tests"
)

const relayURL = "wss://relay.example.com"

func TestGenerateChallenge(t *testing.T) {
	a, b := auth.GenerateChallenge(), auth.GenerateChallenge()
	require.NotEmpty(t, a)
	require.NotEqual(t, a, b)
}

func TestValidate(t *testing.T) {
	s, err := tests.NewSigner()
	require.NoError(t, err)
	challenge := auth.GenerateChallenge()
	build := func(ch, relay string, at int64) (ok bool, err error) {
		ev, err := tests.SignedEvent(
			s, kind.ClientAuth, "",
			tags.T{{"relay", relay}, {"challenge", ch}}, at,
		)
		require.NoError(t, err)
		return auth.Validate(ev, challenge, relayURL)
	}
	now := time.Now().Unix()

	ok, err := build(challenge, relayURL, now)
	require.NoError(t, err)
	require.True(t, ok)

	// the relay tag only has to agree on host
	ok, err = build(challenge, "wss://relay.example.com/", now)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = build("wrong", relayURL, now)
	require.Error(t, err)
	require.False(t, ok)

	ok, err = build(challenge, "wss://evil.example.com", now)
	require.Error(t, err)
	require.False(t, ok)

	ok, err = build(challenge, relayURL, now-int64(auth.Window/time.Second)-60)
	require.Error(t, err)
	require.False(t, ok)

	// wrong kind
	ev, err := tests.SignedEvent(
		s, kind.TextNote, "",
		tags.T{{"relay", relayURL}, {"challenge", challenge}}, now,
	)
	require.NoError(t, err)
	ok, err = auth.Validate(ev, challenge, relayURL)
	require.Error(t, err)
	require.False(t, ok)
}
