package event_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"roost.dev/pkg/crypto/p256k"
	"roost.dev/pkg/encoders/event"
	"roost.dev/pkg/encoders/hex"
	"roost.dev/pkg/encoders/kind"
	"roost.dev/pkg/encoders/tags"
)

func signer(t *testing.T) *p256k.Signer {
	t.Helper()
	s := &p256k.Signer{}
	require.NoError(t, s.Generate())
	return s
}

func TestSerializeCanonicalForm(t *testing.T) {
	ev := &event.E{
		Pubkey:    make([]byte, 32),
		CreatedAt: 1700000000,
		Kind:      kind.TextNote,
		Tags:      tags.T{{"e", "abcd"}, {"p", "ef01", "relay hint"}},
		Content:   "line one\nline \"two\"\ttabbed",
	}
	b := ev.Serialize()
	expected := `[0,"` +
		"0000000000000000000000000000000000000000000000000000000000000000" +
		`",1700000000,1,[["e","abcd"],["p","ef01","relay hint"]],` +
		`"line one\nline \"two\"\ttabbed"]`
	require.Equal(t, expected, string(b))
}

func TestSerializeControlCharEscapes(t *testing.T) {
	ev := &event.E{
		Pubkey:    make([]byte, 32),
		CreatedAt: 1,
		Kind:      kind.TextNote,
		Tags:      tags.T{},
		Content:   "a\x01b\x08c\x0cd",
	}
	require.Contains(t, string(ev.Serialize()), `a\u0001b\bc\fd`)
}

func TestSignVerify(t *testing.T) {
	s := signer(t)
	ev := &event.E{
		CreatedAt: time.Now().Unix(),
		Kind:      kind.TextNote,
		Tags:      tags.T{},
		Content:   "hello",
	}
	require.NoError(t, ev.Sign(s))
	require.True(t, ev.IDValid())
	valid, err := ev.Verify()
	require.NoError(t, err)
	require.True(t, valid)

	// any canonical field change must invalidate the id
	ev.Content = "tampered"
	require.False(t, ev.IDValid())
}

func TestVerifyWrongKey(t *testing.T) {
	s, other := signer(t), signer(t)
	ev := &event.E{
		CreatedAt: time.Now().Unix(),
		Kind:      kind.TextNote,
		Tags:      tags.T{},
		Content:   "hello",
	}
	require.NoError(t, ev.Sign(s))
	ev.Pubkey = other.Pub()
	ev.ID = ev.GetIDBytes()
	valid, err := ev.Verify()
	require.NoError(t, err)
	require.False(t, valid)
}

func TestDifficulty(t *testing.T) {
	ev := &event.E{ID: append([]byte{0x00, 0x1f}, make([]byte, 30)...)}
	require.Equal(t, 11, ev.Difficulty())
	ev.ID[0] = 0x80
	require.Equal(t, 0, ev.Difficulty())
}

func TestExpiration(t *testing.T) {
	now := time.Now().Unix()
	ev := &event.E{Tags: tags.T{{"expiration", "12345"}}}
	ts, ok := ev.Expiration()
	require.True(t, ok)
	require.EqualValues(t, 12345, ts)
	require.True(t, ev.Expired(now))

	ev = &event.E{Tags: tags.T{{"expiration", "not-a-number"}}}
	_, ok = ev.Expiration()
	require.False(t, ok)
	require.False(t, ev.Expired(now))

	ev = &event.E{Tags: tags.T{}}
	require.False(t, ev.Expired(now))
}

func TestParseRejectsMalformed(t *testing.T) {
	s := signer(t)
	ev := &event.E{
		CreatedAt: time.Now().Unix(),
		Kind:      kind.TextNote,
		Tags:      tags.T{},
		Content:   "ok",
	}
	require.NoError(t, ev.Sign(s))
	good, err := ev.MarshalJSON()
	require.NoError(t, err)
	parsed, err := event.Parse(good)
	require.NoError(t, err)
	require.Equal(t, ev.ID, parsed.ID)

	cases := []string{
		`{"id":"abc"}`,
		`{"id":"` + hex.Enc(ev.ID) + `","pubkey":"zz"}`,
		`[1,2,3]`,
		`{"id":"` + hex.Enc(ev.ID) + `","pubkey":"` + ev.PubkeyHex() +
			`","sig":"` + hex.Enc(ev.Sig) + `","kind":70000}`,
	}
	for _, c := range cases {
		_, err = event.Parse([]byte(c))
		require.Error(t, err, c)
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	s := signer(t)
	ev := &event.E{
		CreatedAt: time.Now().Unix(),
		Kind:      kind.ProfileMetadata,
		Tags:      tags.T{{"d", "value"}},
		Content:   "{\"name\":\"test\"}",
	}
	require.NoError(t, ev.Sign(s))
	ev.ReceivedAt = time.Now().Unix()
	b, err := ev.EncodeBinary()
	require.NoError(t, err)
	var back event.E
	require.NoError(t, back.DecodeBinary(b))
	require.Equal(t, ev.ID, back.ID)
	require.Equal(t, ev.Tags, back.Tags)
	require.Equal(t, ev.ReceivedAt, back.ReceivedAt)
}
