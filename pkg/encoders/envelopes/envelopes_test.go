package envelopes_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"roost.dev/pkg/encoders/envelopes"
)

func TestIdentify(t *testing.T) {
	label, rest, err := envelopes.Identify(
		[]byte(`["REQ","sub1",{"kinds":[1]}]`),
	)
	require.NoError(t, err)
	require.Equal(t, envelopes.LReq, label)
	require.Len(t, rest, 2)

	_, _, err = envelopes.Identify([]byte(`{"not":"an array"}`))
	require.Error(t, err)
	_, _, err = envelopes.Identify([]byte(`[]`))
	require.Error(t, err)
	_, _, err = envelopes.Identify([]byte(`[42]`))
	require.Error(t, err)
}

func TestBuilders(t *testing.T) {
	id := make([]byte, 32)
	id[0] = 0xab
	ok := envelopes.Ok(id, true, "duplicate:")
	var elems []json.RawMessage
	require.NoError(t, json.Unmarshal(ok, &elems))
	require.Len(t, elems, 4)
	require.JSONEq(t, `"OK"`, string(elems[0]))
	require.Contains(t, string(elems[1]), "ab00")

	count := envelopes.Count("sub", 42)
	require.Equal(t, `["COUNT","sub",{"count":42}]`, string(count))

	closed := envelopes.Closed("sub", "auth-required: do auth")
	require.Equal(
		t, `["CLOSED","sub","auth-required: do auth"]`, string(closed),
	)

	require.Equal(t, `["EOSE","sub"]`, string(envelopes.Eose("sub")))
}
