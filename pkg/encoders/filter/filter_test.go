package filter_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"roost.dev/pkg/encoders/event"
	"roost.dev/pkg/encoders/filter"
	"roost.dev/pkg/encoders/hex"
	"roost.dev/pkg/encoders/kind"
	"roost.dev/pkg/encoders/tags"
)

func note(pk []byte, ts int64, content string, t tags.T) *event.E {
	if t == nil {
		t = tags.T{}
	}
	ev := &event.E{
		Pubkey:    pk,
		CreatedAt: ts,
		Kind:      kind.TextNote,
		Tags:      t,
		Content:   content,
	}
	ev.ID = ev.GetIDBytes()
	return ev
}

func pk(b byte) []byte {
	p := make([]byte, 32)
	p[0] = b
	return p
}

func TestEmptyFilterMatchesAll(t *testing.T) {
	f := &filter.F{}
	require.True(t, f.Match(note(pk(1), 100, "anything", nil)))
}

func TestAuthorPrefix(t *testing.T) {
	ev := note(pk(0xab), 100, "x", nil)
	full := hex.Enc(ev.Pubkey)
	cases := []struct {
		prefix string
		want   bool
	}{
		{full, true},
		{full[:1], true},
		{full[:2], true},
		{full[:63], true},
		{"ff", false},
	}
	for _, c := range cases {
		f := &filter.F{Authors: []string{c.prefix}}
		require.Equal(t, c.want, f.Match(ev), c.prefix)
	}
}

func TestTimeWindow(t *testing.T) {
	ev := note(pk(1), 100, "x", nil)
	since, until := int64(50), int64(150)
	require.True(t, (&filter.F{Since: &since, Until: &until}).Match(ev))
	tight := int64(101)
	require.False(t, (&filter.F{Since: &tight}).Match(ev))
	early := int64(99)
	require.False(t, (&filter.F{Until: &early}).Match(ev))
	// boundaries are inclusive
	exact := int64(100)
	require.True(t, (&filter.F{Since: &exact, Until: &exact}).Match(ev))
}

func TestTagQueries(t *testing.T) {
	ev := note(pk(1), 100, "x", tags.T{{"e", "aaaa"}, {"t", "nostr"}})
	require.True(
		t, (&filter.F{Tags: map[string][]string{"e": {"aaaa"}}}).Match(ev),
	)
	require.True(
		t,
		(&filter.F{Tags: map[string][]string{"t": {"other", "nostr"}}}).Match(ev),
	)
	require.False(
		t, (&filter.F{Tags: map[string][]string{"e": {"bbbb"}}}).Match(ev),
	)
	// an explicitly empty value set can match nothing
	require.False(
		t, (&filter.F{Tags: map[string][]string{"e": {}}}).Match(ev),
	)
}

func TestSearch(t *testing.T) {
	ev := note(pk(1), 100, "Hello Nostr World", tags.T{{"t", "TagTerm"}})
	require.True(t, (&filter.F{}).WithSearch("nostr").Match(ev))
	require.True(t, (&filter.F{}).WithSearch("tagterm").Match(ev))
	require.False(t, (&filter.F{}).WithSearch("absent").Match(ev))
	// empty search is no constraint
	require.True(t, (&filter.F{}).WithSearch("").Match(ev))
}

func TestDisjunction(t *testing.T) {
	ev := note(pk(1), 100, "x", nil)
	noMatch := &filter.F{Kinds: []kind.T{kind.Deletion}}
	match := &filter.F{Kinds: []kind.T{kind.TextNote}}
	require.True(t, filter.S{noMatch, match}.Match(ev))
	require.False(t, filter.S{noMatch}.Match(ev))
}

func TestUnmarshal(t *testing.T) {
	raw := []byte(
		`{"ids":["ab"],"authors":["cd"],"kinds":[1,5],` +
			`"#e":["eeee"],"since":10,"until":20,"limit":7,"search":"term"}`,
	)
	f := &filter.F{}
	require.NoError(t, json.Unmarshal(raw, f))
	require.Equal(t, []string{"ab"}, f.IDs)
	require.Equal(t, []string{"cd"}, f.Authors)
	require.Equal(t, []kind.T{1, 5}, f.Kinds)
	require.Equal(t, []string{"eeee"}, f.Tags["e"])
	require.EqualValues(t, 10, *f.Since)
	require.EqualValues(t, 20, *f.Until)
	require.EqualValues(t, 7, *f.Limit)
	require.Equal(t, "term", f.Search)
}

func TestUnmarshalRejectsBadHex(t *testing.T) {
	f := &filter.F{}
	require.Error(t, json.Unmarshal([]byte(`{"ids":["zz"]}`), f))
	tooLong := `{"authors":["0123456789abcdef0123456789abcdef` +
		`0123456789abcdef0123456789abcdef00"]}`
	require.Error(t, json.Unmarshal([]byte(tooLong), f))
}

func TestCapLimits(t *testing.T) {
	big, small := uint(9000), uint(3)
	fs := filter.S{{Limit: &big}, {Limit: &small}, {}}
	fs.CapLimits(500)
	require.EqualValues(t, 500, *fs[0].Limit)
	require.EqualValues(t, 3, *fs[1].Limit)
	require.Nil(t, fs[2].Limit)
}
