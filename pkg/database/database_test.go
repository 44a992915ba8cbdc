package database_test

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"roost.dev/pkg/database"
	"roost.dev/pkg/encoders/event"
	"roost.dev/pkg/encoders/filter"
	"roost.dev/pkg/encoders/hex"
	"roost.dev/pkg/encoders/kind"
	"roost.dev/pkg/encoders/tags"
	"roost.dev/pkg/interfaces/store"
	"roost.dev/pkg/tests"
	"roost.dev/pkg/utils/context"
	"roost.dev/pkg/utils/lol"
)

func openStore(t *testing.T) (*database.D, context.T) {
	t.Helper()
	lol.SetLogLevel("off")
	c, cancel := context.Cancel(context.Bg())
	d, err := database.New(c, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(
		func() {
			cancel()
			require.NoError(t, d.Close())
		},
	)
	return d, c
}

func TestSaveAndQuery(t *testing.T) {
	d, c := openStore(t)
	s, err := tests.NewSigner()
	require.NoError(t, err)
	base := time.Now().Unix()
	var saved event.S
	for i := 0; i < 5; i++ {
		ev, err := tests.SignedEvent(
			s, kind.TextNote, "note", nil, base+int64(i),
		)
		require.NoError(t, err)
		require.NoError(t, d.SaveEvent(c, ev))
		saved = append(saved, ev)
	}

	// author index, newest first
	evs, err := d.QueryEvents(
		c, filter.S{{Authors: []string{hex.Enc(s.Pub())}}}, 500,
	)
	require.NoError(t, err)
	require.Len(t, evs, 5)
	for i := 1; i < len(evs); i++ {
		require.GreaterOrEqual(t, evs[i-1].CreatedAt, evs[i].CreatedAt)
	}

	// exact id lookup
	evs, err = d.QueryEvents(
		c, filter.S{{IDs: []string{saved[2].IDHex()}}}, 500,
	)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	require.Equal(t, saved[2].ID, evs[0].ID)

	// id prefix lookup
	evs, err = d.QueryEvents(
		c, filter.S{{IDs: []string{saved[2].IDHex()[:8]}}}, 500,
	)
	require.NoError(t, err)
	require.Len(t, evs, 1)

	// limit applies per filter
	lim := uint(2)
	evs, err = d.QueryEvents(
		c, filter.S{{Authors: []string{hex.Enc(s.Pub())}, Limit: &lim}}, 500,
	)
	require.NoError(t, err)
	require.Len(t, evs, 2)
	require.Equal(t, saved[4].ID, evs[0].ID)

	var n int64
	n, err = d.TotalEvents()
	require.NoError(t, err)
	require.EqualValues(t, 5, n)
}

func TestAuthorPrefixLimitKeepsNewest(t *testing.T) {
	d, c := openStore(t)
	s, err := tests.NewSigner()
	require.NoError(t, err)
	base := time.Now().Unix()
	var newest *event.E
	for i := 0; i < 3; i++ {
		ev, err := tests.SignedEvent(
			s, kind.TextNote, "note", nil, base+int64(i),
		)
		require.NoError(t, err)
		require.NoError(t, d.SaveEvent(c, ev))
		newest = ev
	}
	// a short author prefix walks the pubkey index in key order, not time
	// order; the limit must still keep the newest event
	lim := uint(1)
	evs, err := d.QueryEvents(
		c, filter.S{{
			Authors: []string{hex.Enc(s.Pub())[:2]}, Limit: &lim,
		}}, 500,
	)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	require.Equal(t, newest.ID, evs[0].ID)
}

func TestDuplicate(t *testing.T) {
	d, c := openStore(t)
	s, err := tests.NewSigner()
	require.NoError(t, err)
	ev, err := tests.TextNote(s)
	require.NoError(t, err)
	require.NoError(t, d.SaveEvent(c, ev))
	require.ErrorIs(t, d.SaveEvent(c, ev), store.ErrDuplicate)
	has, err := d.HasEvent(c, ev.ID)
	require.NoError(t, err)
	require.True(t, has)
}

func TestReplaceable(t *testing.T) {
	d, c := openStore(t)
	s, err := tests.NewSigner()
	require.NoError(t, err)
	base := time.Now().Unix()
	older, err := tests.SignedEvent(
		s, kind.ProfileMetadata, `{"name":"old"}`, nil, base,
	)
	require.NoError(t, err)
	newer, err := tests.SignedEvent(
		s, kind.ProfileMetadata, `{"name":"new"}`, nil, base+10,
	)
	require.NoError(t, err)
	require.NoError(t, d.SaveEvent(c, older))
	require.NoError(t, d.SaveEvent(c, newer))

	// the older event is gone, only the newer survives
	evs, err := d.QueryEvents(
		c, filter.S{{Kinds: []kind.T{kind.ProfileMetadata}}}, 500,
	)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	require.Equal(t, newer.ID, evs[0].ID)

	// a stale write is refused outright
	stale, err := tests.SignedEvent(
		s, kind.ProfileMetadata, `{"name":"stale"}`, nil, base+5,
	)
	require.NoError(t, err)
	require.ErrorIs(t, d.SaveEvent(c, stale), store.ErrStale)
}

func TestParameterizedReplaceable(t *testing.T) {
	d, c := openStore(t)
	s, err := tests.NewSigner()
	require.NoError(t, err)
	base := time.Now().Unix()
	a1, err := tests.SignedEvent(
		s, 30023, "first draft", tags.T{{"d", "article-a"}}, base,
	)
	require.NoError(t, err)
	b1, err := tests.SignedEvent(
		s, 30023, "other article", tags.T{{"d", "article-b"}}, base,
	)
	require.NoError(t, err)
	a2, err := tests.SignedEvent(
		s, 30023, "second draft", tags.T{{"d", "article-a"}}, base+10,
	)
	require.NoError(t, err)
	require.NoError(t, d.SaveEvent(c, a1))
	require.NoError(t, d.SaveEvent(c, b1))
	require.NoError(t, d.SaveEvent(c, a2))

	evs, err := d.QueryEvents(
		c, filter.S{{Kinds: []kind.T{30023}}}, 500,
	)
	require.NoError(t, err)
	require.Len(t, evs, 2)
	for _, ev := range evs {
		require.NotEqual(t, a1.ID, ev.ID)
	}
}

func TestDeleteByAuthor(t *testing.T) {
	d, c := openStore(t)
	owner, err := tests.NewSigner()
	require.NoError(t, err)
	other, err := tests.NewSigner()
	require.NoError(t, err)
	mine, err := tests.TextNote(owner)
	require.NoError(t, err)
	theirs, err := tests.TextNote(other)
	require.NoError(t, err)
	require.NoError(t, d.SaveEvent(c, mine))
	require.NoError(t, d.SaveEvent(c, theirs))

	n, err := d.DeleteByAuthor(
		c, owner.Pub(), [][]byte{mine.ID, theirs.ID},
	)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	has, err := d.HasEvent(c, mine.ID)
	require.NoError(t, err)
	require.False(t, has)
	has, err = d.HasEvent(c, theirs.ID)
	require.NoError(t, err)
	require.True(t, has)
}

func TestExpiration(t *testing.T) {
	d, c := openStore(t)
	s, err := tests.NewSigner()
	require.NoError(t, err)
	now := time.Now().Unix()
	expired, err := tests.SignedEvent(
		s, kind.TextNote, "gone",
		tags.T{{"expiration", itoa(now - 5)}}, now-10,
	)
	require.NoError(t, err)
	living, err := tests.SignedEvent(
		s, kind.TextNote, "alive",
		tags.T{{"expiration", itoa(now + 3600)}}, now,
	)
	require.NoError(t, err)
	require.NoError(t, d.SaveEvent(c, expired))
	require.NoError(t, d.SaveEvent(c, living))

	// expired rows are invisible to queries even before the sweep
	evs, err := d.QueryEvents(
		c, filter.S{{Authors: []string{hex.Enc(s.Pub())}}}, 500,
	)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	require.Equal(t, living.ID, evs[0].ID)

	d.DeleteExpired()
	has, err := d.HasEvent(c, expired.ID)
	require.NoError(t, err)
	require.False(t, has)
	has, err = d.HasEvent(c, living.ID)
	require.NoError(t, err)
	require.True(t, has)
}

func TestCountEvents(t *testing.T) {
	d, c := openStore(t)
	s, err := tests.NewSigner()
	require.NoError(t, err)
	base := time.Now().Unix()
	for i := 0; i < 4; i++ {
		ev, err := tests.SignedEvent(
			s, kind.TextNote, "note", nil, base+int64(i),
		)
		require.NoError(t, err)
		require.NoError(t, d.SaveEvent(c, ev))
	}
	// limits do not bound counts, and overlapping filters do not double
	// count
	lim := uint(1)
	n, err := d.CountEvents(
		c, filter.S{
			{Authors: []string{hex.Enc(s.Pub())}, Limit: &lim},
			{Kinds: []kind.T{kind.TextNote}},
		},
	)
	require.NoError(t, err)
	require.EqualValues(t, 4, n)
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
