package relay_test

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"roost.dev/pkg/app/config"
	"roost.dev/pkg/app/relay"
	"roost.dev/pkg/database"
	"roost.dev/pkg/encoders/kind"
	"roost.dev/pkg/encoders/tags"
	"roost.dev/pkg/protocol/relayinfo"
	"roost.dev/pkg/tests"
	"roost.dev/pkg/utils/context"
	"roost.dev/pkg/utils/lol"
)

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	lol.SetLogLevel("off")
	cfg := &config.C{
		Listen:      "127.0.0.1",
		Port:        8080,
		DataDir:     t.TempDir(),
		Name:        "testrelay",
		Description: "test instance",
		MaxSubs:     20,
		PastLimit:   2592000,
		FutureLimit: 600,
	}
	c, cancel := context.Cancel(context.Bg())
	sto, err := database.New(c, cfg.DataDir)
	require.NoError(t, err)
	srv := relay.NewServer(c, cancel, cfg, sto)
	ts := httptest.NewServer(srv)
	t.Cleanup(
		func() {
			ts.Close()
			cancel()
			_ = sto.Close()
		},
	)
	return ts
}

func TestRelayInfoDocument(t *testing.T) {
	ts := startServer(t)
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/", nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "application/nostr+json")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var info relayinfo.T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&info))
	require.Equal(t, "testrelay", info.Name)
	require.Contains(t, info.Nips, 1)
	require.Contains(t, info.Nips, 11)
	require.Contains(t, info.Nips, 42)
	require.False(t, info.Limitation.AuthRequired)
	require.False(t, info.Limitation.RestrictedWrites)
	require.Equal(t, 65536, info.Limitation.MaxMessageLength)

	// the same document is served on the plain route
	res2, err := http.Get(ts.URL + "/relay/info")
	require.NoError(t, err)
	defer res2.Body.Close()
	require.Equal(t, http.StatusOK, res2.StatusCode)
}

func TestStatsAndHealth(t *testing.T) {
	ts := startServer(t)
	res, err := http.Get(ts.URL + "/relay/stats")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	var stats struct {
		Name        string `json:"relay_name"`
		TotalEvents int64  `json:"total_events"`
		Clients     int64  `json:"connected_clients"`
		Nips        []int  `json:"supported_nips"`
		OwnerOnly   bool   `json:"owner_only"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&stats))
	require.Equal(t, "testrelay", stats.Name)
	require.EqualValues(t, 0, stats.TotalEvents)
	require.Contains(t, stats.Nips, 45)
	require.False(t, stats.OwnerOnly)

	res2, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer res2.Body.Close()
	require.Equal(t, http.StatusOK, res2.StatusCode)
	var health struct {
		Status  string `json:"status"`
		Clients int64  `json:"clients"`
	}
	require.NoError(t, json.NewDecoder(res2.Body).Decode(&health))
	require.Equal(t, "ok", health.Status)
	require.EqualValues(t, 0, health.Clients)
}

func policyServer(t *testing.T, cfg *config.C) *relay.Server {
	t.Helper()
	lol.SetLogLevel("off")
	c, cancel := context.Cancel(context.Bg())
	sto, err := database.New(c, cfg.DataDir)
	require.NoError(t, err)
	srv := relay.NewServer(c, cancel, cfg, sto)
	t.Cleanup(
		func() {
			cancel()
			_ = sto.Close()
		},
	)
	return srv
}

func TestAcceptEventPolicy(t *testing.T) {
	cfg := &config.C{
		Listen:      "127.0.0.1",
		Port:        8080,
		DataDir:     t.TempDir(),
		MaxSubs:     20,
		PastLimit:   2592000,
		FutureLimit: 600,
	}
	srv := policyServer(t, cfg)
	c := context.Bg()
	s, err := tests.NewSigner()
	require.NoError(t, err)
	now := time.Now().Unix()

	// comfortably inside the window
	ok, err2 := tests.SignedEvent(s, kind.TextNote, "x", nil, now+300)
	require.NoError(t, err2)
	accept, _ := srv.AcceptEvent(c, ok)
	require.True(t, accept)

	// too far in the future
	future, err2 := tests.SignedEvent(s, kind.TextNote, "x", nil, now+700)
	require.NoError(t, err2)
	accept, notice := srv.AcceptEvent(c, future)
	require.False(t, accept)
	require.True(t, strings.HasPrefix(notice, "invalid:"), notice)

	// too far in the past
	past, err2 := tests.SignedEvent(
		s, kind.TextNote, "x", nil, now-cfg.PastLimit-100,
	)
	require.NoError(t, err2)
	accept, notice = srv.AcceptEvent(c, past)
	require.False(t, accept)
	require.True(t, strings.HasPrefix(notice, "invalid:"), notice)

	// dead on arrival
	expired, err2 := tests.SignedEvent(
		s, kind.TextNote, "x",
		tags.T{{"expiration", "1"}}, now,
	)
	require.NoError(t, err2)
	accept, notice = srv.AcceptEvent(c, expired)
	require.False(t, accept)
	require.True(t, strings.HasPrefix(notice, "invalid:"), notice)

	// an unmeetable difficulty floor
	cfg.MinPow = 99
	accept, notice = srv.AcceptEvent(c, ok)
	require.False(t, accept)
	require.True(t, strings.HasPrefix(notice, "pow:"), notice)
	cfg.MinPow = 0
}

func TestBindFailureUnblocksLifecycle(t *testing.T) {
	lol.SetLogLevel("off")
	// occupy a port so Start must fail
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	cfg := &config.C{
		Listen:      "127.0.0.1",
		Port:        ln.Addr().(*net.TCPAddr).Port,
		DataDir:     t.TempDir(),
		MaxSubs:     20,
		PastLimit:   2592000,
		FutureLimit: 600,
	}
	c, cancel := context.Cancel(context.Bg())
	sto, err := database.New(c, cfg.DataDir)
	require.NoError(t, err)
	t.Cleanup(
		func() {
			cancel()
			_ = sto.Close()
		},
	)
	srv := relay.NewServer(c, cancel, cfg, sto)
	var g errgroup.Group
	g.Go(
		func() error {
			defer cancel()
			return srv.Start()
		},
	)
	g.Go(
		func() error {
			sto.SweepExpired(c, time.Minute)
			return nil
		},
	)
	done := make(chan error, 1)
	go func() { done <- g.Wait() }()
	select {
	case err := <-done:
		require.ErrorIs(t, err, relay.ErrBind)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle group did not unwind after the bind failure")
	}
}
