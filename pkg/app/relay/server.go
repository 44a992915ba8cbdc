// Package relay assembles the relay server: the HTTP front end, the
// websocket protocol surface, relay policy and the event store behind
// them.
package relay

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/cors"

	"roost.dev/pkg/app/config"
	"roost.dev/pkg/app/relay/helpers"
	"roost.dev/pkg/app/relay/publish"
	"roost.dev/pkg/interfaces/store"
	"roost.dev/pkg/protocol/openapi"
	"roost.dev/pkg/protocol/socketapi"
	"roost.dev/pkg/utils/chk"
	"roost.dev/pkg/utils/context"
	"roost.dev/pkg/utils/log"
)

// ErrBind wraps a listener bind failure so the caller can exit with a
// distinct status.
var ErrBind = errors.New("cannot bind listen address")

// Server is the relay.
type Server struct {
	Ctx    context.T
	Cancel context.F

	cfg        *config.C
	store      store.I
	listeners  *publish.S
	mux        *chi.Mux
	httpServer *http.Server
	clients    *xsync.Counter
	owner      []byte
	publishMx  sync.Mutex
}

// NewServer wires a relay around an open event store.
func NewServer(
	c context.T, cancel context.F, cfg *config.C, sto store.I,
) (s *Server) {
	s = &Server{
		Ctx:     c,
		Cancel:  cancel,
		cfg:     cfg,
		store:   sto,
		mux:     chi.NewMux(),
		clients: xsync.NewCounter(),
		owner:   cfg.Owner(),
	}
	s.listeners = publish.New(socketapi.New(s))
	s.mux.Get("/", s.handleRoot)
	s.mux.Get("/relay/info", s.handleRelayInfo)
	openapi.New(s, s.mux)
	return
}

// handleRoot serves a short text page for plain browser hits on the
// websocket endpoint.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(
		w, "%s - %s\nconnect with a nostr client via websocket\n",
		s.cfg.Name, s.cfg.Description,
	)
}

// ServeHTTP dispatches the relay root: websocket upgrades and NIP-11
// requests on "/", everything else through the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/" {
		if r.Header.Get("Upgrade") == "websocket" {
			s.handleWebsocket(w, r)
			return
		}
		if r.Header.Get("Accept") == "application/nostr+json" {
			s.handleRelayInfo(w, r)
			return
		}
	}
	log.T.F(
		"http request: %s from %s", r.URL.String(),
		helpers.GetRemoteFromReq(r),
	)
	s.mux.ServeHTTP(w, r)
}

// Start binds the listen address and serves until Shutdown. A failure to
// bind is reported as ErrBind.
func (s *Server) Start() (err error) {
	addr := net.JoinHostPort(s.cfg.Listen, strconv.Itoa(s.cfg.Port))
	log.I.F("starting relay listener at %s", addr)
	var ln net.Listener
	if ln, err = net.Listen("tcp", addr); err != nil {
		return errors.Join(ErrBind, err)
	}
	s.httpServer = &http.Server{
		Handler:           cors.Default().Handler(s),
		Addr:              addr,
		ReadHeaderTimeout: 7 * time.Second,
		IdleTimeout:       28 * time.Second,
	}
	if err = s.httpServer.Serve(ln); errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	return
}

// Shutdown stops accepting connections, cancels the running sessions and
// closes the store.
func (s *Server) Shutdown() {
	log.I.Ln("shutting down relay")
	s.Cancel()
	if s.httpServer != nil {
		ctx, cancel := context.Timeout(context.Bg(), 5*time.Second)
		defer cancel()
		chk.E(s.httpServer.Shutdown(ctx))
	}
	log.W.Ln("closing event store")
	chk.E(s.store.Close())
}
