// Package socketapi is the websocket face of the relay: it upgrades
// connections, reads protocol frames and dispatches them to the handlers.
package socketapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/fasthttp/websocket"

	"roost.dev/pkg/encoders/envelopes"
	"roost.dev/pkg/encoders/reason"
	"roost.dev/pkg/interfaces/server"
	"roost.dev/pkg/protocol/ws"
	"roost.dev/pkg/utils/chk"
	"roost.dev/pkg/utils/context"
	"roost.dev/pkg/utils/log"
)

const (
	DefaultPongWait = 60 * time.Second
	DefaultPingWait = DefaultPongWait / 2
	// MaxMessageSize bounds one inbound frame; anything larger gets a
	// notice and the connection is dropped.
	MaxMessageSize = 65536
)

// A is one websocket session being served.
type A struct {
	Ctx context.T
	*ws.Listener
	server.I
}

// Serve upgrades the request and runs the session until either side goes
// away. Frames are processed in arrival order so OK and EOSE responses
// keep their protocol ordering guarantees.
func (a *A) Serve(w http.ResponseWriter, r *http.Request, s server.I) {
	var err error
	var cancel context.F
	a.Ctx, cancel = context.Cancel(s.Context())
	var conn *websocket.Conn
	if conn, err = Upgrader.Upgrade(w, r, nil); chk.E(err) {
		return
	}
	a.Listener = ws.NewListener(conn, r, s.Config().RateLimit)
	s.Clients().Inc()
	defer func() {
		cancel()
		s.Clients().Dec()
		a.Publisher().Receive(&W{Cancel: true, Listener: a.Listener})
		_ = a.Listener.Close()
	}()
	log.D.F("websocket connected from %s", a.RealRemote())
	conn.SetReadLimit(MaxMessageSize)
	chk.E(conn.SetReadDeadline(time.Now().Add(DefaultPongWait)))
	conn.SetPongHandler(
		func(string) error {
			return conn.SetReadDeadline(time.Now().Add(DefaultPongWait))
		},
	)
	go a.Listener.WritePump(a.Ctx, DefaultPingWait)
	if s.AuthRequired() {
		a.Enqueue(envelopes.AuthChallenge(a.Challenge()))
	}
	var msg []byte
	for {
		select {
		case <-a.Ctx.Done():
			return
		default:
		}
		if _, msg, err = conn.ReadMessage(); err != nil {
			if errors.Is(err, websocket.ErrReadLimit) {
				a.Enqueue(
					envelopes.Notice(reason.Invalid.F("message too large")),
				)
				// give the writer a moment to flush the notice
				time.Sleep(100 * time.Millisecond)
				return
			}
			if strings.Contains(
				err.Error(), "use of closed network connection",
			) {
				return
			}
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
				websocket.CloseAbnormalClosure,
			) {
				log.D.F("unexpected close from %s: %v", a.RealRemote(), err)
			}
			return
		}
		if !a.HandleMessage(msg) {
			return
		}
	}
}
