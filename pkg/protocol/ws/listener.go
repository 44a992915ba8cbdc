// Package ws wraps a relay-side websocket with its session state: the
// outbound send queue, authentication state and the inbound misbehaviour
// counters.
package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/fasthttp/websocket"
	"golang.org/x/time/rate"

	"roost.dev/pkg/app/relay/helpers"
	"roost.dev/pkg/protocol/auth"
	atomic2 "roost.dev/pkg/utils/atomic"
	"roost.dev/pkg/utils/chk"
	"roost.dev/pkg/utils/context"
	"roost.dev/pkg/utils/log"
)

const (
	// SendQueueSize bounds the per-connection outbound queue; a consumer
	// that cannot drain this is disconnected rather than allowed to stall
	// the relay.
	SendQueueSize = 128
	// WriteWait is the deadline on a single websocket write.
	WriteWait = 10 * time.Second
	// parse failures beyond this many inside ParseFailWindow close the
	// socket
	MaxParseFails   = 10
	ParseFailWindow = time.Minute
)

// Listener is one relay-side websocket session.
type Listener struct {
	Conn    *websocket.Conn
	Request *http.Request

	remote       atomic2.String
	authedPubkey atomic2.Bytes
	challenge    atomic2.String
	sendQueue    chan []byte
	limiter      *rate.Limiter

	failMx    sync.Mutex
	failTimes []time.Time

	subsMx sync.Mutex
	subs   map[string]struct{}
}

// NewListener wraps an upgraded connection. A rateLimit of zero disables
// inbound frame throttling.
func NewListener(
	conn *websocket.Conn, req *http.Request, rateLimit int,
) (l *Listener) {
	l = &Listener{
		Conn:      conn,
		Request:   req,
		sendQueue: make(chan []byte, SendQueueSize),
		subs:      make(map[string]struct{}),
	}
	if rateLimit > 0 {
		l.limiter = rate.NewLimiter(
			rate.Limit(float64(rateLimit)/60), rateLimit,
		)
	}
	l.challenge.Store(auth.GenerateChallenge())
	rr := helpers.GetRemoteFromReq(req)
	if rr == "" {
		rr = conn.NetConn().RemoteAddr().String()
	}
	l.remote.Store(rr)
	return
}

// Enqueue hands a frame to the writer goroutine. A full queue means the
// client is not keeping up; the caller should drop the connection.
func (l *Listener) Enqueue(msg []byte) (ok bool) {
	select {
	case l.sendQueue <- msg:
		return true
	default:
		log.W.F("send queue overflow for %s, dropping client", l.RealRemote())
		return false
	}
}

// WritePump drains the send queue onto the socket until the context ends
// or a write fails. Runs as the only writer on the connection, so ping
// frames are sent from here as well.
func (l *Listener) WritePump(c context.T, pingEvery time.Duration) {
	ticker := time.NewTicker(pingEvery)
	defer ticker.Stop()
	for {
		select {
		case <-c.Done():
			return
		case msg := <-l.sendQueue:
			chk.E(l.Conn.SetWriteDeadline(time.Now().Add(WriteWait)))
			if err := l.Conn.WriteMessage(
				websocket.TextMessage, msg,
			); err != nil {
				return
			}
		case <-ticker.C:
			chk.E(l.Conn.SetWriteDeadline(time.Now().Add(WriteWait)))
			if err := l.Conn.WriteMessage(
				websocket.PingMessage, nil,
			); err != nil {
				return
			}
		}
	}
}

// Allow reports whether another inbound frame fits the session rate
// budget.
func (l *Listener) Allow() bool {
	return l.limiter == nil || l.limiter.Allow()
}

// FailedParse records a malformed inbound frame and reports whether the
// session crossed the disconnect threshold.
func (l *Listener) FailedParse() (tooMany bool) {
	l.failMx.Lock()
	defer l.failMx.Unlock()
	now := time.Now()
	cutoff := now.Add(-ParseFailWindow)
	kept := l.failTimes[:0]
	for _, t := range l.failTimes {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.failTimes = append(kept, now)
	return len(l.failTimes) > MaxParseFails
}

// RealRemote returns the client address, proxy headers honoured.
func (l *Listener) RealRemote() string { return l.remote.Load() }

// Req returns the originating upgrade request.
func (l *Listener) Req() *http.Request { return l.Request }

// Close shuts the underlying connection.
func (l *Listener) Close() (err error) { return l.Conn.Close() }

// CloseSlow tells the client it is not keeping up with a policy violation
// close frame, then drops the connection. WriteControl is safe alongside
// the write pump.
func (l *Listener) CloseSlow() (err error) {
	_ = l.Conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(
			websocket.ClosePolicyViolation, "client too slow",
		),
		time.Now().Add(WriteWait),
	)
	return l.Conn.Close()
}

// Challenge returns the session's NIP-42 challenge string.
func (l *Listener) Challenge() string { return l.challenge.Load() }

// IsAuthed reports whether the session completed NIP-42 auth.
func (l *Listener) IsAuthed() bool { return len(l.authedPubkey.Load()) > 0 }

// AuthedPubkey returns the authenticated pubkey, nil before auth.
func (l *Listener) AuthedPubkey() []byte { return l.authedPubkey.Load() }

// SetAuthedPubkey marks the session authenticated as pk.
func (l *Listener) SetAuthedPubkey(pk []byte) { l.authedPubkey.Store(pk) }

// TrySub reserves a subscription id slot. Re-issuing an id the session
// already holds succeeds without consuming another slot.
func (l *Listener) TrySub(id string, max int) (ok bool) {
	l.subsMx.Lock()
	defer l.subsMx.Unlock()
	if _, ok = l.subs[id]; ok {
		return true
	}
	if len(l.subs) >= max {
		return false
	}
	l.subs[id] = struct{}{}
	return true
}

// Unsub releases a subscription id slot.
func (l *Listener) Unsub(id string) {
	l.subsMx.Lock()
	delete(l.subs, id)
	l.subsMx.Unlock()
}
