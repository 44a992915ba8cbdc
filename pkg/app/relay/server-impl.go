package relay

import (
	"net/http"
	"strings"

	"github.com/puzpuzpuz/xsync/v3"

	"roost.dev/pkg/app/config"
	"roost.dev/pkg/interfaces/publisher"
	"roost.dev/pkg/interfaces/server"
	"roost.dev/pkg/interfaces/store"
	"roost.dev/pkg/protocol/relayinfo"
	"roost.dev/pkg/utils/context"
)

var _ server.I = &Server{}

func (s *Server) Context() context.T      { return s.Ctx }
func (s *Server) Storage() store.I        { return s.store }
func (s *Server) Publisher() publisher.I  { return s.listeners }
func (s *Server) Config() *config.C       { return s.cfg }
func (s *Server) AuthRequired() bool      { return s.cfg.AuthRequired }
func (s *Server) OwnerPubkey() []byte     { return s.owner }
func (s *Server) Clients() *xsync.Counter { return s.clients }
func (s *Server) SupportedNIPs() []int    { return relayinfo.SupportedNIPs() }

// ServiceURL is the websocket URL clients use to reach this relay, used to
// check NIP-42 relay tags. The configured external URL wins; otherwise it
// is derived from the request.
func (s *Server) ServiceURL(r *http.Request) string {
	if s.cfg.URL != "" {
		return s.cfg.URL
	}
	if r == nil {
		return ""
	}
	proto := r.Header.Get("X-Forwarded-Proto")
	scheme := "ws"
	switch {
	case proto == "https" || proto == "wss":
		scheme = "wss"
	case proto == "":
		if r.TLS != nil {
			scheme = "wss"
		}
	}
	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	return scheme + "://" + strings.TrimSuffix(host, "/")
}
