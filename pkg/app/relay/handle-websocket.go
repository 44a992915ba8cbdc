package relay

import (
	"net/http"

	"roost.dev/pkg/protocol/socketapi"
)

// handleWebsocket hands an upgrade request to a fresh websocket session.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	a := &socketapi.A{I: s}
	a.Serve(w, r, s)
}
