package socketapi

import (
	"net/http"

	"github.com/fasthttp/websocket"
)

// Upgrader turns relay HTTP requests into websockets. Origin checks are a
// browser concern that does not apply to relay clients.
var Upgrader = &websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}
