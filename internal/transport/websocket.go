package transport

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WSConn adapts a gorilla/websocket connection to Conn. Unlike
// lox-pokerforbots' internal/server/server.go, it runs no
// server-initiated ping ticker and sets no read deadline: SPEC_FULL.md
// §12 (grounded on the original's ws_transport.rs) keeps idle
// connections alive indefinitely and answers only client-initiated
// Ping messages, per spec.md §5 "No overall connection timeout; idle
// connections remain."
type WSConn struct {
	ws *websocket.Conn

	writeMu sync.Mutex
}

func newWSConn(ws *websocket.Conn) *WSConn {
	return &WSConn{ws: ws}
}

// ReadMessage blocks for the next text/binary frame.
func (c *WSConn) ReadMessage() ([]byte, error) {
	_, payload, err := c.ws.ReadMessage()
	return payload, err
}

// WriteMessage writes one text frame, serialized against any concurrent
// caller (the connection handler's writer goroutine is the only one in
// this module, but Conn makes no such guarantee on its own).
func (c *WSConn) WriteMessage(payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, payload)
}

// Close closes the underlying connection.
func (c *WSConn) Close() error {
	return c.ws.Close()
}

// RemoteAddr returns the peer's address for logging.
func (c *WSConn) RemoteAddr() string {
	return c.ws.RemoteAddr().String()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Upgrade upgrades an HTTP request to a WebSocket connection.
func Upgrade(w http.ResponseWriter, r *http.Request) (*WSConn, error) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return newWSConn(ws), nil
}
