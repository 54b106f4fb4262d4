// Package transport abstracts one bidirectional text-frame connection
// (SPEC_FULL.md §6, §9 "Dynamic dispatch") and provides a WebSocket
// server binding it to HTTP, grounded on lox-pokerforbots'
// internal/server/server.go upgrader/mux/shutdown shape.
package transport

import (
	"time"
)

// Conn is one connection: read one text frame / write one text frame.
// The state machine and connection handler depend only on this
// interface (SPEC_FULL.md §9 "Dynamic dispatch"); WSConn is the only
// implementation this module ships, but tests can supply a fake.
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteMessage(payload []byte) error
	Close() error
	RemoteAddr() string
}

// writeWait bounds a single write call, guarding against a stuck
// socket; it is not an idle-connection timeout (SPEC_FULL.md §12 keeps
// idle connections open indefinitely, so no read deadline or
// server-initiated ping ticker exists here). Grounded on
// lox-pokerforbots' writeWait constant.
const writeWait = 10 * time.Second
