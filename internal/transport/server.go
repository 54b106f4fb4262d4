package transport

import (
	"context"
	"net"
	"net/http"

	"github.com/decred/slog"
)

// ConnHandler processes one upgraded connection until it closes. The
// transport package itself knows nothing about rooms or the poker
// protocol; internal/connhandler supplies this.
type ConnHandler func(conn Conn)

// Server binds a ConnHandler to an HTTP listener, optionally serving
// static assets from a directory (SPEC_FULL.md §6 "Configuration").
// Grounded on lox-pokerforbots' internal/server/server.go Start/Serve/
// Shutdown shape.
type Server struct {
	addr       string
	staticDir  string
	handler    ConnHandler
	log        slog.Logger
	mux        *http.ServeMux
	httpServer *http.Server
}

// NewServer constructs a Server that upgrades requests to /ws and, if
// staticDir is non-empty, serves static files from it at "/".
func NewServer(addr, staticDir string, handler ConnHandler, log slog.Logger) *Server {
	s := &Server{
		addr:      addr,
		staticDir: staticDir,
		handler:   handler,
		log:       log,
		mux:       http.NewServeMux(),
	}
	s.mux.HandleFunc("/ws", s.handleWebSocket)
	if staticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}
	return s
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := Upgrade(w, r)
	if err != nil {
		s.log.Errorf("websocket upgrade failed: %v", err)
		return
	}
	s.handler(conn)
}

// Start listens and serves until Shutdown is called or an
// unrecoverable error occurs.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.httpServer = &http.Server{Handler: s.mux}
	s.log.Infof("server listening on %s", listener.Addr().String())
	err = s.httpServer.Serve(listener)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
