package transport

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/decred/slog"
	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestServer_EchoesThroughConnInterface drives an upgraded connection
// end to end through a Server, exercising the Conn interface the same
// way internal/connhandler does (SPEC_FULL.md §9 "Dynamic dispatch").
func TestServer_EchoesThroughConnInterface(t *testing.T) {
	handled := make(chan struct{})
	srv := NewServer("", "", func(conn Conn) {
		defer close(handled)
		msg, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, "ping", string(msg))
		require.NoError(t, conn.WriteMessage([]byte("pong")))
		conn.ReadMessage() // block until the client disconnects
	}, slog.Disabled)

	ts := httptest.NewServer(http.HandlerFunc(srv.handleWebSocket))
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	clientConn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer clientConn.Close()

	require.NoError(t, clientConn.WriteMessage(gorillaws.TextMessage, []byte("ping")))

	clientConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := clientConn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "pong", string(payload))

	clientConn.Close()
	select {
	case <-handled:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never observed client disconnect")
	}
}

func TestServer_StaticDirServesFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(dir+"/index.html", []byte("hello"), 0o644))

	srv := NewServer("", dir, func(conn Conn) {}, slog.Disabled)
	ts := httptest.NewServer(srv.mux)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/index.html")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
