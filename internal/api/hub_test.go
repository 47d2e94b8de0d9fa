package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialAs(t *testing.T, srv *httptest.Server, userID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=" + userID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func TestHub_RoutesPerUserAndBroadcasts(t *testing.T) {
	inbound := make(chan string, 1)
	hub := NewHub(func(userID string, in Inbound) {
		inbound <- userID + ":" + in.Type
	})
	go hub.Run()

	registered := make(chan struct{}, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, r.URL.Query().Get("user"), w, r)
		registered <- struct{}{}
	}))
	defer srv.Close()

	alice := dialAs(t, srv, "alice")
	bob := dialAs(t, srv, "bob")
	<-registered
	<-registered

	hub.Push("alice", "notification", map[string]string{"text": "hi"})
	require.NoError(t, hub.BroadcastEvent("server_shutdown", nil))

	// Direct and broadcast messages travel on separate channels, so their
	// relative order is not fixed.
	var msg Message
	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		require.NoError(t, alice.ReadJSON(&msg))
		assert.Equal(t, "system", msg.Sender)
		seen[msg.Type] = true
	}
	assert.Equal(t, map[string]bool{"notification": true, "server_shutdown": true}, seen)

	// Bob only sees the broadcast.
	require.NoError(t, bob.ReadJSON(&msg))
	assert.Equal(t, "server_shutdown", msg.Type)

	payload, err := json.Marshal(map[string]any{"type": "position", "payload": map[string]float64{"latitude": 1, "longitude": 2}})
	require.NoError(t, err)
	require.NoError(t, bob.WriteMessage(websocket.TextMessage, payload))
	select {
	case got := <-inbound:
		assert.Equal(t, "bob:position", got)
	case <-time.After(5 * time.Second):
		t.Fatal("inbound message not delivered")
	}
}

func TestHub_ShutdownClosesSocketsAfterNotice(t *testing.T) {
	handled := make(chan string, 4)
	hub := NewHub(func(userID string, in Inbound) { handled <- userID })
	go hub.Run()

	registered := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, r.URL.Query().Get("user"), w, r)
		registered <- struct{}{}
	}))
	defer srv.Close()

	alice := dialAs(t, srv, "alice")
	<-registered
	assert.Eventually(t, func() bool { return hub.Online("alice") }, 2*time.Second, 10*time.Millisecond)
	assert.False(t, hub.Online("bob"))

	require.NoError(t, hub.BroadcastEvent("server_shutdown", nil))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, hub.Shutdown(ctx))

	assert.False(t, hub.Online("alice"))

	var msg Message
	require.NoError(t, alice.ReadJSON(&msg))
	assert.Equal(t, "server_shutdown", msg.Type)
	_, _, err := alice.ReadMessage()
	assert.Error(t, err, "socket closed by the server")

	// Nothing sent after Shutdown reaches the inbound handler.
	_ = alice.WriteMessage(websocket.TextMessage, []byte(`{"type":"position"}`))
	select {
	case id := <-handled:
		t.Fatalf("inbound handled after shutdown for %s", id)
	case <-time.After(100 * time.Millisecond):
	}
}
