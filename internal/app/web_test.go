package app

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/inertial_nav/internal/nav"
)

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestWebSnapshots(t *testing.T) {
	t.Parallel()

	live := newLiveState()
	srv := httptest.NewServer(live.routes())
	defer srv.Close()

	code, _ := get(t, srv.URL+"/api/navigation")
	assert.Equal(t, http.StatusServiceUnavailable, code)

	state, err := json.Marshal(&nav.State{Navigating: true, Progress: 0.25})
	require.NoError(t, err)
	require.NoError(t, live.set("state", state))
	require.NoError(t, live.set("heading", []byte(`{"heading":12.5}`)))

	code, body := get(t, srv.URL+"/api/navigation")
	assert.Equal(t, http.StatusOK, code)
	var got nav.State
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.True(t, got.Navigating)
	assert.Equal(t, 0.25, got.Progress)

	code, body = get(t, srv.URL+"/api/heading")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"heading":12.5}`, body)

	assert.Error(t, live.set("heading", []byte("not json")))
	_, body = get(t, srv.URL+"/api/heading")
	assert.JSONEq(t, `{"heading":12.5}`, body, "bad payload leaves the last snapshot")
}

func TestWebSocketStream(t *testing.T) {
	t.Parallel()

	live := newLiveState()
	require.NoError(t, live.set("state", []byte(`{"navigating":false}`)))

	srv := httptest.NewServer(live.routes())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var msg WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "state", msg.Type)
	assert.JSONEq(t, `{"navigating":false}`, string(msg.Data))

	require.NoError(t, live.set("heading", []byte(`{"heading":270}`)))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "heading", msg.Type)
	assert.JSONEq(t, `{"heading":270}`, string(msg.Data))
}

func TestWebSocketDropsFailedClient(t *testing.T) {
	t.Parallel()

	conns := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns <- conn
	}))
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer client.Close()

	var conn *websocket.Conn
	select {
	case conn = <-conns:
	case <-time.After(2 * time.Second):
		t.Fatal("no server connection")
	}
	require.NoError(t, conn.Close())
	assert.Error(t, writeMessage(conn, WSMessage{Type: "state", Data: []byte(`{}`)}))

	live := newLiveState()
	live.clients[conn] = &sync.Mutex{}
	require.NoError(t, live.set("state", []byte(`{"navigating":true}`)))

	live.clientsMu.Lock()
	defer live.clientsMu.Unlock()
	assert.Empty(t, live.clients)
}
