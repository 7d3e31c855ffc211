package monitor

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/ledtheatre/sink"
)

func newServer(t *testing.T) (*sink.Sink, *Hub, *httptest.Server) {
	t.Helper()
	out := sink.New(4)
	out.SetLogger(zerolog.Nop())
	h := New(out, "sim")
	mux := http.NewServeMux()
	h.Routes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		h.Close()
		srv.Close()
	})
	return out, h, srv
}

func readJSON(t *testing.T, c *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := c.ReadMessage()
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestHubStreamsChanges(t *testing.T) {
	out, _, srv := newServer(t)
	_, err := out.Set(2, 0.5)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer c.Close()

	snap := readJSON(t, c)
	assert.Equal(t, "snapshot", snap["type"])
	assert.Equal(t, "sim", snap["driver"])
	assert.Equal(t, []any{-1.0, -1.0, 0.5, -1.0}, snap["channels"])

	_, err = out.Set(1, 1)
	require.NoError(t, err)
	msg := readJSON(t, c)
	assert.Equal(t, "change", msg["type"])
	assert.Equal(t, 1.0, msg["channel"])
	assert.Equal(t, 1.0, msg["brightness"])
	assert.Equal(t, -1.0, msg["previous"])
	assert.Equal(t, 2.0, msg["id"])
}

func TestHealth(t *testing.T) {
	out, _, srv := newServer(t)
	_, err := out.Set(0, 1)
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	var m map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))
	assert.Equal(t, 1.0, m["changes"])
	assert.Equal(t, 4.0, m["channels"])
	assert.Equal(t, true, m["simulated"])
}
