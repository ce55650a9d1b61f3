package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/turing/pkg/adapters/memory"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/session"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchMachine(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	server := NewServer(mgr)
	srv := httptest.NewServer(server.Handler())
	defer srv.Close()

	_, err := mgr.Create(context.Background(), "w1", session.CreateRequest{Source: "0 * x r 1\n1 * * s halt"})
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/machines/w1/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	require.Eventually(t, func() bool { return server.Streams.Subscribers("w1") == 1 }, time.Second, 10*time.Millisecond)

	for i := 0; i < 2; i++ {
		postResp, err := http.Post(srv.URL+"/machines/w1/step", "application/json", nil)
		require.NoError(t, err)
		postResp.Body.Close()
		require.Equal(t, http.StatusOK, postResp.StatusCode)
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var states []string
	for len(states) < 2 {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var snap domain.Snapshot
		require.NoError(t, json.Unmarshal(data, &snap))
		assert.Empty(t, snap.Source)
		states = append(states, snap.State)
	}
	assert.Equal(t, []string{"1", "halt"}, states)

	// Closing the server ends the stream with a close frame.
	server.Close()
	server.Close()
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
	require.Eventually(t, func() bool { return server.Streams.Subscribers("w1") == 0 }, time.Second, 10*time.Millisecond)
}

func TestWatchMachine_UnknownSession(t *testing.T) {
	srv := httptest.NewServer(NewServer(session.NewManager(memory.NewStore())).Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/machines/ghost/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWatchMachine_Deleted(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	server := NewServer(mgr)
	srv := httptest.NewServer(server.Handler())
	defer srv.Close()
	defer server.Close()

	_, err := mgr.Create(context.Background(), "w2", session.CreateRequest{Source: "0 * * s halt"})
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/machines/w2/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return server.Streams.Subscribers("w2") == 1 }, time.Second, 10*time.Millisecond)

	req, err := http.NewRequest("DELETE", srv.URL+"/machines/w2", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}
