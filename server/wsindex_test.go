package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHub(t *testing.T) (*IndexHub, *httptest.Server) {
	t.Helper()
	hub := NewIndexHub(zap.NewNop().Sugar())
	mux := http.NewServeMux()
	mux.HandleFunc("/index/subscribe", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, hub.Subscribe(w, r))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/index/subscribe"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestIndexHubBroadcastsToSubscriber(t *testing.T) {
	hub, srv := newTestHub(t)
	conn := dial(t, srv)

	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	hub.Broadcast([]byte("delta-bytes"), 42)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	msgType, body, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.BinaryMessage, msgType)
	require.Equal(t, []byte("delta-bytes"), body)
}

func TestIndexHubDisconnectsLaggingSubscriber(t *testing.T) {
	hub, srv := newTestHub(t)
	conn := dial(t, srv)

	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	// Overflow the subscriber's bounded buffer without reading, forcing a
	// lag disconnect.
	for i := 0; i < subscriberBufferSize+5; i++ {
		hub.Broadcast([]byte("payload"), uint64(i))
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		msgType, _, err := conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			require.ErrorAs(t, err, &closeErr)
			require.Equal(t, 4000, closeErr.Code)
			require.Contains(t, closeErr.Text, "lagged:")
			break
		}
		require.Equal(t, websocket.BinaryMessage, msgType)
	}

	require.Eventually(t, func() bool { return hub.Count() == 0 }, time.Second, 10*time.Millisecond)
}
