package websocket

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	hub := NewHub(0, nil, logger)
	go hub.Run()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		HandleWebSocket(hub, ClientOptions{}, w, r)
	}))
	t.Cleanup(func() {
		srv.Close()
		hub.Stop()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_WelcomeAndPublish(t *testing.T) {
	hub, srv := newTestHub(t)
	conn := dial(t, srv)

	welcome := readMessage(t, conn)
	assert.Equal(t, MessageTypeConnection, welcome.Type)
	assert.Equal(t, "connected", welcome.Data["status"])
	assert.NotEmpty(t, welcome.Data["client_id"])

	hub.Publish(MessageTypeCategoriesUpdated, map[string]interface{}{"workspace_id": "ws1"})
	event := readMessage(t, conn)
	assert.Equal(t, MessageTypeCategoriesUpdated, event.Type)
	assert.Equal(t, "ws1", event.Data["workspace_id"])
	assert.False(t, event.Timestamp.IsZero())

	assert.Eventually(t, func() bool { return hub.GetStats().MessagesSent >= 1 }, time.Second, 10*time.Millisecond)
}

func TestHub_PingPong(t *testing.T) {
	_, srv := newTestHub(t)
	conn := dial(t, srv)
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(Message{Type: "ping"}))
	assert.Equal(t, MessageTypePong, readMessage(t, conn).Type)
}

func TestHub_ClientLifecycle(t *testing.T) {
	hub, srv := newTestHub(t)
	conn := dial(t, srv)
	readMessage(t, conn)

	assert.Eventually(t, func() bool { return hub.GetClientCount() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(1), hub.GetStats().TotalConnections)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.GetClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_StopClosesClients(t *testing.T) {
	hub, srv := newTestHub(t)
	conn := dial(t, srv)
	readMessage(t, conn)

	hub.Stop()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Eventually(t, func() bool { return hub.GetClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestFleetEventMessage(t *testing.T) {
	msg := FleetEventMessage(MessageTypeSyncCompleted, nil)
	assert.NotNil(t, msg.Data)

	var decoded Message
	require.NoError(t, json.Unmarshal(msg.ToJSON(), &decoded))
	assert.Equal(t, MessageTypeSyncCompleted, decoded.Type)
	assert.WithinDuration(t, msg.Timestamp, decoded.Timestamp, time.Millisecond)
}
