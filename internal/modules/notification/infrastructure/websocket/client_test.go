package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeWs_EndToEndUnicast(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	userID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r, userID)
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// inbound messages are ignored
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("hello")))

	// registration is asynchronous; keep sending until the client is known
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	received := make(chan []byte, 1)
	go func() {
		_, body, err := conn.ReadMessage()
		if err == nil {
			received <- body
		}
	}()

	deadline := time.After(2 * time.Second)
	for {
		hub.SendToUser(userID, []byte("notify"))
		select {
		case body := <-received:
			assert.Equal(t, "notify", string(body))
			return
		case <-deadline:
			t.Fatal("no message received")
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func TestServeWs_UpgradeFailure(t *testing.T) {
	hub := NewHub(nil)
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	w := httptest.NewRecorder()

	ServeWs(hub, w, req, uuid.New())

	// Upgrade fails for normal HTTP request and upgrader writes bad request.
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
