package websocket

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"flashdeck/internal/models"
)

type staticTokens map[string]string

func (s staticTokens) ParseToken(token string) (string, error) {
	id, ok := s[token]
	if !ok {
		return "", errors.New("unknown token")
	}
	return id, nil
}

func dial(t *testing.T, srv *httptest.Server, token string) (*websocket.Conn, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?token=" + token
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Cleanup(func() { ws.Close() })
	}
	return ws, err
}

func TestHub_RejectsUnknownToken(t *testing.T) {
	hub := NewHub(staticTokens{}, zap.NewNop())
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer srv.Close()

	_, err := dial(t, srv, "nope")
	assert.Error(t, err)
}

func TestHub_DeliversToSessionPages(t *testing.T) {
	hub := NewHub(staticTokens{"t1": "s1", "t2": "s2"}, zap.NewNop())
	connected := make(chan string, 2)
	hub.OnConnect = func(id string) { connected <- id }

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer srv.Close()

	page1, err := dial(t, srv, "t1")
	require.NoError(t, err)
	page2, err := dial(t, srv, "t2")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		select {
		case <-connected:
		case <-time.After(2 * time.Second):
			t.Fatal("OnConnect was not called")
		}
	}
	assert.Equal(t, 1, hub.Connections("s1"))

	hub.SendToSession("s1", models.WSMessage{Type: "render", Payload: map[string]string{"card": "x"}})

	page1.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := page1.ReadMessage()
	require.NoError(t, err)
	var msg models.WSMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "render", msg.Type)

	page2.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = page2.ReadMessage()
	assert.Error(t, err, "other sessions must not receive the frame")
}
