package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"flashdeck/internal/models"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// TokenParser resolves a page's viewer token to its session id.
type TokenParser interface {
	ParseToken(token string) (string, error)
}

// conn serialises writes; gorilla connections allow one writer at a time.
type conn struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
}

func (c *conn) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// Hub fans viewer frames out to every page attached to a session.
type Hub struct {
	mu          sync.RWMutex
	connections map[string][]*conn
	tokens      TokenParser
	log         *zap.Logger

	// OnConnect runs after a page attaches, so it can be sent a first frame.
	OnConnect func(sessionID string)
}

func NewHub(tokens TokenParser, log *zap.Logger) *Hub {
	return &Hub{
		connections: make(map[string][]*conn),
		tokens:      tokens,
		log:         log,
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Authenticate via token query param
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sessionID, err := h.tokens.ParseToken(tokenStr)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &conn{ws: ws}
	h.registerConnection(sessionID, c)
	if h.OnConnect != nil {
		h.OnConnect(sessionID)
	}

	// Keep connection alive and handle disconnect
	go func() {
		defer h.unregisterConnection(sessionID, c)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

func (h *Hub) registerConnection(sessionID string, c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[sessionID] = append(h.connections[sessionID], c)
	h.log.Debug("websocket connected",
		zap.String("session_id", sessionID),
		zap.Int("pages", len(h.connections[sessionID])))
}

func (h *Hub) unregisterConnection(sessionID string, c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c.ws.Close()

	conns := h.connections[sessionID]
	for i, existing := range conns {
		if existing == c {
			h.connections[sessionID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.connections[sessionID]) == 0 {
		delete(h.connections, sessionID)
	}

	h.log.Debug("websocket disconnected", zap.String("session_id", sessionID))
}

// Connections reports how many pages are attached to sessionID.
func (h *Hub) Connections(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[sessionID])
}

// CloseSession disconnects every page of sessionID.
func (h *Hub) CloseSession(sessionID string) {
	h.mu.RLock()
	conns := append([]*conn(nil), h.connections[sessionID]...)
	h.mu.RUnlock()

	for _, c := range conns {
		c.ws.Close()
	}
}

func (h *Hub) broadcast(sessionID string, data []byte) {
	h.mu.RLock()
	conns := append([]*conn(nil), h.connections[sessionID]...)
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.write(data); err != nil {
			h.log.Debug("websocket write failed", zap.String("session_id", sessionID), zap.Error(err))
		}
	}
}

// SendToSession sends msg to every page attached to sessionID.
func (h *Hub) SendToSession(sessionID string, msg models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("websocket message encode failed", zap.String("type", msg.Type), zap.Error(err))
		return
	}
	h.broadcast(sessionID, data)
}
