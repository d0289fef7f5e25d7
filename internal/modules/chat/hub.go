package chat

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeTimeout = 10 * time.Second

// conn serializes writes; gorilla connections allow one concurrent writer.
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteJSON(v)
}

func (c *conn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

// Hub tracks open websocket connections per staff user. A user may have
// several tabs open.
type Hub struct {
	mu    sync.RWMutex
	conns map[int64]map[*conn]struct{}
}

func NewHub() *Hub {
	return &Hub{conns: make(map[int64]map[*conn]struct{})}
}

func (h *Hub) register(userID int64, ws *websocket.Conn) *conn {
	c := &conn{ws: ws}
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.conns[userID]
	if !ok {
		set = make(map[*conn]struct{})
		h.conns[userID] = set
	}
	set[c] = struct{}{}
	return c
}

func (h *Hub) unregister(userID int64, c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.conns[userID]
	if !ok {
		return
	}
	if _, ok := set[c]; ok {
		delete(set, c)
		_ = c.ws.Close()
	}
	if len(set) == 0 {
		delete(h.conns, userID)
	}
}

func (h *Hub) snapshot(userID int64) []*conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*conn, 0, len(h.conns[userID]))
	for c := range h.conns[userID] {
		out = append(out, c)
	}
	return out
}

// SendToUser writes v to every connection of the user. It reports whether
// at least one write succeeded.
func (h *Hub) SendToUser(userID int64, v any) bool {
	delivered := false
	for _, c := range h.snapshot(userID) {
		if err := c.writeJSON(v); err != nil {
			zap.L().Debug("ws write failed", zap.Int64("user_id", userID), zap.Error(err))
			h.unregister(userID, c)
			continue
		}
		delivered = true
	}
	return delivered
}

func (h *Hub) Broadcast(v any) {
	h.mu.RLock()
	ids := make([]int64, 0, len(h.conns))
	for id := range h.conns {
		ids = append(ids, id)
	}
	h.mu.RUnlock()

	for _, id := range ids {
		h.SendToUser(id, v)
	}
}

func (h *Hub) IsOnline(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID]) > 0
}

func (h *Hub) OnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Close drops every connection; used on shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, set := range h.conns {
		for c := range set {
			_ = c.ws.Close()
		}
		delete(h.conns, id)
	}
}
