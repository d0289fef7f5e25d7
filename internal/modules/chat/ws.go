package chat

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"beautycrm/internal/middleware"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// WSHandler upgrades authenticated staff requests to a push channel. The
// channel is receive-only for clients: sending goes through the REST API.
type WSHandler struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewWSHandler restricts the Origin header to origins; an empty list
// accepts any origin.
func NewWSHandler(hub *Hub, origins []string) *WSHandler {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

func (h *WSHandler) Handle(c *gin.Context) {
	userID := middleware.UserID(c)
	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Warn("websocket upgrade failed", zap.Int64("user_id", userID), zap.Error(err))
		return
	}

	conn := h.hub.register(userID, ws)
	zap.L().Debug("internal chat connected", zap.Int64("user_id", userID))
	defer func() {
		h.hub.unregister(userID, conn)
		zap.L().Debug("internal chat disconnected", zap.Int64("user_id", userID))
	}()

	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go pingLoop(conn, done)

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Debug("internal chat read failed", zap.Int64("user_id", userID), zap.Error(err))
			}
			return
		}
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	}
}

func pingLoop(c *conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := c.ping(); err != nil {
				return
			}
		}
	}
}
