package chat

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beautycrm/internal/domain"
	"beautycrm/internal/middleware"
)

func wsServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws/:uid", func(c *gin.Context) {
		var id int64
		for _, ch := range c.Param("uid") {
			id = id*10 + int64(ch-'0')
		}
		c.Set(middleware.CtxUserID, id)
	}, NewWSHandler(hub, nil).Handle)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, uid string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + uid
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func TestHub_SendToUser_AllTabs(t *testing.T) {
	hub := NewHub()
	srv := wsServer(t, hub)

	tab1 := dial(t, srv, "7")
	tab2 := dial(t, srv, "7")
	require.Eventually(t, func() bool { return len(hub.snapshot(7)) == 2 }, time.Second, 10*time.Millisecond)

	ev := Event{Type: EventMessage, Message: &domain.InternalMessage{ID: 5, Message: "hi"}}
	assert.True(t, hub.SendToUser(7, ev))
	assert.False(t, hub.SendToUser(8, ev))

	for _, ws := range []*websocket.Conn{tab1, tab2} {
		var got Event
		_ = ws.SetReadDeadline(time.Now().Add(time.Second))
		require.NoError(t, ws.ReadJSON(&got))
		assert.Equal(t, int64(5), got.Message.ID)
	}
}

func TestHub_UnregisterOnClose(t *testing.T) {
	hub := NewHub()
	srv := wsServer(t, hub)

	ws := dial(t, srv, "3")
	require.Eventually(t, func() bool { return hub.IsOnline(3) }, time.Second, 10*time.Millisecond)

	_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = ws.Close()

	assert.Eventually(t, func() bool { return !hub.IsOnline(3) }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, hub.OnlineCount())
}

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub()
	srv := wsServer(t, hub)

	a := dial(t, srv, "1")
	b := dial(t, srv, "2")
	require.Eventually(t, func() bool { return hub.OnlineCount() == 2 }, time.Second, 10*time.Millisecond)

	hub.Broadcast(Event{Type: EventMessage, Message: &domain.InternalMessage{ID: 9, IsGroup: true}})

	for _, ws := range []*websocket.Conn{a, b} {
		var got Event
		_ = ws.SetReadDeadline(time.Now().Add(time.Second))
		require.NoError(t, ws.ReadJSON(&got))
		assert.True(t, got.Message.IsGroup)
	}
}
