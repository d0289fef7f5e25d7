package salonclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chatServer serves an in-memory thread over the real HTTP envelope.
type chatServer struct {
	mu       sync.Mutex
	messages []Message
	users    []ChatUser
	sinceIDs []string
	failNext bool
}

func (s *chatServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch r.URL.Path {
	case "/api/internal-chat/messages":
		if s.failNext {
			s.failNext = false
			writeErr(w, http.StatusInternalServerError, "INTERNAL_ERROR", "boom")
			return
		}
		s.sinceIDs = append(s.sinceIDs, r.URL.Query().Get("since_id"))
		since, _ := strconv.ParseInt(r.URL.Query().Get("since_id"), 10, 64)
		out := []Message{}
		for _, m := range s.messages {
			if m.ID > since {
				out = append(out, m)
			}
		}
		writeOK(w, http.StatusOK, map[string]any{"messages": out})
	case "/api/internal-chat/users":
		writeOK(w, http.StatusOK, map[string]any{"users": s.users})
	default:
		http.NotFound(w, r)
	}
}

func (s *chatServer) add(m Message) {
	s.mu.Lock()
	s.messages = append(s.messages, m)
	s.mu.Unlock()
}

func TestChatPoller_IncrementalAndFreshOnly(t *testing.T) {
	cs := &chatServer{
		messages: []Message{{ID: 1, Message: "hi"}, {ID: 2, Message: "there"}},
		users:    []ChatUser{{ID: 2, Username: "sales"}},
	}
	srv := httptest.NewServer(cs)
	defer srv.Close()

	var updates []ChatUpdate
	p := NewChatPoller(New(srv.URL), Thread{With: 2}, 0)
	p.OnUpdate = func(u ChatUpdate) { updates = append(updates, u) }
	assert.Equal(t, DefaultPollInterval, p.interval)

	ctx := context.Background()
	require.NoError(t, p.Poll(ctx))
	require.Len(t, updates, 1)
	assert.Len(t, updates[0].Messages, 2)
	assert.Len(t, updates[0].Users, 1)
	assert.Equal(t, int64(2), p.LastID())

	require.NoError(t, p.Poll(ctx))
	assert.Len(t, updates, 1, "nothing new, no callback")

	cs.add(Message{ID: 3, Message: "new"})
	require.NoError(t, p.Poll(ctx))
	require.Len(t, updates, 2)
	assert.Equal(t, []Message{{ID: 3, Message: "new"}}, updates[1].Messages)
	assert.Nil(t, updates[1].Users)

	assert.Equal(t, []string{"", "2", "2"}, cs.sinceIDs)
}

func TestChatPoller_UnreadChangeIsFresh(t *testing.T) {
	cs := &chatServer{users: []ChatUser{{ID: 2, Unread: 0}}}
	srv := httptest.NewServer(cs)
	defer srv.Close()

	var updates []ChatUpdate
	p := NewChatPoller(New(srv.URL), Thread{Group: true}, time.Second)
	p.OnUpdate = func(u ChatUpdate) { updates = append(updates, u) }

	require.NoError(t, p.Poll(context.Background()))
	cs.mu.Lock()
	cs.users = []ChatUser{{ID: 2, Unread: 1}}
	cs.mu.Unlock()
	require.NoError(t, p.Poll(context.Background()))

	require.Len(t, updates, 2)
	assert.Equal(t, int64(1), updates[1].Users[0].Unread)
}

func TestChatPoller_SetThreadResetsCursor(t *testing.T) {
	cs := &chatServer{messages: []Message{{ID: 5}}}
	srv := httptest.NewServer(cs)
	defer srv.Close()

	p := NewChatPoller(New(srv.URL), Thread{With: 2}, time.Second)
	require.NoError(t, p.Poll(context.Background()))
	assert.Equal(t, int64(5), p.LastID())

	p.SetThread(Thread{With: 2})
	assert.Equal(t, int64(5), p.LastID())
	p.SetThread(Thread{With: 3})
	assert.Zero(t, p.LastID())
}

func TestChatPoller_RunReportsErrorsAndStops(t *testing.T) {
	cs := &chatServer{failNext: true, messages: []Message{{ID: 1}}}
	srv := httptest.NewServer(cs)
	defer srv.Close()

	var (
		mu      sync.Mutex
		errs    []error
		gotMsgs bool
	)
	p := NewChatPoller(New(srv.URL), Thread{Group: true}, 10*time.Millisecond)
	p.OnError = func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}
	p.OnUpdate = func(u ChatUpdate) {
		mu.Lock()
		if len(u.Messages) > 0 {
			gotMsgs = true
		}
		mu.Unlock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return gotMsgs
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, errs, 1)
	var apiErr *APIError
	require.True(t, errors.As(errs[0], &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
}
