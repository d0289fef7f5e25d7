package salonclient

import (
	"context"
	"slices"
	"sync"
	"time"
)

const DefaultPollInterval = 5 * time.Second

// ChatSource is the part of the API the chat poller reads. *Client
// satisfies it.
type ChatSource interface {
	ChatMessages(ctx context.Context, th Thread, sinceID int64) ([]Message, error)
	ChatUsers(ctx context.Context) ([]ChatUser, error)
}

// ChatUpdate carries only what changed since the previous round: messages
// newer than the last one seen, and the user list if it differs.
type ChatUpdate struct {
	Thread   Thread
	Messages []Message
	Users    []ChatUser
}

// ChatPoller refreshes the open chat thread and the user list on a fixed
// interval. Messages are fetched incrementally by id.
type ChatPoller struct {
	src      ChatSource
	interval time.Duration

	OnUpdate func(ChatUpdate)
	OnError  func(error)

	mu     sync.Mutex
	thread Thread
	lastID int64
	users  []ChatUser
}

func NewChatPoller(src ChatSource, th Thread, interval time.Duration) *ChatPoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &ChatPoller{src: src, thread: th, interval: interval}
}

// SetThread switches to another conversation; the next round fetches it
// from the start.
func (p *ChatPoller) SetThread(th Thread) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.thread != th {
		p.thread = th
		p.lastID = 0
	}
}

// LastID is the id of the newest message seen in the current thread.
func (p *ChatPoller) LastID() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastID
}

// Run polls until ctx is done and returns ctx.Err(). The first round runs
// immediately. Fetch errors go to OnError and polling continues.
func (p *ChatPoller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.Poll(ctx); err != nil && ctx.Err() == nil && p.OnError != nil {
			p.OnError(err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Poll runs one round. OnUpdate is called only when something is new.
func (p *ChatPoller) Poll(ctx context.Context) error {
	p.mu.Lock()
	th, since := p.thread, p.lastID
	p.mu.Unlock()

	msgs, msgErr := p.src.ChatMessages(ctx, th, since)
	users, userErr := p.src.ChatUsers(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var upd ChatUpdate
	p.mu.Lock()
	// The thread may have been switched while fetching.
	if msgErr == nil && p.thread == th && p.lastID == since {
		for _, m := range msgs {
			if m.ID > p.lastID {
				upd.Messages = append(upd.Messages, m)
				p.lastID = m.ID
			}
		}
	}
	if userErr == nil && !slices.Equal(users, p.users) {
		p.users = users
		upd.Users = slices.Clone(users)
	}
	upd.Thread = th
	p.mu.Unlock()

	if (len(upd.Messages) > 0 || upd.Users != nil) && p.OnUpdate != nil {
		p.OnUpdate(upd)
	}
	if msgErr != nil {
		return msgErr
	}
	return userErr
}
