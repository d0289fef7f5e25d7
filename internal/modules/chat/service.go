package chat

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"beautycrm/internal/domain"
)

type Service struct {
	messages MessageRepository
	users    UserRepository
	pub      Publisher
}

// NewService wires the chat; pub may be nil when websocket push is off.
func NewService(messages MessageRepository, users UserRepository, pub Publisher) *Service {
	return &Service{messages: messages, users: users, pub: pub}
}

// Users lists active staff except me with unread counters.
func (s *Service) Users(ctx context.Context, me int64) ([]ChatUser, error) {
	all, err := s.users.List(ctx, true)
	if err != nil {
		return nil, err
	}
	unread, err := s.messages.UnreadCounts(ctx, me)
	if err != nil {
		return nil, err
	}

	out := make([]ChatUser, 0, len(all))
	for _, u := range all {
		if u.ID == me {
			continue
		}
		out = append(out, ChatUser{
			ID:       u.ID,
			Username: u.Username,
			FullName: u.FullName,
			Role:     u.Role,
			Position: u.Position,
			Unread:   unread[u.ID],
			Online:   s.pub != nil && s.pub.IsOnline(u.ID),
		})
	}
	return out, nil
}

// Messages returns the group thread or the direct thread with q.With, oldest
// first, limited to ids above q.SinceID.
func (s *Service) Messages(ctx context.Context, me int64, q MessagesQuery) ([]domain.InternalMessage, error) {
	var (
		msgs []domain.InternalMessage
		err  error
	)
	switch {
	case q.Group:
		msgs, err = s.messages.ListGroup(ctx, q.SinceID, q.Limit)
	case q.With > 0:
		msgs, err = s.messages.ListDirect(ctx, me, q.With, q.SinceID, q.Limit)
	default:
		return nil, ErrNoRecipient
	}
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []domain.InternalMessage{}
	}
	return msgs, nil
}

func (s *Service) Send(ctx context.Context, me int64, req SendRequest) (*domain.InternalMessage, error) {
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return nil, ErrMessageTooLong
	}

	m := &domain.InternalMessage{SenderID: me, Message: text, IsGroup: req.IsGroup}
	if !req.IsGroup {
		if req.RecipientID == nil || *req.RecipientID <= 0 {
			return nil, ErrNoRecipient
		}
		rid := *req.RecipientID
		if rid == me {
			return nil, ErrSelfMessage
		}
		u, err := s.users.GetByID(ctx, rid)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, ErrRecipientMissing
			}
			return nil, err
		}
		if !u.IsActive {
			return nil, ErrRecipientMissing
		}
		m.RecipientID = &rid
	}

	if err := s.messages.Create(ctx, m); err != nil {
		return nil, err
	}
	s.push(m)
	return m, nil
}

// MarkRead marks the direct messages from other to me as read.
func (s *Service) MarkRead(ctx context.Context, me, other int64) (int64, error) {
	n, err := s.messages.MarkRead(ctx, me, other)
	if err != nil {
		return 0, err
	}
	if n > 0 && s.pub != nil {
		s.pub.SendToUser(other, Event{Type: EventRead, ReaderID: me})
	}
	return n, nil
}

func (s *Service) push(m *domain.InternalMessage) {
	if s.pub == nil {
		return
	}
	ev := Event{Type: EventMessage, Message: m}
	if m.IsGroup {
		s.pub.Broadcast(ev)
		return
	}
	s.pub.SendToUser(m.SenderID, ev)
	if !s.pub.SendToUser(*m.RecipientID, ev) {
		zap.L().Debug("chat recipient offline, message left for polling",
			zap.Int64("recipient_id", *m.RecipientID), zap.Int64("message_id", m.ID))
	}
}
