package chat

import (
	"context"

	"beautycrm/internal/domain"
)

type MessageRepository interface {
	Create(ctx context.Context, m *domain.InternalMessage) error
	ListDirect(ctx context.Context, me, other, sinceID int64, limit int) ([]domain.InternalMessage, error)
	ListGroup(ctx context.Context, sinceID int64, limit int) ([]domain.InternalMessage, error)
	MarkRead(ctx context.Context, recipient, sender int64) (int64, error)
	UnreadCounts(ctx context.Context, recipient int64) (map[int64]int64, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context, activeOnly bool) ([]domain.User, error)
}

// Publisher pushes events to connected websocket clients.
type Publisher interface {
	SendToUser(userID int64, v any) bool
	Broadcast(v any)
	IsOnline(userID int64) bool
}
