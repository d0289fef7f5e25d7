package chat

import "beautycrm/internal/domain"

const MaxMessageLength = 4000

type ChatUser struct {
	ID       int64           `json:"id"`
	Username string          `json:"username"`
	FullName string          `json:"full_name"`
	Role     domain.UserRole `json:"role"`
	Position string          `json:"position,omitempty"`
	Unread   int64           `json:"unread"`
	Online   bool            `json:"online"`
}

type MessagesQuery struct {
	With    int64 `form:"with" binding:"omitempty,min=1"`
	Group   bool  `form:"group"`
	SinceID int64 `form:"since_id" binding:"omitempty,min=0"`
	Limit   int   `form:"limit" binding:"omitempty,min=1,max=200"`
}

type SendRequest struct {
	RecipientID *int64 `json:"recipient_id"`
	IsGroup     bool   `json:"is_group"`
	Message     string `json:"message" binding:"required"`
}

// Event is the websocket frame pushed to clients.
type Event struct {
	Type     string                  `json:"type"`
	Message  *domain.InternalMessage `json:"message,omitempty"`
	ReaderID int64                   `json:"reader_id,omitempty"`
}

const (
	EventMessage = "message"
	EventRead    = "read"
)
