package domain

import "time"

// InternalMessage is a staff chat message: either direct (RecipientID set)
// or addressed to the whole team (IsGroup).
type InternalMessage struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	SenderID    int64     `json:"sender_id" gorm:"not null;index"`
	RecipientID *int64    `json:"recipient_id,omitempty" gorm:"index"`
	IsGroup     bool      `json:"is_group" gorm:"not null;default:false;index"`
	Message     string    `json:"message" gorm:"type:text;not null"`
	IsRead      bool      `json:"is_read" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at"`
}

func (InternalMessage) TableName() string { return "internal_messages" }

// InDirectThread reports whether m belongs to the conversation between me
// and other.
func (m *InternalMessage) InDirectThread(me, other int64) bool {
	if m.RecipientID == nil {
		return false
	}
	r := *m.RecipientID
	return (m.SenderID == me && r == other) || (m.SenderID == other && r == me)
}

// DirectThread keeps the messages exchanged between me and other, in input order.
func DirectThread(msgs []InternalMessage, me, other int64) []InternalMessage {
	out := make([]InternalMessage, 0)
	for i := range msgs {
		if msgs[i].InDirectThread(me, other) {
			out = append(out, msgs[i])
		}
	}
	return out
}

// GroupThread keeps the team-wide messages, in input order.
func GroupThread(msgs []InternalMessage) []InternalMessage {
	out := make([]InternalMessage, 0)
	for i := range msgs {
		if msgs[i].IsGroup {
			out = append(out, msgs[i])
		}
	}
	return out
}
