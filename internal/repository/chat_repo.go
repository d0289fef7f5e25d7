package repository

import (
	"context"

	"gorm.io/gorm"

	"beautycrm/internal/domain"
)

const defaultMessageLimit = 200

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Create(ctx context.Context, m *domain.InternalMessage) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// ListDirect returns the conversation between me and other, oldest first.
// sinceID > 0 limits the result to newer messages.
func (r *ChatRepository) ListDirect(ctx context.Context, me, other, sinceID int64, limit int) ([]domain.InternalMessage, error) {
	q := r.db.WithContext(ctx).
		Where("is_group = ?", false).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)", me, other, other, me)
	return r.page(q, sinceID, limit)
}

func (r *ChatRepository) ListGroup(ctx context.Context, sinceID int64, limit int) ([]domain.InternalMessage, error) {
	q := r.db.WithContext(ctx).Where("is_group = ?", true)
	return r.page(q, sinceID, limit)
}

func (r *ChatRepository) page(q *gorm.DB, sinceID int64, limit int) ([]domain.InternalMessage, error) {
	if sinceID > 0 {
		q = q.Where("id > ?", sinceID)
	}
	if limit <= 0 || limit > defaultMessageLimit {
		limit = defaultMessageLimit
	}

	var out []domain.InternalMessage
	if err := q.Order("id ASC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead marks messages from sender to recipient as read.
func (r *ChatRepository) MarkRead(ctx context.Context, recipient, sender int64) (int64, error) {
	tx := r.db.WithContext(ctx).Model(&domain.InternalMessage{}).
		Where("sender_id = ? AND recipient_id = ? AND is_group = ? AND is_read = ?", sender, recipient, false, false).
		Update("is_read", true)
	return tx.RowsAffected, tx.Error
}

// UnreadCounts groups unread direct messages for recipient by sender.
func (r *ChatRepository) UnreadCounts(ctx context.Context, recipient int64) (map[int64]int64, error) {
	var rows []struct {
		SenderID int64
		Count    int64
	}
	err := r.db.WithContext(ctx).Model(&domain.InternalMessage{}).
		Select("sender_id, COUNT(*) AS count").
		Where("recipient_id = ? AND is_group = ? AND is_read = ?", recipient, false, false).
		Group("sender_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[int64]int64, len(rows))
	for _, row := range rows {
		out[row.SenderID] = row.Count
	}
	return out, nil
}
