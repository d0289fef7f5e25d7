package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"beautycrm/internal/domain"
)

const botSettingsID = 1

type BotSettingsRepository struct {
	db *gorm.DB
}

func NewBotSettingsRepository(db *gorm.DB) *BotSettingsRepository {
	return &BotSettingsRepository{db: db}
}

// Get returns the stored settings, or defaults when the row does not exist yet.
func (r *BotSettingsRepository) Get(ctx context.Context) (*domain.BotSettings, error) {
	var s domain.BotSettings
	err := r.db.WithContext(ctx).First(&s, botSettingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s = domain.BotSettings{ID: botSettingsID}
	} else if err != nil {
		return nil, err
	}
	s.Normalize()
	return &s, nil
}

func (r *BotSettingsRepository) Save(ctx context.Context, s *domain.BotSettings) error {
	s.ID = botSettingsID
	s.Normalize()
	return r.db.WithContext(ctx).Save(s).Error
}
