package botsettings

import (
	"context"
	"errors"
	"strings"

	"beautycrm/internal/domain"
)

var ErrValidation = errors.New("validation error")

type Repository interface {
	Get(ctx context.Context) (*domain.BotSettings, error)
	Save(ctx context.Context, s *domain.BotSettings) error
}

// UpdateRequest is a partial update. max_message_length is the deprecated
// hundreds-of-characters field; it only matters when max_message_chars is
// unset.
type UpdateRequest struct {
	BotName          *string `json:"bot_name"`
	GreetingMessage  *string `json:"greeting_message"`
	MaxMessageChars  *int    `json:"max_message_chars" binding:"omitempty,min=0,max=10000"`
	MaxMessageLength *int    `json:"max_message_length" binding:"omitempty,min=0,max=100"`
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context) (*domain.BotSettings, error) {
	return s.repo.Get(ctx)
}

func (s *Service) Update(ctx context.Context, req UpdateRequest) (*domain.BotSettings, error) {
	cur, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if req.BotName != nil {
		cur.BotName = strings.TrimSpace(*req.BotName)
	}
	if req.GreetingMessage != nil {
		cur.GreetingMessage = *req.GreetingMessage
	}
	if req.MaxMessageLength != nil {
		if *req.MaxMessageLength < 0 {
			return nil, ErrValidation
		}
		cur.MaxMessageLength = *req.MaxMessageLength
		// a legacy-only update must not be shadowed by the stored chars value
		if req.MaxMessageChars == nil {
			cur.MaxMessageChars = 0
		}
	}
	if req.MaxMessageChars != nil {
		if *req.MaxMessageChars < 0 {
			return nil, ErrValidation
		}
		cur.MaxMessageChars = *req.MaxMessageChars
	}
	if err := s.repo.Save(ctx, cur); err != nil {
		return nil, err
	}
	return cur, nil
}
