package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"beautycrm/internal/domain"
)

const defaultLimit = 50

type Service struct {
	clients ClientRepository
}

func NewService(clients ClientRepository) *Service {
	return &Service{clients: clients}
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]domain.Client, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	return s.clients.Search(ctx, q.Search, limit, q.Offset)
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Client, error) {
	return s.clients.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, req ClientRequest) (*domain.Client, error) {
	c := &domain.Client{}
	if err := apply(c, req); err != nil {
		return nil, err
	}
	if err := s.clients.Create(ctx, c); err != nil {
		return nil, mapWriteErr(err)
	}
	return c, nil
}

// Update replaces the contact data; the cabinet password is kept.
func (s *Service) Update(ctx context.Context, id int64, req ClientRequest) (*domain.Client, error) {
	c, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(c, req); err != nil {
		return nil, err
	}
	if err := s.clients.Update(ctx, c); err != nil {
		return nil, mapWriteErr(err)
	}
	return c, nil
}

func apply(c *domain.Client, req ClientRequest) error {
	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		return fmt.Errorf("%w: display_name is required", ErrValidation)
	}
	phone := optional(req.Phone, domain.NormalizePhone)
	insta := optional(req.InstagramID, func(v string) string {
		return strings.TrimPrefix(strings.TrimSpace(v), "@")
	})
	if phone == nil && insta == nil {
		return ErrMissingContact
	}
	c.DisplayName = name
	c.Phone = phone
	c.InstagramID = insta
	return nil
}

// optional keeps empty values out of the unique columns.
func optional(v *string, norm func(string) string) *string {
	if v == nil {
		return nil
	}
	out := norm(*v)
	if out == "" {
		return nil
	}
	return &out
}

func mapWriteErr(err error) error {
	if errors.Is(err, domain.ErrDuplicate) {
		return ErrPhoneTaken
	}
	return err
}
