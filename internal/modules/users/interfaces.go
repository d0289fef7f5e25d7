package users

import (
	"context"

	"beautycrm/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context, activeOnly bool) ([]domain.User, error)
	CountActiveByRole(ctx context.Context, role domain.UserRole) (int64, error)
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id int64) error

	ListPermissions(ctx context.Context, userID int64) ([]domain.UserPermission, error)
	SetPermission(ctx context.Context, p *domain.UserPermission) error
	ReplacePermissions(ctx context.Context, userID int64, perms []domain.UserPermission) error
}
