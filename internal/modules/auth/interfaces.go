package auth

import (
	"context"

	"beautycrm/internal/domain"
)

// UserRepositoryInterface holds only the methods the auth service uses.
type UserRepositoryInterface interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ListPermissions(ctx context.Context, userID int64) ([]domain.UserPermission, error)
}

type tokenIssuer interface {
	GenerateToken(userID int64, role, kind string) (string, error)
}
