package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"beautycrm/internal/domain"
	"beautycrm/internal/pkg/jwt"
	"beautycrm/internal/pkg/password"
)

// Service contains all business logic for staff authentication
type Service struct {
	users    UserRepositoryInterface
	tokens   tokenIssuer
	tokenTTL time.Duration
}

func NewService(users UserRepositoryInterface, tokens tokenIssuer, tokenTTL time.Duration) *Service {
	return &Service{users: users, tokens: tokens, tokenTTL: tokenTTL}
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*SessionResponse, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !password.Matches(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return s.issue(ctx, user)
}

// Refresh re-issues a token for an already authenticated user. The user is
// reloaded so the new token carries the current role.
func (s *Service) Refresh(ctx context.Context, userID int64) (*SessionResponse, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

func (s *Service) Me(ctx context.Context, userID int64) (*SessionResponse, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.session(ctx, user)
}

func (s *Service) load(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return user, nil
}

func (s *Service) issue(ctx context.Context, user *domain.User) (*SessionResponse, error) {
	resp, err := s.session(ctx, user)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.GenerateToken(user.ID, string(user.Role), jwt.KindStaff)
	if err != nil {
		return nil, err
	}
	resp.Token = token
	resp.ExpiresIn = int64(s.tokenTTL.Seconds())
	return resp, nil
}

func (s *Service) session(ctx context.Context, user *domain.User) (*SessionResponse, error) {
	overrides, err := s.users.ListPermissions(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &SessionResponse{
		User:        toUserPublic(user),
		Dashboard:   domain.DashboardPath(user.Role),
		Permissions: domain.EffectivePermissions(user.Role, overrides),
	}, nil
}
