package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"beautycrm/internal/domain"
	"beautycrm/internal/pkg/password"
)

type Service struct {
	users UserRepository
}

func NewService(users UserRepository) *Service {
	return &Service{users: users}
}

// Roles lists every role with its default matrix and dashboard.
func (s *Service) Roles() []RoleInfo {
	out := make([]RoleInfo, 0, len(domain.Roles))
	for _, r := range domain.Roles {
		out = append(out, RoleInfo{
			Role:        r,
			Dashboard:   domain.DashboardPath(r),
			Permissions: domain.RolePermissions(r),
		})
	}
	return out
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]domain.User, error) {
	return s.users.List(ctx, activeOnly)
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateUserRequest) (*domain.User, error) {
	role := domain.UserRole(strings.ToLower(strings.TrimSpace(req.Role)))
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	hash, err := password.Hash(req.Password)
	if err != nil {
		if errors.Is(err, password.ErrTooShort) {
			return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, password.MinLength)
		}
		return nil, err
	}

	u := &domain.User{
		Username:     strings.TrimSpace(req.Username),
		FullName:     strings.TrimSpace(req.FullName),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
		Role:         role,
		Position:     req.Position,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	zap.L().Info("user created", zap.Int64("user_id", u.ID), zap.String("role", string(role)))
	return u, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateUserRequest) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	wasActiveAdmin := u.Role == domain.RoleAdmin && u.IsActive

	if req.FullName != nil {
		u.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Email != nil {
		u.Email = strings.TrimSpace(*req.Email)
	}
	if req.Position != nil {
		u.Position = *req.Position
	}
	if req.Role != nil {
		role := domain.UserRole(strings.ToLower(strings.TrimSpace(*req.Role)))
		if !role.Valid() {
			return nil, ErrInvalidRole
		}
		u.Role = role
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := password.Hash(*req.Password)
		if err != nil {
			if errors.Is(err, password.ErrTooShort) {
				return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, password.MinLength)
			}
			return nil, err
		}
		u.PasswordHash = hash
	}

	if wasActiveAdmin && !(u.Role == domain.RoleAdmin && u.IsActive) {
		if err := s.ensureAnotherAdmin(ctx); err != nil {
			return nil, err
		}
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return ErrSelfDelete
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u.Role == domain.RoleAdmin && u.IsActive {
		if err := s.ensureAnotherAdmin(ctx); err != nil {
			return err
		}
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	zap.L().Info("user deleted", zap.Int64("user_id", id), zap.Int64("by", actorID))
	return nil
}

func (s *Service) ensureAnotherAdmin(ctx context.Context) error {
	n, err := s.users.CountActiveByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return err
	}
	if n <= 1 {
		return ErrLastAdmin
	}
	return nil
}

/* ---------- PERMISSIONS ---------- */

func (s *Service) Permissions(ctx context.Context, id int64) (*PermissionsResponse, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	overrides, err := s.users.ListPermissions(ctx, id)
	if err != nil {
		return nil, err
	}
	if overrides == nil {
		overrides = []domain.UserPermission{}
	}
	return &PermissionsResponse{
		UserID:      u.ID,
		Role:        u.Role,
		Permissions: domain.EffectivePermissions(u.Role, overrides),
		Overrides:   overrides,
	}, nil
}

// SetPermission toggles a single (resource, action) override.
func (s *Service) SetPermission(ctx context.Context, id int64, resource, action string, granted bool) (*PermissionsResponse, error) {
	r, a := domain.Resource(resource), domain.Action(action)
	if !r.Valid() || !a.Valid() {
		return nil, ErrInvalidPermission
	}
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return nil, err
	}
	p := &domain.UserPermission{UserID: id, Resource: string(r), Action: string(a), Granted: granted}
	if err := s.users.SetPermission(ctx, p); err != nil {
		return nil, err
	}
	return s.Permissions(ctx, id)
}

// ReplacePermissions swaps the whole override set at once. Nothing is
// written when any entry is invalid.
func (s *Service) ReplacePermissions(ctx context.Context, id int64, entries []PermissionEntry) (*PermissionsResponse, error) {
	perms := make([]domain.UserPermission, 0, len(entries))
	seen := make(map[string]int, len(entries))
	for _, e := range entries {
		r, a := domain.Resource(e.Resource), domain.Action(e.Action)
		if !r.Valid() || !a.Valid() {
			return nil, fmt.Errorf("%w: %s.%s", ErrInvalidPermission, e.Resource, e.Action)
		}
		key := e.Resource + "." + e.Action
		if i, dup := seen[key]; dup {
			perms[i].Granted = e.Granted
			continue
		}
		seen[key] = len(perms)
		perms = append(perms, domain.UserPermission{Resource: string(r), Action: string(a), Granted: e.Granted})
	}
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.users.ReplacePermissions(ctx, id, perms); err != nil {
		return nil, err
	}
	return s.Permissions(ctx, id)
}
