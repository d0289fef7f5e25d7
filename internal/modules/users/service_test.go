package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"beautycrm/internal/domain"
	"beautycrm/internal/pkg/password"
)

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	if args.Error(0) == nil {
		u.ID = 42
	}
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	u := *args.Get(0).(*domain.User)
	return &u, args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context, activeOnly bool) ([]domain.User, error) {
	args := m.Called(ctx, activeOnly)
	out, _ := args.Get(0).([]domain.User)
	return out, args.Error(1)
}

func (m *mockUserRepo) CountActiveByRole(ctx context.Context, role domain.UserRole) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUserRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockUserRepo) ListPermissions(ctx context.Context, userID int64) ([]domain.UserPermission, error) {
	args := m.Called(ctx, userID)
	out, _ := args.Get(0).([]domain.UserPermission)
	return out, args.Error(1)
}

func (m *mockUserRepo) SetPermission(ctx context.Context, p *domain.UserPermission) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockUserRepo) ReplacePermissions(ctx context.Context, userID int64, perms []domain.UserPermission) error {
	return m.Called(ctx, userID, perms).Error(0)
}

func TestService_Roles(t *testing.T) {
	svc := NewService(new(mockUserRepo))

	roles := svc.Roles()

	require.Len(t, roles, len(domain.Roles))
	for _, r := range roles {
		assert.Equal(t, domain.DashboardPath(r.Role), r.Dashboard)
		assert.True(t, r.Permissions.Allows(domain.ResourceChat, domain.ActionView), r.Role)
	}
	assert.Equal(t, "/marketer", roles[3].Dashboard)
}

func TestService_Create(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewService(repo)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	u, err := svc.Create(context.Background(), CreateUserRequest{
		Username: "aida", Password: "secret1", Role: "Sales",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(42), u.ID)
	assert.Equal(t, domain.RoleSales, u.Role)
	assert.True(t, password.Matches(u.PasswordHash, "secret1"))
}

func TestService_Create_Errors(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), CreateUserRequest{Username: "x", Password: "secret1", Role: "owner"})
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = svc.Create(context.Background(), CreateUserRequest{Username: "x", Password: "123", Role: "sales"})
	assert.ErrorIs(t, err, ErrValidation)

	repo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrDuplicate)
	_, err = svc.Create(context.Background(), CreateUserRequest{Username: "x", Password: "secret1", Role: "sales"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestService_Update_LastAdminCannotBeDemoted(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewService(repo)
	repo.On("GetByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1, Role: domain.RoleAdmin, IsActive: true}, nil)
	repo.On("CountActiveByRole", mock.Anything, domain.RoleAdmin).Return(int64(1), nil)

	role := "manager"
	_, err := svc.Update(context.Background(), 1, UpdateUserRequest{Role: &role})

	assert.ErrorIs(t, err, ErrLastAdmin)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestService_Update_Deactivate(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewService(repo)
	repo.On("GetByID", mock.Anything, int64(5)).Return(&domain.User{ID: 5, Role: domain.RoleSales, IsActive: true}, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool { return !u.IsActive })).Return(nil)

	off := false
	u, err := svc.Update(context.Background(), 5, UpdateUserRequest{IsActive: &off})

	require.NoError(t, err)
	assert.False(t, u.IsActive)
	repo.AssertNotCalled(t, "CountActiveByRole", mock.Anything, mock.Anything)
}

func TestService_Delete(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewService(repo)

	assert.ErrorIs(t, svc.Delete(context.Background(), 1, 1), ErrSelfDelete)

	repo.On("GetByID", mock.Anything, int64(2)).Return(&domain.User{ID: 2, Role: domain.RoleAdmin, IsActive: true}, nil)
	repo.On("CountActiveByRole", mock.Anything, domain.RoleAdmin).Return(int64(2), nil)
	repo.On("Delete", mock.Anything, int64(2)).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), 1, 2))
	repo.AssertExpectations(t)
}

func TestService_SetPermission(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewService(repo)
	repo.On("GetByID", mock.Anything, int64(7)).Return(&domain.User{ID: 7, Role: domain.RoleEmployee}, nil)
	repo.On("SetPermission", mock.Anything, &domain.UserPermission{UserID: 7, Resource: "bookings", Action: "edit", Granted: true}).Return(nil)
	repo.On("ListPermissions", mock.Anything, int64(7)).Return([]domain.UserPermission{
		{UserID: 7, Resource: "bookings", Action: "edit", Granted: true},
	}, nil)

	p, err := svc.SetPermission(context.Background(), 7, "bookings", "edit", true)

	require.NoError(t, err)
	assert.True(t, p.Permissions.Allows(domain.ResourceBookings, domain.ActionEdit))
	assert.False(t, p.Permissions.Allows(domain.ResourceBookings, domain.ActionDelete))

	_, err = svc.SetPermission(context.Background(), 7, "bookings", "approve", true)
	assert.ErrorIs(t, err, ErrInvalidPermission)
}

func TestService_ReplacePermissions_RejectsInvalidBeforeWriting(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewService(repo)

	_, err := svc.ReplacePermissions(context.Background(), 7, []PermissionEntry{
		{Resource: "bookings", Action: "view", Granted: false},
		{Resource: "wallet", Action: "view", Granted: true},
	})

	assert.ErrorIs(t, err, ErrInvalidPermission)
	repo.AssertNotCalled(t, "ReplacePermissions", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_ReplacePermissions_LastEntryWins(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewService(repo)
	repo.On("GetByID", mock.Anything, int64(7)).Return(&domain.User{ID: 7, Role: domain.RoleEmployee}, nil)
	repo.On("ReplacePermissions", mock.Anything, int64(7), []domain.UserPermission{
		{Resource: "clients", Action: "view", Granted: false},
	}).Return(nil)
	repo.On("ListPermissions", mock.Anything, int64(7)).Return([]domain.UserPermission{
		{UserID: 7, Resource: "clients", Action: "view", Granted: false},
	}, nil)

	p, err := svc.ReplacePermissions(context.Background(), 7, []PermissionEntry{
		{Resource: "clients", Action: "view", Granted: true},
		{Resource: "clients", Action: "view", Granted: false},
	})

	require.NoError(t, err)
	assert.False(t, p.Permissions.Allows(domain.ResourceClients, domain.ActionView))
	repo.AssertExpectations(t)
}
