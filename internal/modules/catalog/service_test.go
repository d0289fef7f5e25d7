package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"beautycrm/internal/cache"
	"beautycrm/internal/domain"
)

type mockServiceRepo struct{ mock.Mock }

func (m *mockServiceRepo) List(ctx context.Context, activeOnly bool) ([]domain.Service, error) {
	args := m.Called(ctx, activeOnly)
	out, _ := args.Get(0).([]domain.Service)
	return out, args.Error(1)
}

func (m *mockServiceRepo) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*domain.Service)
	return s, args.Error(1)
}

func (m *mockServiceRepo) Create(ctx context.Context, s *domain.Service) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockServiceRepo) Update(ctx context.Context, s *domain.Service) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockServiceRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockPackageRepo struct{ mock.Mock }

func (m *mockPackageRepo) List(ctx context.Context, activeOnly bool) ([]domain.SpecialPackage, error) {
	args := m.Called(ctx, activeOnly)
	out, _ := args.Get(0).([]domain.SpecialPackage)
	return out, args.Error(1)
}

func (m *mockPackageRepo) GetByID(ctx context.Context, id int64) (*domain.SpecialPackage, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*domain.SpecialPackage)
	return p, args.Error(1)
}

func (m *mockPackageRepo) Create(ctx context.Context, p *domain.SpecialPackage) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPackageRepo) Update(ctx context.Context, p *domain.SpecialPackage) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPackageRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockCache struct{ mock.Mock }

func (m *mockCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	args := m.Called(ctx, key, dst)
	return args.Bool(0), args.Error(1)
}

func (m *mockCache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	return m.Called(ctx, key, v, ttl).Error(0)
}

func (m *mockCache) Delete(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

var _ cache.Cache = (*mockCache)(nil)

func TestService_CreatePackage_DerivesDiscount(t *testing.T) {
	packages := new(mockPackageRepo)
	svc := NewService(new(mockServiceRepo), packages, cache.Noop{})
	packages.On("Create", mock.Anything, mock.Anything).Return(nil)

	p, err := svc.CreatePackage(context.Background(), PackageRequest{
		Name:          "Spring",
		OriginalPrice: 10000,
		SpecialPrice:  7500,
		Currency:      "kzt",
	})

	require.NoError(t, err)
	assert.Equal(t, 25, p.DiscountPercent)
	assert.Equal(t, "KZT", p.Currency)
	assert.True(t, p.IsActive)
}

func TestService_CreatePackage_RejectsSpecialNotBelowOriginal(t *testing.T) {
	packages := new(mockPackageRepo)
	svc := NewService(new(mockServiceRepo), packages, cache.Noop{})

	_, err := svc.CreatePackage(context.Background(), PackageRequest{Name: "Bad", OriginalPrice: 5000, SpecialPrice: 5000})

	assert.ErrorIs(t, err, ErrValidation)
	packages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_UpdatePackage_RecomputesDiscount(t *testing.T) {
	packages := new(mockPackageRepo)
	svc := NewService(new(mockServiceRepo), packages, cache.Noop{})
	packages.On("GetByID", mock.Anything, int64(3)).Return(&domain.SpecialPackage{ID: 3, DiscountPercent: 90, IsActive: true}, nil)
	packages.On("Update", mock.Anything, mock.Anything).Return(nil)

	p, err := svc.UpdatePackage(context.Background(), 3, PackageRequest{Name: "X", OriginalPrice: 3000, SpecialPrice: 2000})

	require.NoError(t, err)
	assert.Equal(t, 33, p.DiscountPercent)
}

func TestService_PublicServices_CachesResult(t *testing.T) {
	services := new(mockServiceRepo)
	c := new(mockCache)
	svc := NewService(services, new(mockPackageRepo), c)

	list := []domain.Service{{Key: "manicure", Name: "Manicure", IsActive: true}}
	c.On("Get", mock.Anything, publicServicesKey, mock.Anything).Return(false, nil).Once()
	services.On("List", mock.Anything, true).Return(list, nil).Once()
	c.On("Set", mock.Anything, publicServicesKey, list, publicServicesTTL).Return(nil).Once()

	got, err := svc.PublicServices(context.Background())

	require.NoError(t, err)
	assert.Equal(t, list, got)
	c.AssertExpectations(t)
	services.AssertExpectations(t)
}

func TestService_CreateService_InvalidatesCache(t *testing.T) {
	services := new(mockServiceRepo)
	c := new(mockCache)
	svc := NewService(services, new(mockPackageRepo), c)

	services.On("Create", mock.Anything, mock.Anything).Return(nil)
	c.On("Delete", mock.Anything, []string{publicServicesKey}).Return(nil)

	s, err := svc.CreateService(context.Background(), ServiceRequest{Key: "brows", Name: "Brows", Duration: 45})

	require.NoError(t, err)
	assert.Equal(t, 45, s.DurationMinutes())
	c.AssertExpectations(t)
}

func TestService_CreateService_DuplicateKey(t *testing.T) {
	services := new(mockServiceRepo)
	svc := NewService(services, new(mockPackageRepo), cache.Noop{})
	services.On("Create", mock.Anything, mock.Anything).Return(domain.ErrDuplicate)

	_, err := svc.CreateService(context.Background(), ServiceRequest{Key: "brows", Name: "Brows"})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestService_PublicPackages_FiltersUnavailable(t *testing.T) {
	packages := new(mockPackageRepo)
	svc := NewService(new(mockServiceRepo), packages, cache.Noop{})
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	past := now.Add(-time.Hour)
	limit := 5
	packages.On("List", mock.Anything, true).Return([]domain.SpecialPackage{
		{ID: 1, IsActive: true},
		{ID: 2, IsActive: true, ValidUntil: &past},
		{ID: 3, IsActive: true, MaxUsage: &limit, UsageCount: 5},
	}, nil)

	got, err := svc.PublicPackages(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
}
