package catalog

import (
	"context"

	"beautycrm/internal/domain"
)

type ServiceRepository interface {
	List(ctx context.Context, activeOnly bool) ([]domain.Service, error)
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
	Create(ctx context.Context, s *domain.Service) error
	Update(ctx context.Context, s *domain.Service) error
	Delete(ctx context.Context, id int64) error
}

type PackageRepository interface {
	List(ctx context.Context, activeOnly bool) ([]domain.SpecialPackage, error)
	GetByID(ctx context.Context, id int64) (*domain.SpecialPackage, error)
	Create(ctx context.Context, p *domain.SpecialPackage) error
	Update(ctx context.Context, p *domain.SpecialPackage) error
	Delete(ctx context.Context, id int64) error
}
