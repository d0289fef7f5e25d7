package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"beautycrm/internal/cache"
	"beautycrm/internal/domain"
)

const (
	publicServicesKey = "public:services"
	publicPackagesKey = "public:packages"
	publicServicesTTL = 10 * time.Minute
	publicPackagesTTL = time.Minute
)

type Service struct {
	services ServiceRepository
	packages PackageRepository
	cache    cache.Cache
	now      func() time.Time
}

func NewService(services ServiceRepository, packages PackageRepository, c cache.Cache) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	return &Service{services: services, packages: packages, cache: c, now: time.Now}
}

/* ---------- SERVICES ---------- */

func (s *Service) ListServices(ctx context.Context) ([]domain.Service, error) {
	return s.services.List(ctx, false)
}

// PublicServices is the active price list for the site, served from cache
// when possible.
func (s *Service) PublicServices(ctx context.Context) ([]domain.Service, error) {
	var out []domain.Service
	if hit, err := s.cache.Get(ctx, publicServicesKey, &out); err != nil {
		zap.L().Warn("cache read failed", zap.String("key", publicServicesKey), zap.Error(err))
	} else if hit {
		return out, nil
	}

	out, err := s.services.List(ctx, true)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, publicServicesKey, out, publicServicesTTL); err != nil {
		zap.L().Warn("cache write failed", zap.String("key", publicServicesKey), zap.Error(err))
	}
	return out, nil
}

func (s *Service) CreateService(ctx context.Context, req ServiceRequest) (*domain.Service, error) {
	svc := &domain.Service{IsActive: true}
	if err := applyService(svc, req); err != nil {
		return nil, err
	}
	if err := s.services.Create(ctx, svc); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, ErrDuplicateKey
		}
		return nil, err
	}
	s.invalidate(ctx, publicServicesKey)
	return svc, nil
}

func (s *Service) UpdateService(ctx context.Context, id int64, req ServiceRequest) (*domain.Service, error) {
	svc, err := s.services.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyService(svc, req); err != nil {
		return nil, err
	}
	if err := s.services.Update(ctx, svc); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, ErrDuplicateKey
		}
		return nil, err
	}
	s.invalidate(ctx, publicServicesKey)
	return svc, nil
}

func (s *Service) DeleteService(ctx context.Context, id int64) error {
	if err := s.services.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, publicServicesKey)
	return nil
}

func applyService(svc *domain.Service, req ServiceRequest) error {
	key := strings.TrimSpace(req.Key)
	name := strings.TrimSpace(req.Name)
	if key == "" || name == "" {
		return fmt.Errorf("%w: key and name are required", ErrValidation)
	}
	if req.MinPrice != nil && req.MaxPrice != nil && *req.MinPrice > *req.MaxPrice {
		return fmt.Errorf("%w: min_price must not exceed max_price", ErrValidation)
	}

	svc.Key = key
	svc.Name = name
	svc.NameRu = req.NameRu
	svc.Price = req.Price
	svc.MinPrice = req.MinPrice
	svc.MaxPrice = req.MaxPrice
	svc.Duration = req.Duration
	svc.Category = req.Category
	svc.Benefits = req.Benefits
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}
	return nil
}

/* ---------- SPECIAL PACKAGES ---------- */

func (s *Service) ListPackages(ctx context.Context) ([]domain.SpecialPackage, error) {
	return s.packages.List(ctx, false)
}

// PublicPackages returns packages that can be offered right now.
func (s *Service) PublicPackages(ctx context.Context) ([]domain.SpecialPackage, error) {
	var out []domain.SpecialPackage
	if hit, err := s.cache.Get(ctx, publicPackagesKey, &out); err == nil && hit {
		return out, nil
	}

	all, err := s.packages.List(ctx, true)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out = make([]domain.SpecialPackage, 0, len(all))
	for _, p := range all {
		if p.AvailableAt(now) {
			out = append(out, p)
		}
	}
	if err := s.cache.Set(ctx, publicPackagesKey, out, publicPackagesTTL); err != nil {
		zap.L().Warn("cache write failed", zap.String("key", publicPackagesKey), zap.Error(err))
	}
	return out, nil
}

func (s *Service) CreatePackage(ctx context.Context, req PackageRequest) (*domain.SpecialPackage, error) {
	p := &domain.SpecialPackage{IsActive: true}
	if err := applyPackage(p, req); err != nil {
		return nil, err
	}
	if err := s.packages.Create(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx, publicPackagesKey)
	return p, nil
}

func (s *Service) UpdatePackage(ctx context.Context, id int64, req PackageRequest) (*domain.SpecialPackage, error) {
	p, err := s.packages.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyPackage(p, req); err != nil {
		return nil, err
	}
	if err := s.packages.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx, publicPackagesKey)
	return p, nil
}

func (s *Service) DeletePackage(ctx context.Context, id int64) error {
	if err := s.packages.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, publicPackagesKey)
	return nil
}

func applyPackage(p *domain.SpecialPackage, req PackageRequest) error {
	p.Name = strings.TrimSpace(req.Name)
	p.NameRu = req.NameRu
	p.Description = req.Description
	p.ServiceKey = req.ServiceKey
	p.OriginalPrice = req.OriginalPrice
	p.SpecialPrice = req.SpecialPrice
	p.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	p.Keywords = req.Keywords
	p.PromoCode = req.PromoCode
	p.ValidFrom = req.ValidFrom
	p.ValidUntil = req.ValidUntil
	p.MaxUsage = req.MaxUsage
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if err := p.Normalize(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, key string) {
	if err := s.cache.Delete(ctx, key); err != nil {
		zap.L().Warn("cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}
