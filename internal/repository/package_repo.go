package repository

import (
	"context"

	"gorm.io/gorm"

	"beautycrm/internal/domain"
)

type PackageRepository struct {
	db *gorm.DB
}

func NewPackageRepository(db *gorm.DB) *PackageRepository {
	return &PackageRepository{db: db}
}

func (r *PackageRepository) List(ctx context.Context, activeOnly bool) ([]domain.SpecialPackage, error) {
	q := r.db.WithContext(ctx)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var out []domain.SpecialPackage
	if err := q.Order("id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PackageRepository) GetByID(ctx context.Context, id int64) (*domain.SpecialPackage, error) {
	var p domain.SpecialPackage
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *PackageRepository) Create(ctx context.Context, p *domain.SpecialPackage) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *PackageRepository) Update(ctx context.Context, p *domain.SpecialPackage) error {
	tx := r.db.WithContext(ctx).Model(p).Select("*").Omit("created_at", "usage_count").Updates(p)
	if tx.Error != nil {
		return translate(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PackageRepository) Delete(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Delete(&domain.SpecialPackage{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
