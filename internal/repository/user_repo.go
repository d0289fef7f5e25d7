package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"beautycrm/internal/domain"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserRepository) List(ctx context.Context, activeOnly bool) ([]domain.User, error) {
	q := r.db.WithContext(ctx)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var out []domain.User
	if err := q.Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *UserRepository) CountActiveByRole(ctx context.Context, role domain.UserRole) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("role = ? AND is_active = ?", role, true).
		Count(&n).Error
	return n, err
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	tx := r.db.WithContext(ctx).Model(u).Select("*").Omit("created_at").Updates(u)
	if tx.Error != nil {
		return translate(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the user together with their permission overrides.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&domain.UserPermission{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *UserRepository) ListPermissions(ctx context.Context, userID int64) ([]domain.UserPermission, error) {
	var out []domain.UserPermission
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&out).Error
	return out, err
}

var permissionConflict = clause.OnConflict{
	Columns:   []clause.Column{{Name: "user_id"}, {Name: "resource"}, {Name: "action"}},
	DoUpdates: clause.AssignmentColumns([]string{"granted"}),
}

// SetPermission upserts a single override.
func (r *UserRepository) SetPermission(ctx context.Context, p *domain.UserPermission) error {
	return r.db.WithContext(ctx).Clauses(permissionConflict).Create(p).Error
}

// ReplacePermissions swaps every override of the user in one transaction.
func (r *UserRepository) ReplacePermissions(ctx context.Context, userID int64, perms []domain.UserPermission) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&domain.UserPermission{}).Error; err != nil {
			return fmt.Errorf("clear permissions: %w", err)
		}
		if len(perms) == 0 {
			return nil
		}
		for i := range perms {
			perms[i].ID = 0
			perms[i].UserID = userID
		}
		if err := tx.Create(&perms).Error; err != nil {
			return fmt.Errorf("insert permissions: %w", err)
		}
		return nil
	})
}
