package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"beautycrm/internal/domain"
)

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *ClientRepository) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	var c domain.Client
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *ClientRepository) GetByPhone(ctx context.Context, phone string) (*domain.Client, error) {
	var c domain.Client
	if err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search matches display name, phone and instagram id case-insensitively.
// Wildcards in term match literally.
func (r *ClientRepository) Search(ctx context.Context, term string, limit, offset int) ([]domain.Client, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term != "" && r.db.Dialector.Name() != "postgres" && !isASCII(term) {
		return r.searchFolded(ctx, term, limit, offset)
	}

	q := r.db.WithContext(ctx).Model(&domain.Client{})
	if term != "" {
		like := "%" + likeEscaper.Replace(term) + "%"
		q = q.Where(
			`LOWER(display_name) LIKE ? ESCAPE '\' OR LOWER(COALESCE(phone, '')) LIKE ? ESCAPE '\' OR LOWER(COALESCE(instagram_id, '')) LIKE ? ESCAPE '\'`,
			like, like, like,
		)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}

	var out []domain.Client
	if err := q.Order("id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// searchFolded filters in Go. SQLite's LOWER only folds ASCII, so
// Cyrillic names would otherwise match case-sensitively.
func (r *ClientRepository) searchFolded(ctx context.Context, term string, limit, offset int) ([]domain.Client, error) {
	var all []domain.Client
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&all).Error; err != nil {
		return nil, err
	}

	out := make([]domain.Client, 0)
	skipped := 0
	for _, c := range all {
		if !clientMatches(c, term) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, c)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func clientMatches(c domain.Client, term string) bool {
	fields := []string{c.DisplayName}
	if c.Phone != nil {
		fields = append(fields, *c.Phone)
	}
	if c.InstagramID != nil {
		fields = append(fields, *c.InstagramID)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func (r *ClientRepository) Update(ctx context.Context, c *domain.Client) error {
	tx := r.db.WithContext(ctx).Model(c).Select("*").Omit("created_at").Updates(c)
	if tx.Error != nil {
		return translate(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
