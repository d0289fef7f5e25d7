package domain

import (
	"errors"
	"math"
	"time"
)

var ErrInvalidPackagePrice = errors.New("special price must be positive and lower than the original price")

// SpecialPackage is a promotional bundle matched by the bot on keywords.
type SpecialPackage struct {
	ID              int64      `json:"id" gorm:"primaryKey"`
	Name            string     `json:"name" gorm:"size:255;not null"`
	NameRu          string     `json:"name_ru,omitempty" gorm:"size:255"`
	Description     string     `json:"description,omitempty" gorm:"type:text"`
	ServiceKey      string     `json:"service_key,omitempty" gorm:"size:100"`
	OriginalPrice   float64    `json:"original_price" gorm:"not null"`
	SpecialPrice    float64    `json:"special_price" gorm:"not null"`
	Currency        string     `json:"currency" gorm:"size:8;not null;default:'KZT'"`
	DiscountPercent int        `json:"discount_percent" gorm:"not null"`
	Keywords        []string   `json:"keywords,omitempty" gorm:"type:text;serializer:json"`
	PromoCode       string     `json:"promo_code,omitempty" gorm:"size:50"`
	ValidFrom       *time.Time `json:"valid_from,omitempty"`
	ValidUntil      *time.Time `json:"valid_until,omitempty"`
	UsageCount      int        `json:"usage_count" gorm:"not null;default:0"`
	MaxUsage        *int       `json:"max_usage,omitempty"`
	IsActive        bool       `json:"is_active" gorm:"not null;default:true"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (SpecialPackage) TableName() string { return "special_packages" }

// DiscountPercent derives the stored discount from the two prices.
func DiscountPercent(original, special float64) (int, error) {
	if original <= 0 || special <= 0 || special >= original {
		return 0, ErrInvalidPackagePrice
	}
	return int(math.Round((original - special) / original * 100)), nil
}

// Normalize validates prices and recomputes DiscountPercent; whatever the
// caller put in DiscountPercent is discarded.
func (p *SpecialPackage) Normalize() error {
	d, err := DiscountPercent(p.OriginalPrice, p.SpecialPrice)
	if err != nil {
		return err
	}
	if p.ValidFrom != nil && p.ValidUntil != nil && p.ValidUntil.Before(*p.ValidFrom) {
		return errors.New("valid_until must not be before valid_from")
	}
	if p.Currency == "" {
		p.Currency = "KZT"
	}
	p.DiscountPercent = d
	return nil
}

// AvailableAt reports whether the package can be offered at t.
func (p *SpecialPackage) AvailableAt(t time.Time) bool {
	if !p.IsActive {
		return false
	}
	if p.ValidFrom != nil && t.Before(*p.ValidFrom) {
		return false
	}
	if p.ValidUntil != nil && t.After(*p.ValidUntil) {
		return false
	}
	if p.MaxUsage != nil && p.UsageCount >= *p.MaxUsage {
		return false
	}
	return true
}
