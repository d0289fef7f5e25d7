package catalog

import "time"

type ServiceRequest struct {
	Key      string   `json:"key" binding:"required"`
	Name     string   `json:"name" binding:"required"`
	NameRu   string   `json:"name_ru"`
	Price    float64  `json:"price" binding:"gte=0"`
	MinPrice *float64 `json:"min_price"`
	MaxPrice *float64 `json:"max_price"`
	Duration int      `json:"duration" binding:"gte=0"`
	Category string   `json:"category"`
	Benefits []string `json:"benefits"`
	IsActive *bool    `json:"is_active"`
}

// PackageRequest has no discount field: the discount is always derived from
// the two prices.
type PackageRequest struct {
	Name          string     `json:"name" binding:"required"`
	NameRu        string     `json:"name_ru"`
	Description   string     `json:"description"`
	ServiceKey    string     `json:"service_key"`
	OriginalPrice float64    `json:"original_price" binding:"required,gt=0"`
	SpecialPrice  float64    `json:"special_price" binding:"required,gt=0"`
	Currency      string     `json:"currency"`
	Keywords      []string   `json:"keywords"`
	PromoCode     string     `json:"promo_code"`
	ValidFrom     *time.Time `json:"valid_from"`
	ValidUntil    *time.Time `json:"valid_until"`
	MaxUsage      *int       `json:"max_usage"`
	IsActive      *bool      `json:"is_active"`
}
