package domain

import "time"

// Service is a salon service from the price list.
type Service struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Key       string    `json:"key" gorm:"size:100;uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	NameRu    string    `json:"name_ru,omitempty" gorm:"size:255"`
	Price     float64   `json:"price"`
	MinPrice  *float64  `json:"min_price,omitempty"`
	MaxPrice  *float64  `json:"max_price,omitempty"`
	Duration  int       `json:"duration"`
	Category  string    `json:"category,omitempty" gorm:"size:100;index"`
	Benefits  []string  `json:"benefits,omitempty" gorm:"type:text;serializer:json"`
	IsActive  bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Service) TableName() string { return "services" }

// DurationMinutes falls back to the default slot length.
func (s *Service) DurationMinutes() int {
	if s == nil || s.Duration <= 0 {
		return DefaultBookingDuration
	}
	return s.Duration
}
