package domain

import (
	"strings"
	"time"
)

type Client struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	InstagramID  *string   `json:"instagram_id,omitempty" gorm:"size:100;uniqueIndex"`
	DisplayName  string    `json:"display_name" gorm:"size:255"`
	Phone        *string   `json:"phone,omitempty" gorm:"size:32;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"size:255"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Client) TableName() string { return "clients" }

func (c *Client) PhoneValue() string {
	if c.Phone == nil {
		return ""
	}
	return *c.Phone
}

func (c *Client) HasCabinet() bool {
	return c.PasswordHash != ""
}

// NormalizePhone strips formatting so "+7 (777) 123-45-67" and
// "+77771234567" identify the same client.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(phone) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			continue
		}
		if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
