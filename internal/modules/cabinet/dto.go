package cabinet

import "beautycrm/internal/domain"

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SessionResponse struct {
	Token  string         `json:"token"`
	Client *domain.Client `json:"client"`
}

type SlotsQuery struct {
	Date    string `form:"date" binding:"required"`
	Service string `form:"service"`
	Master  string `form:"master"`
}

type SlotsResponse struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

// RescheduleRequest carries the new start as date + HH:MM, the way the
// cabinet picker produces it.
type RescheduleRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}
