package auth

import "beautycrm/internal/domain"

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserPublic struct {
	ID       int64           `json:"id"`
	Username string          `json:"username"`
	FullName string          `json:"full_name"`
	Email    string          `json:"email,omitempty"`
	Role     domain.UserRole `json:"role"`
	Position string          `json:"position,omitempty"`
}

// SessionResponse is what the dashboard needs after login: who the user is,
// where to send them and what they may do.
type SessionResponse struct {
	Token       string               `json:"token,omitempty"`
	ExpiresIn   int64                `json:"expires_in,omitempty"`
	User        UserPublic           `json:"user"`
	Dashboard   string               `json:"dashboard"`
	Permissions domain.PermissionSet `json:"permissions"`
}

func toUserPublic(u *domain.User) UserPublic {
	return UserPublic{
		ID:       u.ID,
		Username: u.Username,
		FullName: u.FullName,
		Email:    u.Email,
		Role:     u.Role,
		Position: u.Position,
	}
}
