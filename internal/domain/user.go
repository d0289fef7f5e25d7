package domain

import "time"

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleManager  UserRole = "manager"
	RoleSales    UserRole = "sales"
	RoleMarketer UserRole = "marketer"
	RoleEmployee UserRole = "employee"
)

var Roles = []UserRole{RoleAdmin, RoleManager, RoleSales, RoleMarketer, RoleEmployee}

func (r UserRole) Valid() bool {
	for _, v := range Roles {
		if v == r {
			return true
		}
	}
	return false
}

// User is a staff account.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:100;uniqueIndex;not null"`
	FullName     string    `json:"full_name" gorm:"size:255"`
	Email        string    `json:"email,omitempty" gorm:"size:255"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"`
	Role         UserRole  `json:"role" gorm:"size:20;not null;index"`
	Position     string    `json:"position,omitempty" gorm:"size:100"`
	IsActive     bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// UserPermission overrides the role default for one (resource, action).
type UserPermission struct {
	ID       int64  `json:"-" gorm:"primaryKey"`
	UserID   int64  `json:"user_id" gorm:"not null;uniqueIndex:idx_user_permission"`
	Resource string `json:"resource" gorm:"size:50;not null;uniqueIndex:idx_user_permission"`
	Action   string `json:"action" gorm:"size:20;not null;uniqueIndex:idx_user_permission"`
	Granted  bool   `json:"granted" gorm:"not null"`
}

func (UserPermission) TableName() string { return "user_permissions" }
