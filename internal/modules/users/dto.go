package users

import "beautycrm/internal/domain"

type CreateUserRequest struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name"`
	Email    string `json:"email" binding:"omitempty,email"`
	Role     string `json:"role" binding:"required"`
	Position string `json:"position"`
}

// UpdateUserRequest leaves nil fields untouched. An empty password is ignored.
type UpdateUserRequest struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Role     *string `json:"role"`
	Position *string `json:"position"`
	Password *string `json:"password"`
	IsActive *bool   `json:"is_active"`
}

type TogglePermissionRequest struct {
	Granted *bool `json:"granted" binding:"required"`
}

type PermissionEntry struct {
	Resource string `json:"resource" binding:"required"`
	Action   string `json:"action" binding:"required"`
	Granted  bool   `json:"granted"`
}

type ReplacePermissionsRequest struct {
	Permissions []PermissionEntry `json:"permissions" binding:"dive"`
}

type RoleInfo struct {
	Role        domain.UserRole      `json:"role"`
	Dashboard   string               `json:"dashboard"`
	Permissions domain.PermissionSet `json:"permissions"`
}

type PermissionsResponse struct {
	UserID      int64                   `json:"user_id"`
	Role        domain.UserRole         `json:"role"`
	Permissions domain.PermissionSet    `json:"permissions"`
	Overrides   []domain.UserPermission `json:"overrides"`
}
