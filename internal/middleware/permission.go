package middleware

import (
	"context"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"beautycrm/internal/domain"
	"beautycrm/internal/pkg/response"
)

type PermissionLoader interface {
	ListPermissions(ctx context.Context, userID int64) ([]domain.UserPermission, error)
}

// RequirePermission must run after JWTAuth.
func RequirePermission(perms PermissionLoader, resource domain.Resource, action domain.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := Role(c)
		if role == "" {
			response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}

		var overrides []domain.UserPermission
		if role != domain.RoleAdmin {
			var err error
			overrides, err = perms.ListPermissions(c.Request.Context(), UserID(c))
			if err != nil {
				zap.L().Error("load permissions", zap.Int64("user_id", UserID(c)), zap.Error(err))
				response.Abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load permissions")
				return
			}
		}

		if !domain.EffectivePermissions(role, overrides).Allows(resource, action) {
			response.Abort(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
			return
		}
		c.Next()
	}
}

// RequireRole restricts a route to the listed roles.
func RequireRole(roles ...domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := Role(c)
		if role == "" {
			response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}
		if !slices.Contains(roles, role) {
			response.Abort(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
			return
		}
		c.Next()
	}
}
