package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"beautycrm/internal/domain"
	"beautycrm/internal/pkg/jwt"
	"beautycrm/internal/pkg/response"
)

// Context keys set by the auth middlewares.
const (
	CtxUserID   = "user_id"
	CtxRole     = "role"
	CtxClientID = "client_id"
)

type UserLoader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type ClientLoader interface {
	GetByID(ctx context.Context, id int64) (*domain.Client, error)
}

// JWTAuth authenticates staff. The token only identifies the user; the role
// is always re-read from storage so demotions and deactivations apply
// immediately.
func JWTAuth(tokens *jwt.Service, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseToken(c, tokens, jwt.KindStaff)
		if !ok {
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "User no longer exists")
				return
			}
			response.Abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load user")
			return
		}
		if !user.IsActive {
			response.Abort(c, http.StatusForbidden, "USER_INACTIVE", "User is deactivated")
			return
		}

		c.Set(CtxUserID, user.ID)
		c.Set(CtxRole, string(user.Role))
		c.Next()
	}
}

// ClientAuth authenticates client-cabinet tokens.
func ClientAuth(tokens *jwt.Service, clients ClientLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseToken(c, tokens, jwt.KindClient)
		if !ok {
			return
		}

		client, err := clients.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Client no longer exists")
				return
			}
			response.Abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load client")
			return
		}

		c.Set(CtxClientID, client.ID)
		c.Next()
	}
}

func parseToken(c *gin.Context, tokens *jwt.Service, kind string) (*jwt.Claims, bool) {
	raw := bearerToken(c)
	if raw == "" {
		response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing authorization token")
		return nil, false
	}

	claims, err := tokens.ValidateToken(raw)
	if err != nil || claims.Kind != kind {
		response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
		return nil, false
	}
	return claims, true
}

// bearerToken reads the Authorization header, falling back to ?token= for
// websocket upgrades where browsers cannot set headers.
func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return c.Query("token")
}

func UserID(c *gin.Context) int64 {
	return c.GetInt64(CtxUserID)
}

func Role(c *gin.Context) domain.UserRole {
	return domain.UserRole(c.GetString(CtxRole))
}

func ClientID(c *gin.Context) int64 {
	return c.GetInt64(CtxClientID)
}
