package users

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"beautycrm/internal/domain"
	"beautycrm/internal/middleware"
	"beautycrm/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Roles(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"roles": h.service.Roles()})
}

func (h *Handler) List(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	list, err := h.service.List(c.Request.Context(), activeOnly)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"users": list})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	u, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": u})
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	u, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"user": u})
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	u, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": u})
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) Permissions(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	p, err := h.service.Permissions(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// SetPermission toggles one permission of a user.
// @Summary  Toggle user permission
// @Tags     Users
// @Param    id       path int    true "user id"
// @Param    resource path string true "resource"
// @Param    action   path string true "view|create|edit|delete"
// @Success  200 {object} map[string]interface{}
// @Router   /users/{id}/permissions/{resource}/{action} [PUT]
func (h *Handler) SetPermission(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	var req TogglePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "granted is required")
		return
	}
	p, err := h.service.SetPermission(c.Request.Context(), id, c.Param("resource"), c.Param("action"), *req.Granted)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

func (h *Handler) ReplacePermissions(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	var req ReplacePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	p, err := h.service.ReplacePermissions(c.Request.Context(), id, req.Permissions)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

func userID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", strings.TrimPrefix(err.Error(), ErrValidation.Error()+": "))
	case errors.Is(err, ErrInvalidRole):
		response.Error(c, http.StatusBadRequest, "INVALID_ROLE", "Unknown role")
	case errors.Is(err, ErrInvalidPermission):
		response.Error(c, http.StatusBadRequest, "INVALID_PERMISSION", err.Error())
	case errors.Is(err, ErrUsernameTaken):
		response.Error(c, http.StatusConflict, "USERNAME_TAKEN", "Username already taken")
	case errors.Is(err, ErrSelfDelete):
		response.Error(c, http.StatusBadRequest, "SELF_DELETE", "You cannot delete your own account")
	case errors.Is(err, ErrLastAdmin):
		response.Error(c, http.StatusConflict, "LAST_ADMIN", "At least one active admin must remain")
	case errors.Is(err, domain.ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
	default:
		zap.L().Error("user request failed", zap.String("path", c.FullPath()), zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Request failed")
	}
}
