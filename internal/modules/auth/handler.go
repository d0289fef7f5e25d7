package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"beautycrm/internal/domain"
	"beautycrm/internal/middleware"
	"beautycrm/internal/pkg/response"
)

// Handler manages all HTTP interactions for staff authentication
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(api *gin.RouterGroup) {
	api.POST("/auth/login", h.Login)
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	protected.POST("/auth/refresh", h.Refresh)
	protected.GET("/auth/me", h.Me)
}

// Login authenticates a staff member.
// @Summary  Staff login
// @Tags     Auth
// @Param    request body LoginRequest true "username and password"
// @Success  200 {object} SessionResponse
// @Failure  401 {object} map[string]interface{}
// @Router   /auth/login [POST]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	session, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, session)
}

func (h *Handler) Refresh(c *gin.Context) {
	session, err := h.service.Refresh(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, session)
}

func (h *Handler) Me(c *gin.Context) {
	session, err := h.service.Me(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, session)
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
	case errors.Is(err, ErrUserInactive):
		response.Error(c, http.StatusForbidden, "USER_INACTIVE", "User is deactivated")
	case errors.Is(err, domain.ErrNotFound):
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User no longer exists")
	default:
		zap.L().Error("auth failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Authentication failed")
	}
}
