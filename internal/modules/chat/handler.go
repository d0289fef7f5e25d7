package chat

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"beautycrm/internal/middleware"
	"beautycrm/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Users(c *gin.Context) {
	users, err := h.service.Users(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"users": users})
}

// Messages returns a thread. Clients poll it with since_id set to the last
// id they hold.
// @Summary  Internal chat messages
// @Tags     InternalChat
// @Param    with     query int  false "direct thread peer"
// @Param    group    query bool false "team thread"
// @Param    since_id query int  false "only newer messages"
// @Router   /internal-chat/messages [GET]
func (h *Handler) Messages(c *gin.Context) {
	var q MessagesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters")
		return
	}
	msgs, err := h.service.Messages(c.Request.Context(), middleware.UserID(c), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"messages": msgs})
}

func (h *Handler) Send(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "message is required")
		return
	}
	m, err := h.service.Send(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"message": m})
}

func (h *Handler) MarkRead(c *gin.Context) {
	other, err := strconv.ParseInt(c.Param("userID"), 10, 64)
	if err != nil || other <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}
	n, err := h.service.MarkRead(c.Request.Context(), middleware.UserID(c), other)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"marked": n})
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrEmptyMessage), errors.Is(err, ErrMessageTooLong),
		errors.Is(err, ErrNoRecipient), errors.Is(err, ErrSelfMessage):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrRecipientMissing):
		response.Error(c, http.StatusNotFound, "RECIPIENT_NOT_FOUND", "Recipient not found")
	default:
		zap.L().Error("internal chat request failed", zap.String("path", c.FullPath()), zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Request failed")
	}
}
