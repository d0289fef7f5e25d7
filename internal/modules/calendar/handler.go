package calendar

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"beautycrm/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Day returns the slot grid.
// @Summary  Calendar day
// @Tags     Calendar
// @Param    date   query string false "YYYY-MM-DD, default today"
// @Param    master query string false "master name"
// @Success  200 {object} DayView
// @Router   /calendar/day [GET]
func (h *Handler) Day(c *gin.Context) {
	view, err := h.service.Day(c.Request.Context(), c.Query("date"), c.Query("master"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

func (h *Handler) Week(c *gin.Context) {
	view, err := h.service.Week(c.Request.Context(), c.Query("start"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, ErrInvalidDate) {
		response.Error(c, http.StatusBadRequest, "INVALID_DATE", err.Error())
		return
	}
	zap.L().Error("calendar query failed", zap.Error(err))
	response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load calendar")
}
