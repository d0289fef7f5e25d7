package analytics

import (
	"errors"
	"net/http"
	"strings"

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

// Funnel returns stage counts and conversion for a date range.
// @Summary  Client funnel
// @Tags     Analytics
// @Param    from query string false "YYYY-MM-DD"
// @Param    to   query string false "YYYY-MM-DD, inclusive"
// @Success  200 {object} FunnelReport
// @Router   /analytics/funnel [GET]
func (h *Handler) Funnel(c *gin.Context) {
	var q RangeQuery
	_ = c.ShouldBindQuery(&q)
	report, err := h.service.Funnel(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, report)
}

func (h *Handler) Summary(c *gin.Context) {
	var q RangeQuery
	_ = c.ShouldBindQuery(&q)
	report, err := h.service.Summary(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, report)
}

func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, ErrInvalidRange) {
		response.Error(c, http.StatusBadRequest, "INVALID_RANGE", strings.TrimPrefix(err.Error(), ErrInvalidRange.Error()+": "))
		return
	}
	zap.L().Error("analytics request failed", zap.String("path", c.FullPath()), zap.Error(err))
	response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to build report")
}
