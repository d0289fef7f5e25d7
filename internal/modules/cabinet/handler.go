package cabinet

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

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	session, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, session)
}

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

func (h *Handler) Me(c *gin.Context) {
	client, err := h.service.Me(c.Request.Context(), middleware.ClientID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"client": client})
}

func (h *Handler) Bookings(c *gin.Context) {
	bookings, err := h.service.Bookings(c.Request.Context(), middleware.ClientID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": bookings})
}

// AvailableSlots lists free start times for a day.
// @Summary  Free slots
// @Tags     Cabinet
// @Param    date    query string true  "YYYY-MM-DD"
// @Param    service query string false "service key"
// @Param    master  query string false "master name"
// @Success  200 {object} SlotsResponse
// @Router   /public/client/available-slots [GET]
func (h *Handler) AvailableSlots(c *gin.Context) {
	var q SlotsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "date is required")
		return
	}
	slots, err := h.service.AvailableSlots(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, slots)
}

func (h *Handler) Reschedule(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "date and time are required")
		return
	}

	b, err := h.service.Reschedule(c.Request.Context(), middleware.ClientID(c), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	b, err := h.service.Cancel(c.Request.Context(), middleware.ClientID(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", strings.TrimPrefix(err.Error(), ErrValidation.Error()+": "))
	case errors.Is(err, ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid phone or password")
	case errors.Is(err, ErrAlreadyRegistered):
		response.Error(c, http.StatusConflict, "PHONE_REGISTERED", "This phone is already registered")
	case errors.Is(err, ErrNotOwner), errors.Is(err, domain.ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
	case errors.Is(err, ErrNotReschedulable):
		response.Error(c, http.StatusUnprocessableEntity, "BOOKING_CLOSED", "Completed or cancelled bookings cannot be changed")
	case errors.Is(err, ErrSlotUnavailable):
		response.Error(c, http.StatusConflict, "SLOT_TAKEN", "Selected time is not available")
	case errors.Is(err, ErrConcurrentChange):
		response.Error(c, http.StatusConflict, "VERSION_CONFLICT", "Booking was changed meanwhile, reload and retry")
	default:
		zap.L().Error("cabinet request failed", zap.String("path", c.FullPath()), zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Request failed")
	}
}
