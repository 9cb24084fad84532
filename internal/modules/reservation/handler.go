package reservation

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"staybook/internal/domain"
	"staybook/internal/modules/booking"
	"staybook/internal/modules/inventory"
	"staybook/internal/modules/payment"
	"staybook/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type Handler struct {
	service *Service
	loggerf func(format string, args ...interface{})
}

func NewHandler(service *Service, loggerf func(format string, args ...interface{})) *Handler {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Handler{service: service, loggerf: loggerf}
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.PlaceBooking)
	rg.GET("/bookings", h.MyBookings)
	rg.GET("/bookings/:id", h.GetBooking)
	rg.POST("/bookings/:id/confirm", h.ConfirmPayment)
	rg.POST("/bookings/:id/cancel", h.CancelBooking)
}

// RegisterOpsRoutes mounts the refund endpoint; route-level role
// middleware keeps it off the guest surface.
func (h *Handler) RegisterOpsRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings/:id/refund", h.RefundBooking)
}

// RegisterWebhookRoutes mounts the provider callback; the group is
// expected to carry the shared-token middleware, not JWT.
func (h *Handler) RegisterWebhookRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments/webhook", h.PaymentWebhook)
}

func (h *Handler) PlaceBooking(c *gin.Context) {
	var payload createBookingPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	checkIn, err := time.ParseInLocation(dateLayout, payload.CheckIn, time.UTC)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "check_in must be YYYY-MM-DD")
		return
	}
	checkOut, err := time.ParseInLocation(dateLayout, payload.CheckOut, time.UTC)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "check_out must be YYYY-MM-DD")
		return
	}

	result, err := h.service.PlaceBooking(c.Request.Context(), PlaceBookingRequest{
		UserID:     currentUserID(c),
		RoomTypeID: payload.RoomTypeID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Rooms:      payload.Rooms,
		Guests:     payload.Guests,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

func (h *Handler) ConfirmPayment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := h.service.GetBooking(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	b, err = h.service.ConfirmPayment(c.Request.Context(), b.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) CancelBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var payload cancelBookingPayload
	_ = c.ShouldBindJSON(&payload)

	b, err := h.service.CancelBooking(c.Request.Context(), id, currentUserID(c), payload.Reason)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) RefundBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := h.service.RefundBooking(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := h.service.GetBooking(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) MyBookings(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	offset := 0
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			offset = (n - 1) * limit
		}
	}

	items, err := h.service.MyBookings(c.Request.Context(), currentUserID(c), limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": items})
}

// PaymentWebhook ingests intent status transitions from the provider.
// Always answers 200 on processed payloads so the provider stops
// redelivering.
func (h *Handler) PaymentWebhook(c *gin.Context) {
	var payload webhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid webhook payload")
		return
	}

	status := domain.PaymentIntentStatus(payload.Status)
	switch status {
	case domain.IntentSucceeded, domain.IntentFailed, domain.IntentCanceled, domain.IntentRequiresPayment:
	default:
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown intent status")
		return
	}

	if err := h.service.HandleIntentStatus(c.Request.Context(), payload.IntentID, status); err != nil {
		h.loggerf("level=error msg=webhook processing failed intent_id=%s err=%v", payload.IntentID, err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process webhook")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"received": true})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking request")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Not your booking")
	case errors.Is(err, inventory.ErrInsufficientInventory):
		response.Error(c, http.StatusConflict, "INSUFFICIENT_INVENTORY", "No rooms left for the selected dates")
	case errors.Is(err, inventory.ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid stay range")
	case errors.Is(err, payment.ErrPaymentDeclined):
		response.Error(c, http.StatusPaymentRequired, "PAYMENT_DECLINED", "Payment was declined")
	case errors.Is(err, ErrPaymentCancelled):
		response.Error(c, http.StatusConflict, "PAYMENT_CANCELLED", "Payment intent was cancelled")
	case errors.Is(err, ErrConfirmationTimeout):
		response.Error(c, http.StatusGatewayTimeout, "CONFIRMATION_TIMEOUT", "Payment confirmation timed out")
	case errors.Is(err, payment.ErrGatewayUnavailable):
		response.Error(c, http.StatusBadGateway, "GATEWAY_UNAVAILABLE", "Payment provider is unavailable")
	case errors.Is(err, booking.ErrInvalidTransition):
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", "Booking state does not allow this operation")
	case errors.Is(err, booking.ErrPaymentNotSettled):
		response.Error(c, http.StatusConflict, "PAYMENT_NOT_SETTLED", "Payment has not settled yet")
	default:
		h.loggerf("level=error msg=reservation request failed err=%v", err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return 0, false
	}
	return id, true
}

func currentUserID(c *gin.Context) int64 {
	if v, ok := c.Get("user_id"); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}
