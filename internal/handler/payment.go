package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/movietime/ticket-booking/internal/booking"
	"github.com/movietime/ticket-booking/internal/repository"
)

// PaymentHandler receives payment provider callbacks and translates
// them into booking state transitions.  The endpoint is idempotent:
// replayed callbacks for a booking that already reached a terminal
// state are acknowledged without changing anything.
type PaymentHandler struct {
	Svc *booking.Service
}

func NewPaymentHandler(svc *booking.Service) *PaymentHandler {
	if svc == nil {
		panic("nil service passed to NewPaymentHandler")
	}
	return &PaymentHandler{Svc: svc}
}

type paymentWebhookReq struct {
	BookingID string `json:"booking_id"`
	Outcome   string `json:"outcome"` // success | failure
}

// Webhook handles POST /v1/payments/webhook.  A "success" outcome marks
// the booking PAID; a "failure" outcome releases the hold immediately
// instead of waiting for the expiry deadline.  If the hold expired
// before the success callback arrived, the customer must rebook and the
// provider is told so with a 409.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	var req paymentWebhookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.BookingID = strings.TrimSpace(req.BookingID)
	if req.BookingID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking_id is required"})
	}

	ctx := c.Request().Context()
	switch strings.ToLower(req.Outcome) {
	case "success":
		err := h.Svc.ConfirmPayment(ctx, req.BookingID)
		switch {
		case err == nil:
			return c.JSON(http.StatusOK, echo.Map{"status": "confirmed"})
		case errors.Is(err, booking.ErrAlreadyPaid):
			// replayed callback; nothing to do
			return c.JSON(http.StatusOK, echo.Map{"status": "confirmed"})
		case errors.Is(err, booking.ErrAlreadyExpired):
			return c.JSON(http.StatusConflict, echo.Map{"error": "hold expired, please rebook"})
		case errors.Is(err, repository.ErrBookingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to confirm payment"})
	case "failure":
		err := h.Svc.Expire(ctx, req.BookingID)
		switch {
		case err == nil:
			return c.JSON(http.StatusOK, echo.Map{"status": "released"})
		case errors.Is(err, booking.ErrAlreadyExpired):
			return c.JSON(http.StatusOK, echo.Map{"status": "released"})
		case errors.Is(err, booking.ErrAlreadyPaid):
			// a success callback won the race; report the real state
			return c.JSON(http.StatusOK, echo.Map{"status": "confirmed"})
		case errors.Is(err, repository.ErrBookingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to release booking"})
	}
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "outcome must be success or failure"})
}
