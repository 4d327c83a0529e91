package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/movietime/ticket-booking/internal/booking"
	"github.com/movietime/ticket-booking/internal/model"
	"github.com/movietime/ticket-booking/internal/repository"
)

// bookingView is the JSON shape of a booking returned to customers.
type bookingView struct {
	ID          string     `json:"id"`
	ShowID      uint64     `json:"show_id"`
	Seats       []string   `json:"seats"`
	AmountCents uint32     `json:"amount_cents"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
}

func toBookingView(b *model.Booking) bookingView {
	return bookingView{
		ID:          b.ID,
		ShowID:      b.ShowID,
		Seats:       b.Seats,
		AmountCents: b.AmountCents,
		Status:      b.Status,
		CreatedAt:   b.CreatedAt,
		ExpiresAt:   b.ExpiresAt,
		PaidAt:      b.PaidAt,
	}
}

// BookingHandler exposes seat reservation and booking listing on behalf
// of customers.  All methods assume JWT authentication has already been
// performed by middleware; they return 401 if the user ID cannot be
// extracted from the context.
type BookingHandler struct {
	Svc      *booking.Service
	Bookings *repository.BookingRepo
}

// NewBookingHandler constructs a BookingHandler.  Both dependencies
// must be non-nil.
func NewBookingHandler(svc *booking.Service, bookings *repository.BookingRepo) *BookingHandler {
	if svc == nil || bookings == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Svc: svc, Bookings: bookings}
}

// Reserve handles POST /v1/shows/:id/reserve.  It places an atomic hold
// on the requested seats and creates a PENDING booking with a payment
// deadline.  On success it returns 201 with the booking ID, price and
// expiry.  If any requested seat is already taken it returns 409 with
// the list of unavailable seat labels and no state is changed.
func (h *BookingHandler) Reserve(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	showID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || showID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	var body struct {
		Seats []string `json:"seats"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	b, err := h.Svc.Reserve(c.Request().Context(), showID, body.Seats, userID)
	if err != nil {
		var unavailable *repository.SeatsUnavailableError
		switch {
		case errors.As(err, &unavailable):
			return c.JSON(http.StatusConflict, echo.Map{
				"error":       "seats no longer available, please reselect",
				"unavailable": unavailable.Seats,
			})
		case errors.Is(err, repository.ErrShowNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		case errors.Is(err, booking.ErrInvalidSeats):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reserve seats"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"booking_id":   b.ID,
		"seats":        b.Seats,
		"amount_cents": b.AmountCents,
		"status":       b.Status,
		"expires_at":   b.ExpiresAt.Format(time.RFC3339),
	})
}

// GetBooking handles GET /v1/bookings/:id.  It returns a single booking
// belonging to the authenticated user.  Bookings owned by other users
// are reported as not found rather than forbidden, so booking IDs
// cannot be probed.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Bookings.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch booking"})
	}
	if b.UserID != userID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	}
	return c.JSON(http.StatusOK, toBookingView(b))
}

// MyBookings handles GET /v1/my-bookings.  It lists all bookings of the
// current user, newest first, including expired ones so customers can
// see why a hold disappeared.
func (h *BookingHandler) MyBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Bookings.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	views := make([]bookingView, 0, len(items))
	for i := range items {
		views = append(views, toBookingView(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": views})
}
