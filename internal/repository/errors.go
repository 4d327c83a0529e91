// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// reservation service and handlers to distinguish between different
// failure scenarios without inspecting driver-specific errors.
package repository

import (
	"errors"
	"fmt"
	"strings"
)

// ErrShowNotFound indicates that a show was not located in the DB.
var ErrShowNotFound = errors.New("show not found")

// ErrMovieNotFound indicates that a movie was not located in the DB.
var ErrMovieNotFound = errors.New("movie not found")

// ErrBookingNotFound indicates that a booking was not located in the DB.
var ErrBookingNotFound = errors.New("booking not found")

// ErrUserNotFound indicates that a user was not located in the DB.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailTaken is returned on registration when the email is already in use.
var ErrEmailTaken = errors.New("email already registered")

// ErrStateConflict is returned by the booking state transitions when the
// conditional update matched no row because the booking is no longer
// PENDING. The caller decides what the lost race means by inspecting the
// booking's current status.
var ErrStateConflict = errors.New("booking state conflict")

// SeatsUnavailableError reports a failed ledger claim.  Seats lists the
// requested labels that were already occupied at claim time; the claim
// as a whole took effect for none of the requested seats.
type SeatsUnavailableError struct {
	Seats []string
}

func (e *SeatsUnavailableError) Error() string {
	return fmt.Sprintf("seats unavailable: %s", strings.Join(e.Seats, ", "))
}
