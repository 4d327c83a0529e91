package model

import "time"

// Booking status values.  A booking starts PENDING and reaches exactly
// one of the two terminal states: PAID when the payment gate confirms in
// time, EXPIRED when the hold timeout fires first (or the gate reports
// failure).  Expired bookings are retained for audit rather than deleted.
const (
	BookingPending = "PENDING"
	BookingPaid    = "PAID"
	BookingExpired = "EXPIRED"
)

// Booking represents one reservation attempt: the seats a user holds on a
// show, the total amount due and the payment state.  The booking does not
// own its seats — the show's seat ledger is the authority on occupancy;
// Seats records what was claimed under this booking's ID.
//
// Fields:
//  ID          – UUID assigned before any seat is claimed.
//  UserID      – user who made the reservation.
//  ShowID      – show being reserved.
//  Seats       – ordered, duplicate-free seat labels (e.g. "A1").
//  AmountCents – len(Seats) × show price at reservation time.
//  Status      – PENDING, PAID or EXPIRED.
//  CreatedAt   – when the hold was placed.
//  ExpiresAt   – CreatedAt + hold TTL; deadline for payment.
//  PaidAt      – set when the PENDING→PAID transition wins.
type Booking struct {
	ID          string     // bookings.id
	UserID      uint64     // bookings.user_id
	ShowID      uint64     // bookings.show_id
	Seats       []string   // booking_seats.seat_label
	AmountCents uint32     // bookings.amount_cents
	Status      string     // bookings.status
	CreatedAt   time.Time  // bookings.created_at
	ExpiresAt   time.Time  // bookings.expires_at
	PaidAt      *time.Time // bookings.paid_at (nullable)
}

// PendingExpiry is the (booking, deadline) pair the expiry scheduler
// derives its task set from.  It is recomputable at any time by scanning
// PENDING bookings, which is what makes scheduled expirations survive a
// process restart.
type PendingExpiry struct {
	BookingID string
	ExpiresAt time.Time
}
