// Package queue defines the message payloads exchanged with the
// notifier over the message broker, and the broker-side publisher and
// consumer.  One durable queue exists per event type; queue names double
// as the event type discriminator.
package queue

// Queue / event type names.  The notifier consumes these; the core never
// waits on delivery.
const (
	EventBookingConfirmed = "booking.confirmed"
	EventShowAdded        = "show.added"
	EventReminderDue      = "reminder.due"
)

// BookingConfirmedEvent is published when a pending booking transitions
// to PAID.  It carries enough for the notifier to send a confirmation
// without querying the primary database.
type BookingConfirmedEvent struct {
	Type        string   `json:"type"`
	BookingID   string   `json:"booking_id"`
	UserID      uint64   `json:"user_id"`
	ShowID      uint64   `json:"show_id"`
	Seats       []string `json:"seats"`
	AmountCents uint32   `json:"amount_cents"`
	ConfirmedAt string   `json:"confirmed_at"`
}

// ShowAddedEvent is published when an admin schedules a new show.
type ShowAddedEvent struct {
	Type       string `json:"type"`
	MovieID    uint64 `json:"movie_id"`
	MovieTitle string `json:"movie_title"`
	ShowID     uint64 `json:"show_id"`
	StartsAt   string `json:"starts_at"`
}

// ReminderDueEvent is emitted by the reminder sweep, one per distinct
// seat holder on a show inside the lookahead window.
type ReminderDueEvent struct {
	Type       string `json:"type"`
	UserEmail  string `json:"user_email"`
	UserName   string `json:"user_name"`
	MovieTitle string `json:"movie_title"`
	ShowTime   string `json:"show_time"`
}
