// Package booking implements the seat reservation core: the reservation
// service that claims seats against the per-show ledger, the expiry
// scheduler that releases unpaid holds, and the reminder sweep.
//
// Correctness under concurrent access rests on two persistent-store
// primitives and nothing else: the all-or-nothing seat claim that
// commits in the same transaction as the booking record, and the booking
// status compare-and-set that arbitrates the PENDING→PAID /
// PENDING→EXPIRED race.  The service holds no in-process lock across
// store calls; operations on different shows or bookings never contend
// with each other.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/movietime/ticket-booking/internal/model"
	"github.com/movietime/ticket-booking/internal/queue"
	"github.com/movietime/ticket-booking/internal/repository"
	"github.com/movietime/ticket-booking/internal/utils"
)

// DefaultHoldTTL is how long a pending booking may remain unpaid before
// its seats are released.
const DefaultHoldTTL = 10 * time.Minute

// MaxSeatsPerBooking bounds one reservation request.
const MaxSeatsPerBooking = 10

// ErrInvalidSeats reports a malformed seat selection (empty, duplicated,
// too many, or outside the show's seat space).  Wrapped errors carry the
// specifics.
var ErrInvalidSeats = errors.New("invalid seat selection")

// ErrAlreadyPaid is returned by Expire when the booking reached PAID
// first.  The seats stay held; the caller logs and moves on.
var ErrAlreadyPaid = errors.New("booking already paid")

// ErrAlreadyExpired is returned by ConfirmPayment when the hold timed
// out before payment completed.  The payment gate must treat this as
// refund/void, never as success.
var ErrAlreadyExpired = errors.New("booking already expired")

// Ledger is the seat occupancy authority for shows.  Claims happen
// through Store.Create, never through this interface; the service only
// releases and reads.  Release of already-free seats is a no-op success.
type Ledger interface {
	Release(ctx context.Context, showID uint64, bookingID string, seats []string) (int, error)
	Holders(ctx context.Context, showID uint64) (map[string]uint64, error)
}

// Store persists booking records.  Create claims the booking's seats in
// the ledger and writes the booking record as one atomic unit: either
// both take effect or neither does, relative to crashes as well as to
// concurrent claims on the same show.  A claim conflict surfaces as
// *repository.SeatsUnavailableError with no state change.  MarkPaid and
// MarkExpired are conditional transitions from PENDING; they return
// repository.ErrStateConflict when the booking is no longer PENDING and
// repository.ErrBookingNotFound when it does not exist.
type Store interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	MarkPaid(ctx context.Context, id string, at time.Time) error
	MarkExpired(ctx context.Context, id string) error
	PendingDeadlines(ctx context.Context, cutoff time.Time) ([]model.PendingExpiry, error)
}

// Shows resolves show metadata for validation, pricing and the reminder
// sweep window.
type Shows interface {
	GetByID(ctx context.Context, id uint64) (*model.Show, error)
	StartingBetween(ctx context.Context, from, to time.Time) ([]model.Show, error)
}

// Publisher emits events for the notifier.  Delivery failures are the
// notifier's problem: the core logs them and never fails the triggering
// operation.
type Publisher interface {
	PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
	PublishReminderDue(ctx context.Context, ev queue.ReminderDueEvent) error
}

// ExpiryScheduler registers and cancels delayed release tasks.  Cancel
// is advisory: a timer that already began firing may still invoke
// Expire, which the status compare-and-set makes harmless.
type ExpiryScheduler interface {
	ScheduleAt(bookingID string, fireAt time.Time)
	Cancel(bookingID string)
}

// SeatCache invalidates cached seat availability when occupancy changes.
type SeatCache interface {
	Invalidate(ctx context.Context, showID uint64)
}

// Service validates and commits seat reservations and drives booking
// state transitions.  It is safe for concurrent use.
type Service struct {
	ledger  Ledger
	store   Store
	shows   Shows
	pub     Publisher
	sched   ExpiryScheduler
	cache   SeatCache
	holdTTL time.Duration
	now     func() time.Time
}

// NewService constructs a Service.  pub, sched and cache may be nil in
// which case the corresponding side effects are skipped; holdTTL of zero
// selects DefaultHoldTTL.
func NewService(ledger Ledger, store Store, shows Shows, pub Publisher, sched ExpiryScheduler, cache SeatCache, holdTTL time.Duration) *Service {
	if ledger == nil || store == nil || shows == nil {
		panic("nil store passed to NewService")
	}
	if holdTTL <= 0 {
		holdTTL = DefaultHoldTTL
	}
	return &Service{
		ledger:  ledger,
		store:   store,
		shows:   shows,
		pub:     pub,
		sched:   sched,
		cache:   cache,
		holdTTL: holdTTL,
		now:     time.Now,
	}
}

// Reserve claims the requested seats for the user and creates a PENDING
// booking with a release scheduled at now + hold TTL.
//
// The booking ID is generated before any write; the claim and the
// booking record then commit as one unit through the store, so a failed
// reservation — including a process crash mid-reserve — leaves no ledger
// rows and no booking behind.
//
// Errors: repository.ErrShowNotFound, ErrInvalidSeats (wrapped), and
// *repository.SeatsUnavailableError listing the conflicting seats.
func (s *Service) Reserve(ctx context.Context, showID uint64, seats []string, userID uint64) (*model.Booking, error) {
	show, err := s.shows.GetByID(ctx, showID)
	if err != nil {
		return nil, err
	}
	normalized, err := validateSeats(show, seats)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	b := &model.Booking{
		ID:          uuid.NewString(),
		UserID:      userID,
		ShowID:      showID,
		Seats:       normalized,
		AmountCents: uint32(len(normalized)) * show.PriceCents,
		Status:      model.BookingPending,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.holdTTL),
	}

	if err := s.store.Create(ctx, b); err != nil {
		return nil, err
	}
	if s.sched != nil {
		s.sched.ScheduleAt(b.ID, b.ExpiresAt)
	}
	s.invalidateSeats(ctx, showID)
	return b, nil
}

// ConfirmPayment finalizes a pending booking after the payment gate
// reports success.  Exactly one of ConfirmPayment and Expire wins for
// any pending booking; the arbiter is the store's status compare-and-set,
// not call ordering.  On success the scheduled release is cancelled
// (best effort) and a booking.confirmed event is emitted.
//
// Errors: ErrAlreadyExpired when the hold timed out first, ErrAlreadyPaid
// on a duplicate confirmation, repository.ErrBookingNotFound.
func (s *Service) ConfirmPayment(ctx context.Context, bookingID string) error {
	err := s.store.MarkPaid(ctx, bookingID, s.now().UTC())
	if err != nil {
		return s.mapConflict(ctx, bookingID, err)
	}
	if s.sched != nil {
		s.sched.Cancel(bookingID)
	}
	s.publishConfirmed(ctx, bookingID)
	return nil
}

// Expire releases an unpaid booking's seats and marks it EXPIRED.  It is
// invoked by the expiry scheduler at the hold deadline and by the
// payment gate's failure callback.  Duplicate and late invocations are
// harmless by construction: the compare-and-set admits only the first
// caller, a booking that already reached PAID keeps its seats, and a
// duplicate on an EXPIRED booking merely repeats the idempotent release.
//
// Errors: ErrAlreadyPaid, ErrAlreadyExpired, repository.ErrBookingNotFound.
func (s *Service) Expire(ctx context.Context, bookingID string) error {
	var already error
	if err := s.store.MarkExpired(ctx, bookingID); err != nil {
		err = s.mapConflict(ctx, bookingID, err)
		if !errors.Is(err, ErrAlreadyExpired) {
			return err
		}
		// Already EXPIRED: fall through and re-run the release anyway.
		// Release is idempotent, so this is how a release that failed
		// after an earlier successful transition eventually converges.
		already = err
	}
	b, err := s.store.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if _, err := s.ledger.Release(ctx, b.ShowID, b.ID, b.Seats); err != nil {
		// The booking is already EXPIRED; report the failure so the
		// caller retries the release rather than dropping it.
		return fmt.Errorf("release seats for booking %s: %w", bookingID, err)
	}
	s.invalidateSeats(ctx, b.ShowID)
	return already
}

// mapConflict translates a lost compare-and-set into the terminal state
// that won.
func (s *Service) mapConflict(ctx context.Context, bookingID string, err error) error {
	if !errors.Is(err, repository.ErrStateConflict) {
		return err
	}
	b, getErr := s.store.GetByID(ctx, bookingID)
	if getErr != nil {
		return getErr
	}
	switch b.Status {
	case model.BookingPaid:
		return ErrAlreadyPaid
	case model.BookingExpired:
		return ErrAlreadyExpired
	default:
		return err
	}
}

func (s *Service) publishConfirmed(ctx context.Context, bookingID string) {
	if s.pub == nil {
		return
	}
	b, err := s.store.GetByID(ctx, bookingID)
	if err != nil {
		log.Printf("booking: load confirmed booking %s for event: %v", bookingID, err)
		return
	}
	ev := queue.BookingConfirmedEvent{
		Type:        queue.EventBookingConfirmed,
		BookingID:   b.ID,
		UserID:      b.UserID,
		ShowID:      b.ShowID,
		Seats:       b.Seats,
		AmountCents: b.AmountCents,
		ConfirmedAt: s.now().UTC().Format(time.RFC3339),
	}
	if err := s.pub.PublishBookingConfirmed(ctx, ev); err != nil {
		log.Printf("booking: publish booking.confirmed for %s: %v", bookingID, err)
	}
}

func (s *Service) invalidateSeats(ctx context.Context, showID uint64) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, showID)
	}
}

// validateSeats checks the requested labels against the show's seat
// space and returns them trimmed of surrounding whitespace.  Order is
// preserved; duplicates, empty selections and oversized selections are
// rejected.
func validateSeats(show *model.Show, seats []string) ([]string, error) {
	if len(seats) == 0 {
		return nil, fmt.Errorf("%w: no seats requested", ErrInvalidSeats)
	}
	if len(seats) > MaxSeatsPerBooking {
		return nil, fmt.Errorf("%w: at most %d seats per booking", ErrInvalidSeats, MaxSeatsPerBooking)
	}
	normalized := make([]string, 0, len(seats))
	seen := make(map[string]struct{}, len(seats))
	for _, raw := range seats {
		label, ok := utils.NormalizeSeatLabel(raw)
		if !ok {
			return nil, fmt.Errorf("%w: malformed seat label %q", ErrInvalidSeats, raw)
		}
		if !utils.SeatInBounds(label, show.SeatRows, show.SeatsPerRow) {
			return nil, fmt.Errorf("%w: seat %s outside show layout", ErrInvalidSeats, label)
		}
		if _, dup := seen[label]; dup {
			return nil, fmt.Errorf("%w: duplicate seat %s", ErrInvalidSeats, label)
		}
		seen[label] = struct{}{}
		normalized = append(normalized, label)
	}
	return normalized, nil
}
