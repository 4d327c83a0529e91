package booking

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/movietime/ticket-booking/internal/model"
	"github.com/movietime/ticket-booking/internal/repository"
)

// DeadlineSource yields the pending bookings whose hold deadline is at
// or before a cutoff.  The booking store implements it.
type DeadlineSource interface {
	PendingDeadlines(ctx context.Context, cutoff time.Time) ([]model.PendingExpiry, error)
}

// ExpireFunc is invoked when a hold deadline fires.  It must be safe to
// call more than once for the same booking.
type ExpireFunc func(ctx context.Context, bookingID string) error

// Scheduler fires seat releases for unpaid bookings at their hold
// deadline.  It keeps one in-memory timer per pending booking for prompt
// firing, but the timers are an optimization, not the source of truth:
// the task set is recomputed from persisted PENDING rows on startup and
// on every sweep, so a crash or restart loses nothing — overdue holds
// are picked up by the next sweep and fired immediately.
//
// Firing is at-least-once.  A fire that errors stays PENDING in the
// store and is retried by a later sweep; a duplicate fire hits the
// status compare-and-set and is a no-op.  Cancel is advisory: it stops
// the local timer when it can, and the compare-and-set covers the case
// where it cannot.
type Scheduler struct {
	deadlines DeadlineSource
	interval  time.Duration // sweep period
	lookahead time.Duration // how far ahead a sweep arms timers

	mu     sync.Mutex
	timers map[string]*time.Timer
	expire ExpireFunc
}

// NewScheduler constructs a Scheduler.  interval and lookahead of zero
// select 30s and 1m respectively.
func NewScheduler(deadlines DeadlineSource, interval, lookahead time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if lookahead <= 0 {
		lookahead = time.Minute
	}
	return &Scheduler{
		deadlines: deadlines,
		interval:  interval,
		lookahead: lookahead,
		timers:    make(map[string]*time.Timer),
	}
}

// ScheduleAt arms a release for the booking at fireAt.  Re-scheduling an
// already-armed booking resets its timer.
func (s *Scheduler) ScheduleAt(bookingID string, fireAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[bookingID]; ok {
		t.Stop()
	}
	d := time.Until(fireAt)
	if d < 0 {
		d = 0
	}
	s.timers[bookingID] = time.AfterFunc(d, func() { s.fire(bookingID) })
}

// Cancel stops the booking's timer if it has not fired yet.  A timer
// that already began firing proceeds; safety comes from the expire
// handler's state guard, not from cancellation.
func (s *Scheduler) Cancel(bookingID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[bookingID]; ok {
		t.Stop()
		delete(s.timers, bookingID)
	}
}

// Run re-arms outstanding expirations from the store, then sweeps every
// interval until the context is cancelled.  expire handles each firing.
func (s *Scheduler) Run(ctx context.Context, expire ExpireFunc) {
	s.mu.Lock()
	s.expire = expire
	s.mu.Unlock()

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("expiry scheduler stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep queries all pending deadlines up to now+lookahead and arms (or
// immediately fires) a timer for each.  Bookings already armed are left
// alone unless their timer was lost, which ScheduleAt handles by reset.
func (s *Scheduler) sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(s.lookahead)
	pending, err := s.deadlines.PendingDeadlines(ctx, cutoff)
	if err != nil {
		log.Printf("expiry scheduler: sweep query failed: %v", err)
		return
	}
	for _, p := range pending {
		s.ScheduleAt(p.BookingID, p.ExpiresAt)
	}
}

func (s *Scheduler) fire(bookingID string) {
	s.mu.Lock()
	delete(s.timers, bookingID)
	expire := s.expire
	s.mu.Unlock()
	if expire == nil {
		// Run not started yet; the booking stays PENDING and the first
		// sweep will re-arm it.
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	err := expire(ctx, bookingID)
	switch {
	case err == nil:
		log.Printf("booking %s expired, seats released", bookingID)
	case errors.Is(err, ErrAlreadyPaid), errors.Is(err, ErrAlreadyExpired),
		errors.Is(err, repository.ErrBookingNotFound):
		// Lost the race to payment or to a duplicate fire; nothing to do.
	default:
		// Leave the booking PENDING; the next sweep retries the release.
		log.Printf("expiry scheduler: expire %s failed: %v", bookingID, err)
	}
}
