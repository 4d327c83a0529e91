package booking

import (
	"context"
	"sync"
	"time"

	"github.com/movietime/ticket-booking/internal/model"
	"github.com/movietime/ticket-booking/internal/queue"
	"github.com/movietime/ticket-booking/internal/repository"
)

// heldSeat records who holds a seat and under which booking.
type heldSeat struct {
	bookingID string
	userID    uint64
}

// fakeLedger mimics the show_seats table: per show, a map of seat label
// to holder.  Claim is atomic under the mutex, matching the all-or-
// nothing guarantee of the real multi-row insert.
type fakeLedger struct {
	mu         sync.Mutex
	shows      map[uint64]map[string]heldSeat
	claimErr   error
	releaseErr error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{shows: map[uint64]map[string]heldSeat{}}
}

func (l *fakeLedger) Claim(_ context.Context, showID uint64, bookingID string, userID uint64, seats []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.claimErr != nil {
		return l.claimErr
	}
	occ := l.shows[showID]
	if occ == nil {
		occ = map[string]heldSeat{}
		l.shows[showID] = occ
	}
	var conflicts []string
	for _, s := range seats {
		if _, taken := occ[s]; taken {
			conflicts = append(conflicts, s)
		}
	}
	if len(conflicts) > 0 {
		return &repository.SeatsUnavailableError{Seats: conflicts}
	}
	for _, s := range seats {
		occ[s] = heldSeat{bookingID: bookingID, userID: userID}
	}
	return nil
}

func (l *fakeLedger) Release(_ context.Context, showID uint64, bookingID string, seats []string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.releaseErr != nil {
		return 0, l.releaseErr
	}
	occ := l.shows[showID]
	released := 0
	for _, s := range seats {
		if h, ok := occ[s]; ok && h.bookingID == bookingID {
			delete(occ, s)
			released++
		}
	}
	return released, nil
}

func (l *fakeLedger) Holders(_ context.Context, showID uint64) (map[string]uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := map[string]uint64{}
	for s, h := range l.shows[showID] {
		out[s] = h.userID
	}
	return out, nil
}

func (l *fakeLedger) holder(showID uint64, seat string) (heldSeat, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	h, ok := l.shows[showID][seat]
	return h, ok
}

func (l *fakeLedger) occupiedCount(showID uint64) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.shows[showID])
}

// fakeStore mimics the bookings table including the conditional status
// transitions.  When wired with a ledger it mirrors ReservationStore:
// Create claims the seats and records the booking as one atomic step, so
// a failure at any point leaves neither behind.
type fakeStore struct {
	mu        sync.Mutex
	bookings  map[string]*model.Booking
	ledger    *fakeLedger
	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{bookings: map[string]*model.Booking{}}
}

func (s *fakeStore) Create(ctx context.Context, b *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	if s.ledger != nil {
		if err := s.ledger.Claim(ctx, b.ShowID, b.ID, b.UserID, b.Seats); err != nil {
			return err
		}
	}
	cp := *b
	cp.Seats = append([]string(nil), b.Seats...)
	s.bookings[b.ID] = &cp
	return nil
}

func (s *fakeStore) GetByID(_ context.Context, id string) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	cp := *b
	cp.Seats = append([]string(nil), b.Seats...)
	return &cp, nil
}

func (s *fakeStore) MarkPaid(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return repository.ErrBookingNotFound
	}
	if b.Status != model.BookingPending {
		return repository.ErrStateConflict
	}
	b.Status = model.BookingPaid
	b.PaidAt = &at
	return nil
}

func (s *fakeStore) MarkExpired(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return repository.ErrBookingNotFound
	}
	if b.Status != model.BookingPending {
		return repository.ErrStateConflict
	}
	b.Status = model.BookingExpired
	return nil
}

func (s *fakeStore) PendingDeadlines(_ context.Context, cutoff time.Time) ([]model.PendingExpiry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.PendingExpiry
	for _, b := range s.bookings {
		if b.Status == model.BookingPending && !b.ExpiresAt.After(cutoff) {
			out = append(out, model.PendingExpiry{BookingID: b.ID, ExpiresAt: b.ExpiresAt})
		}
	}
	return out, nil
}

func (s *fakeStore) status(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.bookings[id]; ok {
		return b.Status
	}
	return ""
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

// fakeShows serves show metadata from a map.
type fakeShows struct {
	shows map[uint64]*model.Show
}

func (f *fakeShows) GetByID(_ context.Context, id uint64) (*model.Show, error) {
	s, ok := f.shows[id]
	if !ok {
		return nil, repository.ErrShowNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeShows) StartingBetween(_ context.Context, from, to time.Time) ([]model.Show, error) {
	var out []model.Show
	for _, s := range f.shows {
		if !s.StartsAt.Before(from) && !s.StartsAt.After(to) {
			out = append(out, *s)
		}
	}
	return out, nil
}

type fakeUsers struct {
	users map[uint64]model.User
}

func (f *fakeUsers) GetByIDs(_ context.Context, ids []uint64) ([]model.User, error) {
	out := make([]model.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeMovies struct {
	movies map[uint64]*model.Movie
}

func (f *fakeMovies) GetByID(_ context.Context, id uint64) (*model.Movie, error) {
	m, ok := f.movies[id]
	if !ok {
		return nil, repository.ErrMovieNotFound
	}
	cp := *m
	return &cp, nil
}

// fakePublisher records published events and can fail sends for chosen
// recipient emails.
type fakePublisher struct {
	mu        sync.Mutex
	confirmed []queue.BookingConfirmedEvent
	reminders []queue.ReminderDueEvent
	failEmail map[string]error
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{failEmail: map[string]error{}}
}

func (p *fakePublisher) PublishBookingConfirmed(_ context.Context, ev queue.BookingConfirmedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.confirmed = append(p.confirmed, ev)
	return nil
}

func (p *fakePublisher) PublishReminderDue(_ context.Context, ev queue.ReminderDueEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err, ok := p.failEmail[ev.UserEmail]; ok {
		return err
	}
	p.reminders = append(p.reminders, ev)
	return nil
}

func (p *fakePublisher) confirmedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.confirmed)
}

func (p *fakePublisher) reminderEmails() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.reminders))
	for _, ev := range p.reminders {
		out = append(out, ev.UserEmail)
	}
	return out
}

// fakeSched records scheduled deadlines and cancellations.
type fakeSched struct {
	mu        sync.Mutex
	scheduled map[string]time.Time
	cancelled []string
}

func newFakeSched() *fakeSched {
	return &fakeSched{scheduled: map[string]time.Time{}}
}

func (s *fakeSched) ScheduleAt(bookingID string, fireAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled[bookingID] = fireAt
}

func (s *fakeSched) Cancel(bookingID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = append(s.cancelled, bookingID)
}

func (s *fakeSched) scheduledAt(bookingID string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.scheduled[bookingID]
	return at, ok
}

// fakeCache counts invalidations per show.
type fakeCache struct {
	mu          sync.Mutex
	invalidated map[uint64]int
}

func newFakeCache() *fakeCache {
	return &fakeCache{invalidated: map[uint64]int{}}
}

func (c *fakeCache) Invalidate(_ context.Context, showID uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated[showID]++
}
