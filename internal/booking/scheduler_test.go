package booking

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movietime/ticket-booking/internal/model"
)

func pendingBooking(id string, expiresAt time.Time) *model.Booking {
	return &model.Booking{
		ID:        id,
		UserID:    1,
		ShowID:    1,
		Seats:     []string{"A1"},
		Status:    model.BookingPending,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: expiresAt,
	}
}

func collectFired(fired chan string) ExpireFunc {
	return func(_ context.Context, bookingID string) error {
		select {
		case fired <- bookingID:
		default:
		}
		return nil
	}
}

func TestSchedulerFiresAtDeadline(t *testing.T) {
	store := newFakeStore()
	sched := NewScheduler(store, 50*time.Millisecond, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fired := make(chan string, 8)
	go sched.Run(ctx, collectFired(fired))

	sched.ScheduleAt("b-1", time.Now().Add(30*time.Millisecond))

	select {
	case id := <-fired:
		assert.Equal(t, "b-1", id)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled expiry never fired")
	}
}

func TestSchedulerCancelStopsTimer(t *testing.T) {
	store := newFakeStore()
	sched := NewScheduler(store, time.Minute, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fired := make(chan string, 8)
	go sched.Run(ctx, collectFired(fired))

	sched.ScheduleAt("b-1", time.Now().Add(80*time.Millisecond))
	sched.Cancel("b-1")

	select {
	case id := <-fired:
		t.Fatalf("cancelled timer fired for %s", id)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestSchedulerRecoversPendingAfterRestart(t *testing.T) {
	// bookings persisted before a crash: one already overdue, one due
	// shortly; neither was re-armed via ScheduleAt
	store := newFakeStore()
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, pendingBooking("overdue", time.Now().UTC().Add(-time.Minute))))
	require.NoError(t, store.Create(ctx, pendingBooking("due-soon", time.Now().UTC().Add(40*time.Millisecond))))

	sched := NewScheduler(store, 50*time.Millisecond, time.Minute)

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fired := make(chan string, 16)
	go sched.Run(runCtx, func(c context.Context, id string) error {
		// mark expired so the next sweep does not re-arm it
		if err := store.MarkExpired(c, id); err != nil {
			return err
		}
		fired <- id
		return nil
	})

	got := map[string]bool{}
	deadline := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case id := <-fired:
			got[id] = true
		case <-deadline:
			t.Fatalf("recovered only %v before timeout", got)
		}
	}
	assert.True(t, got["overdue"])
	assert.True(t, got["due-soon"])
}

func TestSchedulerRetriesFailedExpire(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, pendingBooking("flaky", time.Now().UTC().Add(-time.Second))))

	sched := NewScheduler(store, 30*time.Millisecond, time.Minute)

	var calls atomic.Int32
	done := make(chan struct{})
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sched.Run(runCtx, func(c context.Context, id string) error {
		if calls.Add(1) == 1 {
			// transient failure: the booking stays PENDING
			return errors.New("db timeout")
		}
		if err := store.MarkExpired(c, id); err != nil {
			return err
		}
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("failed expire was never retried")
	}
	assert.GreaterOrEqual(t, calls.Load(), int32(2))
	assert.Equal(t, model.BookingExpired, store.status("flaky"))
}

func TestSchedulerRescheduleResetsTimer(t *testing.T) {
	store := newFakeStore()
	sched := NewScheduler(store, time.Minute, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fired := make(chan string, 8)
	go sched.Run(ctx, collectFired(fired))

	// push the deadline out before the first one elapses
	sched.ScheduleAt("b-1", time.Now().Add(50*time.Millisecond))
	sched.ScheduleAt("b-1", time.Now().Add(400*time.Millisecond))

	select {
	case <-fired:
		t.Fatal("timer fired at the superseded deadline")
	case <-time.After(200 * time.Millisecond):
	}

	select {
	case id := <-fired:
		assert.Equal(t, "b-1", id)
	case <-time.After(2 * time.Second):
		t.Fatal("rescheduled timer never fired")
	}
}
