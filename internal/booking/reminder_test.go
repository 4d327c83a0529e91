package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movietime/ticket-booking/internal/model"
)

type reminderFixture struct {
	rem    *Reminder
	ledger *fakeLedger
	pub    *fakePublisher
}

func newReminderFixture(t *testing.T, startsIn time.Duration) *reminderFixture {
	t.Helper()
	show := &model.Show{
		ID:          1,
		MovieID:     10,
		StartsAt:    time.Now().UTC().Add(startsIn),
		PriceCents:  1500,
		SeatRows:    5,
		SeatsPerRow: 10,
	}
	shows := &fakeShows{shows: map[uint64]*model.Show{show.ID: show}}
	movies := &fakeMovies{movies: map[uint64]*model.Movie{
		10: {ID: 10, Title: "Blade Runner", DurationMin: 117},
	}}
	users := &fakeUsers{users: map[uint64]model.User{
		1: {ID: 1, Email: "ana@example.com", Name: "Ana"},
		2: {ID: 2, Email: "ben@example.com", Name: "Ben"},
		3: {ID: 3, Email: "cal@example.com", Name: "Cal"},
	}}
	f := &reminderFixture{
		ledger: newFakeLedger(),
		pub:    newFakePublisher(),
	}
	f.rem = NewReminder(shows, f.ledger, users, movies, f.pub, 8*time.Hour, 8*time.Hour)
	return f
}

func TestReminderOnePerDistinctHolder(t *testing.T) {
	f := newReminderFixture(t, 2*time.Hour)
	ctx := context.Background()

	// user 1 holds two seats but must receive a single reminder
	require.NoError(t, f.ledger.Claim(ctx, 1, "bk-1", 1, []string{"A1", "A2"}))
	require.NoError(t, f.ledger.Claim(ctx, 1, "bk-2", 2, []string{"A3"}))
	require.NoError(t, f.ledger.Claim(ctx, 1, "bk-3", 3, []string{"B1"}))

	sent, failed, err := f.rem.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, sent)
	assert.Equal(t, 0, failed)
	assert.ElementsMatch(t,
		[]string{"ana@example.com", "ben@example.com", "cal@example.com"},
		f.pub.reminderEmails())

	for _, ev := range f.pub.reminders {
		assert.Equal(t, "Blade Runner", ev.MovieTitle)
		assert.NotEmpty(t, ev.ShowTime)
	}
}

func TestReminderFailedSendIsIsolated(t *testing.T) {
	f := newReminderFixture(t, 2*time.Hour)
	ctx := context.Background()

	require.NoError(t, f.ledger.Claim(ctx, 1, "bk-1", 1, []string{"A1"}))
	require.NoError(t, f.ledger.Claim(ctx, 1, "bk-2", 2, []string{"A2"}))
	require.NoError(t, f.ledger.Claim(ctx, 1, "bk-3", 3, []string{"A3"}))

	f.pub.failEmail["ben@example.com"] = errors.New("broker unavailable")

	sent, failed, err := f.rem.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Equal(t, 1, failed)
	assert.ElementsMatch(t,
		[]string{"ana@example.com", "cal@example.com"},
		f.pub.reminderEmails())
}

func TestReminderSkipsShowsOutsideWindow(t *testing.T) {
	// show starts well past the lookahead window
	f := newReminderFixture(t, 48*time.Hour)
	ctx := context.Background()

	require.NoError(t, f.ledger.Claim(ctx, 1, "bk-1", 1, []string{"A1"}))

	sent, failed, err := f.rem.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Equal(t, 0, failed)
}

func TestReminderNoHoldersNoEvents(t *testing.T) {
	f := newReminderFixture(t, 2*time.Hour)

	sent, failed, err := f.rem.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Equal(t, 0, failed)
}
