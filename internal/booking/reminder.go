package booking

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/movietime/ticket-booking/internal/model"
	"github.com/movietime/ticket-booking/internal/queue"
)

// Users resolves seat holders to notifier recipients.
type Users interface {
	GetByIDs(ctx context.Context, ids []uint64) ([]model.User, error)
}

// Movies resolves movie titles for reminder events.
type Movies interface {
	GetByID(ctx context.Context, id uint64) (*model.Movie, error)
}

// Reminder periodically scans shows starting within a lookahead window
// and emits one reminder.due event per distinct seat holder.  Sends are
// independent: a failed recipient is counted and skipped, never aborting
// the sweep.
type Reminder struct {
	shows     Shows
	ledger    Ledger
	users     Users
	movies    Movies
	pub       Publisher
	interval  time.Duration
	lookahead time.Duration
	now       func() time.Time
}

// NewReminder constructs a Reminder.  interval and lookahead of zero
// both select 8 hours.
func NewReminder(shows Shows, ledger Ledger, users Users, movies Movies, pub Publisher, interval, lookahead time.Duration) *Reminder {
	if interval <= 0 {
		interval = 8 * time.Hour
	}
	if lookahead <= 0 {
		lookahead = 8 * time.Hour
	}
	return &Reminder{
		shows:     shows,
		ledger:    ledger,
		users:     users,
		movies:    movies,
		pub:       pub,
		interval:  interval,
		lookahead: lookahead,
		now:       time.Now,
	}
}

// Run sweeps immediately and then every interval until the context is
// cancelled.
func (r *Reminder) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		sent, failed, err := r.SweepOnce(ctx)
		if err != nil {
			log.Printf("reminder sweep failed: %v", err)
		} else if sent+failed > 0 {
			log.Printf("reminder sweep: sent %d reminder(s), %d failed", sent, failed)
		}
		select {
		case <-ctx.Done():
			log.Println("reminder sweep stopped")
			return
		case <-ticker.C:
		}
	}
}

// SweepOnce performs a single sweep and reports how many reminder
// events were published and how many sends failed.  The error return
// covers only the show scan; per-show and per-recipient failures are
// logged and counted instead.
func (r *Reminder) SweepOnce(ctx context.Context) (sent, failed int, err error) {
	now := r.now().UTC()
	shows, err := r.shows.StartingBetween(ctx, now, now.Add(r.lookahead))
	if err != nil {
		return 0, 0, err
	}
	for _, show := range shows {
		s, f := r.remindShow(ctx, show)
		sent += s
		failed += f
	}
	return sent, failed, nil
}

func (r *Reminder) remindShow(ctx context.Context, show model.Show) (sent, failed int) {
	holders, err := r.ledger.Holders(ctx, show.ID)
	if err != nil {
		log.Printf("reminder sweep: load holders for show %d: %v", show.ID, err)
		return 0, 0
	}
	if len(holders) == 0 {
		return 0, 0
	}
	// Distinct holder IDs come from the ledger's values: several seats
	// held by one user yield one reminder.
	holderSet := make(map[uint64]struct{}, len(holders))
	for _, uid := range holders {
		holderSet[uid] = struct{}{}
	}
	ids := make([]uint64, 0, len(holderSet))
	for uid := range holderSet {
		ids = append(ids, uid)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	movie, err := r.movies.GetByID(ctx, show.MovieID)
	if err != nil {
		log.Printf("reminder sweep: load movie %d for show %d: %v", show.MovieID, show.ID, err)
		return 0, 0
	}
	users, err := r.users.GetByIDs(ctx, ids)
	if err != nil {
		log.Printf("reminder sweep: resolve %d holder(s) for show %d: %v", len(ids), show.ID, err)
		return 0, 0
	}
	for _, u := range users {
		ev := queue.ReminderDueEvent{
			Type:       queue.EventReminderDue,
			UserEmail:  u.Email,
			UserName:   u.Name,
			MovieTitle: movie.Title,
			ShowTime:   show.StartsAt.UTC().Format(time.RFC3339),
		}
		if err := r.pub.PublishReminderDue(ctx, ev); err != nil {
			log.Printf("reminder sweep: publish for %s: %v", u.Email, err)
			failed++
			continue
		}
		sent++
	}
	return sent, failed
}
