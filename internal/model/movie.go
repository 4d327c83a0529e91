package model

import "time"

// Movie is a catalog entry that shows are scheduled for.  The catalog is
// managed by admins; new shows for a movie trigger a "show.added" event
// consumed by the notifier.
type Movie struct {
	ID          uint64    // movies.id
	Title       string    // movies.title
	DurationMin uint32    // movies.duration_min
	Genre       string    // movies.genre
	CreatedAt   time.Time // movies.created_at
}
