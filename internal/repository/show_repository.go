package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/movietime/ticket-booking/internal/model"
)

// ShowRepo manages persistence for shows.  Shows are created by admin
// actions, read by booking and browse flows, and never deleted while
// bookings reference them.  Seat occupancy is not stored here — the
// ledger (show_seats) is the sole authority; the show row only defines
// the seat geometry and price.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo constructs a ShowRepo with the given DB handle.
func NewShowRepo(db *sql.DB) *ShowRepo { return &ShowRepo{db: db} }

// Create inserts a new show and assigns the generated ID and creation
// timestamp back to the struct.
func (r *ShowRepo) Create(ctx context.Context, s *model.Show) error {
	const q = `INSERT INTO shows (movie_id, starts_at, price_cents, seat_rows, seats_per_row)
               VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.MovieID, s.StartsAt.UTC(), s.PriceCents, s.SeatRows, s.SeatsPerRow)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	const sel = `SELECT created_at FROM shows WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, s.ID).Scan(&s.CreatedAt)
}

// GetByID retrieves a show by its ID.  It returns ErrShowNotFound when
// there is no matching row.
func (r *ShowRepo) GetByID(ctx context.Context, id uint64) (*model.Show, error) {
	const q = `SELECT id, movie_id, starts_at, price_cents, seat_rows, seats_per_row, created_at
               FROM shows WHERE id = ?`
	var s model.Show
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.MovieID, &s.StartsAt, &s.PriceCents, &s.SeatRows, &s.SeatsPerRow, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowNotFound
		}
		return nil, err
	}
	return &s, nil
}

// StartingBetween returns all shows whose start time falls in
// [from, to), ordered by start time ascending.  The reminder sweep uses
// this to find shows inside its lookahead window.
func (r *ShowRepo) StartingBetween(ctx context.Context, from, to time.Time) ([]model.Show, error) {
	const q = `SELECT id, movie_id, starts_at, price_cents, seat_rows, seats_per_row, created_at
               FROM shows
               WHERE starts_at >= ? AND starts_at < ?
               ORDER BY starts_at ASC`
	rows, err := r.db.QueryContext(ctx, q, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []model.Show
	for rows.Next() {
		var s model.Show
		if err := rows.Scan(
			&s.ID, &s.MovieID, &s.StartsAt, &s.PriceCents, &s.SeatRows, &s.SeatsPerRow, &s.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListUpcoming returns shows that have not started yet, soonest first.
func (r *ShowRepo) ListUpcoming(ctx context.Context, now time.Time) ([]model.Show, error) {
	const q = `SELECT id, movie_id, starts_at, price_cents, seat_rows, seats_per_row, created_at
               FROM shows WHERE starts_at >= ? ORDER BY starts_at ASC`
	rows, err := r.db.QueryContext(ctx, q, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Show, 0)
	for rows.Next() {
		var s model.Show
		if err := rows.Scan(
			&s.ID, &s.MovieID, &s.StartsAt, &s.PriceCents, &s.SeatRows, &s.SeatsPerRow, &s.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
