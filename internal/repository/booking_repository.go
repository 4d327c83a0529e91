package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/movietime/ticket-booking/internal/model"
)

// BookingRepo provides persistence for bookings and their seat lists.
// The status column is the arbiter for the two terminal transitions:
// MarkPaid and MarkExpired are conditional updates on status = PENDING,
// so exactly one of them can ever win for a given booking regardless of
// the order or concurrency in which they arrive.  All timestamps are
// stored in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// CreateTx persists a new booking and its seat rows within the caller's
// transaction.  The caller supplies the ID (a UUID generated before any
// write) and the PENDING status; ReservationStore composes this with the
// ledger claim so both commit or neither does.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (id, user_id, show_id, amount_cents, status, created_at, expires_at)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, q,
		b.ID, b.UserID, b.ShowID, b.AmountCents, b.Status,
		b.CreatedAt.UTC(), b.ExpiresAt.UTC(),
	); err != nil {
		return err
	}
	if len(b.Seats) > 0 {
		query := `INSERT INTO booking_seats (booking_id, seat_label) VALUES `
		args := make([]interface{}, 0, len(b.Seats)*2)
		for i, label := range b.Seats {
			if i > 0 {
				query += ","
			}
			query += "(?, ?)"
			args = append(args, b.ID, label)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return nil
}

// GetByID loads a booking and its seat labels.  Returns
// ErrBookingNotFound when no row matches.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	const q = `SELECT id, user_id, show_id, amount_cents, status, created_at, expires_at, paid_at
               FROM bookings WHERE id = ?`
	var b model.Booking
	var paidAt sql.NullTime
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.UserID, &b.ShowID, &b.AmountCents, &b.Status,
		&b.CreatedAt, &b.ExpiresAt, &paidAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if paidAt.Valid {
		t := paidAt.Time
		b.PaidAt = &t
	}
	seats, err := r.seatsByBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Seats = seats
	return &b, nil
}

// MarkPaid performs the PENDING→PAID compare-and-set.  When the
// conditional update matches no row it distinguishes a missing booking
// (ErrBookingNotFound) from a lost race (ErrStateConflict); the caller
// reads the current status to learn which transition won.
func (r *BookingRepo) MarkPaid(ctx context.Context, id string, at time.Time) error {
	const q = `UPDATE bookings SET status = ?, paid_at = ? WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, q, model.BookingPaid, at.UTC(), id, model.BookingPending)
	if err != nil {
		return err
	}
	return r.casOutcome(ctx, res, id)
}

// MarkExpired performs the PENDING→EXPIRED compare-and-set, the mirror
// image of MarkPaid.
func (r *BookingRepo) MarkExpired(ctx context.Context, id string) error {
	const q = `UPDATE bookings SET status = ? WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, q, model.BookingExpired, id, model.BookingPending)
	if err != nil {
		return err
	}
	return r.casOutcome(ctx, res, id)
}

func (r *BookingRepo) casOutcome(ctx context.Context, res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var status string
	err = r.db.QueryRowContext(ctx, `SELECT status FROM bookings WHERE id = ?`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBookingNotFound
		}
		return err
	}
	return ErrStateConflict
}

// PendingDeadlines returns the (booking, deadline) pairs of all PENDING
// bookings whose deadline is at or before the cutoff, oldest first.  The
// expiry scheduler recomputes its whole task set from this query, both
// at startup and on every sweep, so no scheduled expiration is lost to a
// process restart.
func (r *BookingRepo) PendingDeadlines(ctx context.Context, cutoff time.Time) ([]model.PendingExpiry, error) {
	const q = `SELECT id, expires_at FROM bookings
               WHERE status = ? AND expires_at <= ?
               ORDER BY expires_at ASC`
	rows, err := r.db.QueryContext(ctx, q, model.BookingPending, cutoff.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.PendingExpiry
	for rows.Next() {
		var p model.PendingExpiry
		if err := rows.Scan(&p.BookingID, &p.ExpiresAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByUser returns all bookings for the given user, newest first, with
// their seat labels populated.  Returns an empty slice when none exist.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	const q = `SELECT id, user_id, show_id, amount_cents, status, created_at, expires_at, paid_at
               FROM bookings WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	bookings := make([]model.Booking, 0)
	index := make(map[string]int)
	for rows.Next() {
		var b model.Booking
		var paidAt sql.NullTime
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.ShowID, &b.AmountCents, &b.Status,
			&b.CreatedAt, &b.ExpiresAt, &paidAt,
		); err != nil {
			return nil, err
		}
		if paidAt.Valid {
			t := paidAt.Time
			b.PaidAt = &t
		}
		b.Seats = []string{}
		index[b.ID] = len(bookings)
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return bookings, nil
	}
	// Populate seats for all bookings in a single query.
	ids := make([]interface{}, 0, len(bookings))
	for _, b := range bookings {
		ids = append(ids, b.ID)
	}
	seatQuery := `SELECT booking_id, seat_label FROM booking_seats
                  WHERE booking_id IN (` + placeholders(len(ids)) + `)
                  ORDER BY booking_id, seat_label`
	srows, err := r.db.QueryContext(ctx, seatQuery, ids...)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var bid, label string
		if err := srows.Scan(&bid, &label); err != nil {
			return nil, err
		}
		if idx, ok := index[bid]; ok {
			bookings[idx].Seats = append(bookings[idx].Seats, label)
		}
	}
	if err := srows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *BookingRepo) seatsByBooking(ctx context.Context, id string) ([]string, error) {
	const q = `SELECT seat_label FROM booking_seats WHERE booking_id = ? ORDER BY seat_label`
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seats := make([]string, 0)
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		seats = append(seats, label)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}
