package repository

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// mysqlDupEntry is the MySQL error number for a unique key violation.
const mysqlDupEntry = 1062

// LedgerRepo is the single mutation path for seat occupancy.  The ledger
// is the show_seats table with PRIMARY KEY (show_id, seat_label): one row
// per occupied seat, carrying the booking that holds it and the holding
// user.  A seat label with no row is free.
//
// All multi-seat claims go through ClaimTx, which is a single INSERT
// statement.  MySQL executes the statement atomically: if any row
// collides with the primary key, the whole statement fails and no row is
// inserted.  That property — not any application-level lock — is what
// prevents two concurrent reservations from splitting a seat set between
// them.  Claims on different shows contend only on their own key ranges.
// ClaimTx runs inside the caller's transaction so the ledger rows and
// the booking record they reference commit together.
type LedgerRepo struct {
	db *sql.DB
}

// NewLedgerRepo returns a LedgerRepo bound to the given database.
func NewLedgerRepo(db *sql.DB) *LedgerRepo { return &LedgerRepo{db: db} }

// ClaimTx records the given seats as held by bookingID within tx.
// Either every requested seat transitions from free to held, or none
// does.  When one or more seats are already occupied it returns
// *SeatsUnavailableError listing the conflicting labels; the caller must
// roll the transaction back.  The conflict list is built from a fresh
// read, so rows committed by the winning claim are visible by the time
// the duplicate-key error surfaces here.
func (r *LedgerRepo) ClaimTx(ctx context.Context, tx *sql.Tx, showID uint64, bookingID string, userID uint64, seats []string) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO show_seats (show_id, seat_label, booking_id, user_id) VALUES `
	args := make([]interface{}, 0, len(seats)*4)
	for i, label := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, showID, label, bookingID, userID)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDupEntry {
			taken, qerr := r.occupiedAmong(ctx, showID, seats)
			if qerr != nil {
				return qerr
			}
			return &SeatsUnavailableError{Seats: conflictList(seats, taken)}
		}
		return err
	}
	return nil
}

// Release frees the given seats, provided they are still held by
// bookingID, and returns how many rows were removed.  Releasing seats
// that are already free (or held by a different booking) is a no-op
// success: the expiry path and an explicit payment-failure callback may
// race to release the same seats, and the second caller must not fail.
func (r *LedgerRepo) Release(ctx context.Context, showID uint64, bookingID string, seats []string) (int, error) {
	if len(seats) == 0 {
		return 0, nil
	}
	query := `DELETE FROM show_seats WHERE show_id = ? AND booking_id = ? AND seat_label IN (` +
		placeholders(len(seats)) + `)`
	args := make([]interface{}, 0, len(seats)+2)
	args = append(args, showID, bookingID)
	for _, label := range seats {
		args = append(args, label)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Holders returns the ledger values for a show as seat label → holding
// user ID.  The reminder sweep derives its distinct recipient set from
// the values of this map.
func (r *LedgerRepo) Holders(ctx context.Context, showID uint64) (map[string]uint64, error) {
	const q = `SELECT seat_label, user_id FROM show_seats WHERE show_id = ?`
	rows, err := r.db.QueryContext(ctx, q, showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	holders := make(map[string]uint64)
	for rows.Next() {
		var label string
		var userID uint64
		if err := rows.Scan(&label, &userID); err != nil {
			return nil, err
		}
		holders[label] = userID
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return holders, nil
}

// OccupiedSeats returns the sorted labels of all occupied seats for a
// show.  Used by the public availability endpoint.
func (r *LedgerRepo) OccupiedSeats(ctx context.Context, showID uint64) ([]string, error) {
	const q = `SELECT seat_label FROM show_seats WHERE show_id = ?`
	rows, err := r.db.QueryContext(ctx, q, showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	labels := make([]string, 0)
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(labels)
	return labels, nil
}

// occupiedAmong reports which of the requested labels are currently
// occupied.  Called after a failed claim to build the conflict list; the
// answer is informational and may lag the ledger by the time the caller
// sees it.
func (r *LedgerRepo) occupiedAmong(ctx context.Context, showID uint64, seats []string) ([]string, error) {
	query := `SELECT seat_label FROM show_seats WHERE show_id = ? AND seat_label IN (` +
		placeholders(len(seats)) + `)`
	args := make([]interface{}, 0, len(seats)+1)
	args = append(args, showID)
	for _, label := range seats {
		args = append(args, label)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var taken []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		taken = append(taken, label)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(taken)
	return taken, nil
}

// conflictList picks the seats to report after a failed claim.  The
// re-query behind taken races with releases: the occupant that caused
// the duplicate-key error may be gone again by the time we look.  An
// empty conflict list would read as "nothing was taken", so fall back to
// the full requested set and let the client re-read availability.
func conflictList(requested, taken []string) []string {
	if len(taken) > 0 {
		return taken
	}
	return append([]string(nil), requested...)
}

// placeholders returns n comma-separated "?" markers.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
