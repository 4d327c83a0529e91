package repository

import (
	"context"
	"database/sql"

	"github.com/movietime/ticket-booking/internal/model"
)

// ReservationStore composes the seat ledger claim and the booking insert
// into one database transaction.  A booking record and the ledger rows
// it holds commit together or not at all: a crash mid-reserve can never
// strand claimed seats without a PENDING record, so everything the
// expiry sweep needs to release is always queryable from bookings.
//
// The embedded BookingRepo supplies the read and status-transition
// operations unchanged; only Create is transactional composition.
type ReservationStore struct {
	*BookingRepo
	db     *sql.DB
	ledger *LedgerRepo
}

// NewReservationStore constructs a ReservationStore.  All arguments must
// be non-nil and share the same database.
func NewReservationStore(db *sql.DB, ledger *LedgerRepo, bookings *BookingRepo) *ReservationStore {
	if db == nil || ledger == nil || bookings == nil {
		panic("nil dependency passed to NewReservationStore")
	}
	return &ReservationStore{BookingRepo: bookings, db: db, ledger: ledger}
}

// Create claims the booking's seats and persists the booking record as a
// single atomic unit.  On *SeatsUnavailableError (or any other failure)
// the transaction is rolled back, leaving neither ledger rows nor a
// booking behind.
func (s *ReservationStore) Create(ctx context.Context, b *model.Booking) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := s.ledger.ClaimTx(ctx, tx, b.ShowID, b.ID, b.UserID, b.Seats); err != nil {
		return err
	}
	if err := s.BookingRepo.CreateTx(ctx, tx, b); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
