package model

import "time"

// Show represents a scheduled screening of a movie.  It carries the seat
// geometry that defines the valid seat-label space (rows A.. with
// SeatsPerRow numbered seats each) and the per-seat price.  The seat
// ledger for a show lives in the show_seats table: one row per occupied
// seat, keyed (show_id, seat_label).  A seat label with no ledger row is
// free.  Shows are mutated only through the ledger's claim and release
// operations once created.
//
// Fields:
//  ID          – primary key identifier.
//  MovieID     – movie being screened.
//  StartsAt    – when the show begins (UTC).
//  PriceCents  – price per seat in cents.
//  SeatRows    – number of seat rows (row labels A, B, ...).
//  SeatsPerRow – seats in each row, numbered from 1.
//  CreatedAt   – creation timestamp.
type Show struct {
	ID          uint64    // shows.id
	MovieID     uint64    // shows.movie_id
	StartsAt    time.Time // shows.starts_at
	PriceCents  uint32    // shows.price_cents
	SeatRows    uint32    // shows.seat_rows
	SeatsPerRow uint32    // shows.seats_per_row
	CreatedAt   time.Time // shows.created_at
}

// TotalSeats returns the size of the show's seat space.
func (s *Show) TotalSeats() uint32 {
	return s.SeatRows * s.SeatsPerRow
}
