package database

import (
	"context"
	"database/sql"
	"fmt"
)

// EnsureSchema creates the application tables when they do not exist.
// The show_seats table is the seat ledger: its composite primary key is
// what makes a multi-seat claim all-or-nothing, and the status column on
// bookings is the arbiter for the paid/expired race.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			email         VARCHAR(255) NOT NULL,
			name          VARCHAR(255) NOT NULL,
			role          ENUM('ADMIN','CUSTOMER') NOT NULL DEFAULT 'CUSTOMER',
			password_hash VARCHAR(255) NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uq_users_email (email)
		)`,
		`CREATE TABLE IF NOT EXISTS movies (
			id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			title        VARCHAR(255) NOT NULL,
			duration_min INT UNSIGNED NOT NULL DEFAULT 0,
			genre        VARCHAR(100) NOT NULL DEFAULT '',
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS shows (
			id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			movie_id      BIGINT UNSIGNED NOT NULL,
			starts_at     DATETIME NOT NULL,
			price_cents   INT UNSIGNED NOT NULL,
			seat_rows     INT UNSIGNED NOT NULL,
			seats_per_row INT UNSIGNED NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_shows_starts_at (starts_at),
			CONSTRAINT fk_shows_movie FOREIGN KEY (movie_id) REFERENCES movies (id)
		)`,
		`CREATE TABLE IF NOT EXISTS bookings (
			id           CHAR(36) NOT NULL PRIMARY KEY,
			user_id      BIGINT UNSIGNED NOT NULL,
			show_id      BIGINT UNSIGNED NOT NULL,
			amount_cents INT UNSIGNED NOT NULL,
			status       ENUM('PENDING','PAID','EXPIRED') NOT NULL DEFAULT 'PENDING',
			created_at   DATETIME NOT NULL,
			expires_at   DATETIME NOT NULL,
			paid_at      DATETIME NULL,
			KEY idx_bookings_user (user_id),
			KEY idx_bookings_pending_deadline (status, expires_at),
			CONSTRAINT fk_bookings_user FOREIGN KEY (user_id) REFERENCES users (id),
			CONSTRAINT fk_bookings_show FOREIGN KEY (show_id) REFERENCES shows (id)
		)`,
		`CREATE TABLE IF NOT EXISTS booking_seats (
			booking_id CHAR(36) NOT NULL,
			seat_label VARCHAR(8) NOT NULL,
			PRIMARY KEY (booking_id, seat_label),
			CONSTRAINT fk_booking_seats_booking FOREIGN KEY (booking_id) REFERENCES bookings (id)
		)`,
		`CREATE TABLE IF NOT EXISTS show_seats (
			show_id    BIGINT UNSIGNED NOT NULL,
			seat_label VARCHAR(8) NOT NULL,
			booking_id CHAR(36) NOT NULL,
			user_id    BIGINT UNSIGNED NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (show_id, seat_label),
			KEY idx_show_seats_booking (booking_id),
			CONSTRAINT fk_show_seats_show FOREIGN KEY (show_id) REFERENCES shows (id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
