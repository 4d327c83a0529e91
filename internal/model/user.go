package model

import "time"

// User roles understood by the role middleware.
const (
	RoleAdmin    = "ADMIN"
	RoleCustomer = "CUSTOMER"
)

// User is an account that can reserve seats.  Only the hash of the
// password is stored.  Email and Name feed the notifier events (booking
// confirmations and show reminders).
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email (unique)
	Name         string    // users.name
	Role         string    // users.role
	PasswordHash string    // users.password_hash
	CreatedAt    time.Time // users.created_at
}
