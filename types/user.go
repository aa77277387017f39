package types

import "time"

// User represents an account in the system.
// It contains identity, status flags, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Username is the unique login name chosen by the user.
	Username string `json:"username" db:"username"`

	// Email is the user's email address. It is optional but unique
	// when present.
	Email *string `json:"email" db:"email"`

	// IsActive reports whether the account is active. Accounts are
	// created active and are never deleted, only deactivated.
	IsActive bool `json:"is_active" db:"is_active"`

	// IsAdmin reports whether the user holds the admin role. Admins may
	// moderate comments they do not own.
	IsAdmin bool `json:"is_admin" db:"is_admin"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
