package domain

import "time"

// Account is a stored user together with its credential material.
type Account struct {
	User         User
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ResetToken records a pending password reset. Only the hash of the token
// handed to the user is kept.
type ResetToken struct {
	UserID    string
	Email     string
	TokenHash string
	CreatedAt time.Time
	ExpiresAt time.Time
}
