package domain

import "errors"

var (
	// ErrInvalidCredentials means login could not establish a session.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRegistrationFailed means an account could not be created.
	ErrRegistrationFailed = errors.New("registration failed")
	// ErrResetFailed means a password reset request could not be recorded.
	ErrResetFailed = errors.New("password reset failed")
	// ErrStorageCorrupt means a session slot holds content that does not
	// decode into a user. It is recovered by treating the slot as empty.
	ErrStorageCorrupt = errors.New("session storage corrupt")
	// ErrSessionBusy is returned when an auth operation starts while another
	// one is still in flight for the same client.
	ErrSessionBusy = errors.New("authentication already in progress")

	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
)
