package domain

import "time"

// AuthEventType names an auth operation recorded in the audit trail.
type AuthEventType string

const (
	EventRestore       AuthEventType = "restore"
	EventLogin         AuthEventType = "login"
	EventRegister      AuthEventType = "register"
	EventLogout        AuthEventType = "logout"
	EventPasswordReset AuthEventType = "password_reset"
)

// AuthEvent is one audit record. ClientID identifies the browser client the
// operation ran for; UserID and Role are empty when no user was involved.
type AuthEvent struct {
	ClientID  string        `json:"client_id" bson:"client_id"`
	Type      AuthEventType `json:"type" bson:"type"`
	Email     string        `json:"email,omitempty" bson:"email,omitempty"`
	UserID    string        `json:"user_id,omitempty" bson:"user_id,omitempty"`
	Role      Role          `json:"role,omitempty" bson:"role,omitempty"`
	Success   bool          `json:"success" bson:"success"`
	Timestamp time.Time     `json:"timestamp" bson:"timestamp"`
}
