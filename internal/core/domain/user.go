package domain

import "strings"

// Role determines which route subtree and navigation chrome a user may reach.
type Role string

const (
	RoleCitizen Role = "citizen"
	RoleAgent   Role = "agent"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := Capabilities[r]
	return ok
}

// ParseRole normalises s into a Role. The second result is false for
// anything outside the closed role set.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

// User models an authenticated portal user. The JSON field names are the
// session slot contract and must stay stable.
type User struct {
	ID        string `json:"id" bson:"user_id"`
	FirstName string `json:"firstName" bson:"first_name"`
	LastName  string `json:"lastName" bson:"last_name"`
	Email     string `json:"email" bson:"email"`
	Phone     string `json:"phone,omitempty" bson:"phone,omitempty"`
	Role      Role   `json:"role" bson:"role"`
	Commune   string `json:"commune,omitempty" bson:"commune,omitempty"`
}

// Clone returns a copy that callers may keep without sharing state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// DisplayName is "First Last", trimmed when either part is missing.
func (u *User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Initials returns the upper-cased first letters of first and last name.
func (u *User) Initials() string {
	var b strings.Builder
	for _, part := range []string{u.FirstName, u.LastName} {
		for _, r := range part {
			b.WriteString(strings.ToUpper(string(r)))
			break
		}
	}
	return b.String()
}

// Registration carries the self-service sign-up form. It has no role field:
// registered accounts are always citizens.
type Registration struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Commune   string
	Password  string
}
