// Package sessionstore holds the session slot codec and an in-process
// SessionStore.
package sessionstore

import (
	"encoding/json"
	"fmt"

	"github.com/ecivil/civil-portal/internal/core/domain"
)

// Encode serializes user into the slot format.
func Encode(user *domain.User) ([]byte, error) {
	if user == nil {
		return nil, fmt.Errorf("encode session: nil user")
	}
	return json.Marshal(user)
}

// Decode parses slot content. Anything that is not a JSON user with an id,
// an email and a known role is domain.ErrStorageCorrupt.
func Decode(raw []byte) (*domain.User, error) {
	var u domain.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode session: %w: %v", domain.ErrStorageCorrupt, err)
	}
	if u.ID == "" || u.Email == "" {
		return nil, fmt.Errorf("decode session: %w: missing identity", domain.ErrStorageCorrupt)
	}
	if !u.Role.Valid() {
		return nil, fmt.Errorf("decode session: %w: unknown role %q", domain.ErrStorageCorrupt, u.Role)
	}
	return &u, nil
}
