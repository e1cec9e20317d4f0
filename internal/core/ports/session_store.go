package ports

import (
	"context"

	"github.com/ecivil/civil-portal/internal/core/domain"
)

// SessionStore durably mirrors the user of one browser client. The slot is
// the client id.
type SessionStore interface {
	// Save overwrites the slot with user.
	Save(ctx context.Context, slot string, user *domain.User) error
	// Load returns the stored user, or nil with a nil error when the slot is
	// empty. Undecodable content is reported as domain.ErrStorageCorrupt.
	Load(ctx context.Context, slot string) (*domain.User, error)
	// Clear removes the slot unconditionally.
	Clear(ctx context.Context, slot string) error
}
