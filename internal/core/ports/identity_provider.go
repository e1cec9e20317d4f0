package ports

import (
	"context"

	"github.com/ecivil/civil-portal/internal/core/domain"
)

// IdentityProvider verifies credentials and manages accounts. It is the
// boundary between the portal and whatever backend owns user accounts.
type IdentityProvider interface {
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	// Register creates a citizen account and returns it with a fresh id.
	Register(ctx context.Context, reg domain.Registration) (*domain.User, error)
	// RequestPasswordReset starts a reset for email. Implementations must not
	// reveal whether the email belongs to an account.
	RequestPasswordReset(ctx context.Context, email string) error
}
