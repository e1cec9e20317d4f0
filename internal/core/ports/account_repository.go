package ports

import (
	"context"

	"github.com/ecivil/civil-portal/internal/core/domain"
)

// AccountRepository defines the persistence of portal accounts.
type AccountRepository interface {
	// FindByEmail returns domain.ErrUserNotFound when no account matches.
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	// Create returns domain.ErrUserExists when the email is taken.
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	SaveResetToken(ctx context.Context, token *domain.ResetToken) error
}
