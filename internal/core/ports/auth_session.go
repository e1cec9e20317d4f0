package ports

import (
	"context"

	"github.com/ecivil/civil-portal/internal/core/domain"
)

// AuthSession is the per-client auth state machine the HTTP layer talks to.
type AuthSession interface {
	CheckAuthStatus(ctx context.Context)
	Login(ctx context.Context, email, password string) (*domain.User, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.User, error)
	Logout(ctx context.Context)
	ForgotPassword(ctx context.Context, email string) error

	User() *domain.User
	IsAuthenticated() bool
	Loading() bool
	State() domain.LoadState
}
