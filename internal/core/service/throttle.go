package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ecivil/civil-portal/internal/core/ports"
)

// ResetThrottle remembers recent password reset requests (Redis).
type ResetThrottle interface {
	IsThrottled(ctx context.Context, email string) (bool, error)
	Mark(ctx context.Context, email string) error
}

type throttledIdentity struct {
	ports.IdentityProvider
	throttle ResetThrottle
	log      zerolog.Logger
}

// WithResetThrottle wraps provider so that repeated reset requests for the
// same email inside the throttle window are absorbed silently. Throttle
// errors fail open.
func WithResetThrottle(provider ports.IdentityProvider, throttle ResetThrottle, log zerolog.Logger) ports.IdentityProvider {
	return &throttledIdentity{IdentityProvider: provider, throttle: throttle, log: log}
}

func (t *throttledIdentity) RequestPasswordReset(ctx context.Context, email string) error {
	key := normalizeEmail(email)

	throttled, err := t.throttle.IsThrottled(ctx, key)
	if err != nil {
		t.log.Warn().Err(err).Msg("reset throttle check failed, processing anyway")
	} else if throttled {
		t.log.Debug().Str("email", key).Msg("password reset throttled")
		return nil
	}

	if err := t.IdentityProvider.RequestPasswordReset(ctx, email); err != nil {
		return err
	}

	if markErr := t.throttle.Mark(ctx, key); markErr != nil {
		t.log.Warn().Err(markErr).Str("email", key).Msg("failed to set reset throttle key")
	}
	return nil
}

var _ ports.IdentityProvider = (*throttledIdentity)(nil)
var _ ports.IdentityProvider = (*Credentials)(nil)
var _ ports.AuthSession = (*Session)(nil)
