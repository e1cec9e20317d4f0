package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/ecivil/civil-portal/internal/core/domain"
	"github.com/ecivil/civil-portal/internal/core/ports"
)

const defaultResetTTL = time.Hour

// dummyHash is compared against when the account does not exist so unknown
// emails cost the same bcrypt work as wrong passwords.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("ecivil-timing-guard"), bcrypt.DefaultCost)

// Credentials is the account-backed IdentityProvider: bcrypt password hashes
// in an AccountRepository.
type Credentials struct {
	repo     ports.AccountRepository
	resetTTL time.Duration
	cost     int
	log      zerolog.Logger
	now      func() time.Time
}

// NewCredentials returns a Credentials provider. resetTTL <= 0 selects one
// hour.
func NewCredentials(repo ports.AccountRepository, resetTTL time.Duration, log zerolog.Logger) *Credentials {
	if resetTTL <= 0 {
		resetTTL = defaultResetTTL
	}
	return &Credentials{
		repo:     repo,
		resetTTL: resetTTL,
		cost:     bcrypt.DefaultCost,
		log:      log,
		now:      time.Now,
	}
}

func (c *Credentials) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	acc, err := c.repo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return acc.User.Clone(), nil
}

func (c *Credentials) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	email := normalizeEmail(reg.Email)
	if email == "" || reg.Password == "" || reg.FirstName == "" || reg.LastName == "" {
		return nil, domain.ErrRegistrationFailed
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.ErrRegistrationFailed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), c.cost)
	if err != nil {
		return nil, err
	}

	now := c.now().UTC()
	created, err := c.repo.Create(ctx, &domain.Account{
		User: domain.User{
			ID:        uuid.NewString(),
			FirstName: strings.TrimSpace(reg.FirstName),
			LastName:  strings.TrimSpace(reg.LastName),
			Email:     email,
			Phone:     strings.TrimSpace(reg.Phone),
			Role:      domain.RoleCitizen,
			Commune:   strings.TrimSpace(reg.Commune),
		},
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}
	return created.User.Clone(), nil
}

// RequestPasswordReset stores a reset token for the account of email. An
// unknown email is not an error.
func (c *Credentials) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return domain.ErrResetFailed
	}

	acc, err := c.repo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		c.log.Debug().Str("email", email).Msg("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	_, hash, err := newResetToken()
	if err != nil {
		return err
	}
	now := c.now().UTC()
	if err := c.repo.SaveResetToken(ctx, &domain.ResetToken{
		UserID:    acc.User.ID,
		Email:     email,
		TokenHash: hash,
		CreatedAt: now,
		ExpiresAt: now.Add(c.resetTTL),
	}); err != nil {
		return err
	}

	// Only the hash is kept; the plaintext token is never logged.
	c.log.Info().Str("user_id", acc.User.ID).Msg("password reset token issued")
	return nil
}

func newResetToken() (token, hash string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("reset token: %w", err)
	}
	token = hex.EncodeToString(buf)
	sum := sha256.Sum256([]byte(token))
	return token, hex.EncodeToString(sum[:]), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
