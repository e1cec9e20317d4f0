// Package identity provides the development identity backend. It accepts any
// password and infers roles from two fixed addresses, so it must never face
// real users; production deployments use the account-backed provider.
package identity

import (
	"context"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ecivil/civil-portal/internal/core/domain"
)

const (
	AdminEmail = "admin@ecivil.ci"
	AgentEmail = "agent@ecivil.ci"
)

var (
	demoAdmin = domain.User{
		ID:        "admin-123",
		FirstName: "Admin",
		LastName:  "User",
		Email:     AdminEmail,
		Role:      domain.RoleAdmin,
	}
	demoAgent = domain.User{
		ID:        "agent-123",
		FirstName: "Agent",
		LastName:  "User",
		Email:     AgentEmail,
		Role:      domain.RoleAgent,
		Commune:   "Abidjan-Plateau",
	}
	demoCitizen = domain.User{
		ID:        "citizen-123",
		FirstName: "Citizen",
		LastName:  "User",
		Phone:     "+225 0123456789",
		Role:      domain.RoleCitizen,
		Commune:   "Abidjan-Cocody",
	}
)

// Demo is an IdentityProvider for local development and demos.
type Demo struct {
	delay time.Duration
	log   zerolog.Logger

	mu         sync.Mutex
	registered map[string]domain.User
}

// NewDemo returns a Demo provider that waits delay before answering each
// call, standing in for network latency.
func NewDemo(delay time.Duration, log zerolog.Logger) *Demo {
	return &Demo{delay: delay, log: log, registered: make(map[string]domain.User)}
}

// Authenticate accepts any password. The admin and agent addresses map to
// their fixed accounts, an address registered through this provider maps to
// that account, and any other valid address becomes a citizen.
func (d *Demo) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	if err := d.wait(ctx); err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if !validEmail(email) || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	switch email {
	case AdminEmail:
		return demoAdmin.Clone(), nil
	case AgentEmail:
		return demoAgent.Clone(), nil
	}

	d.mu.Lock()
	u, ok := d.registered[email]
	d.mu.Unlock()
	if ok {
		return u.Clone(), nil
	}

	u = demoCitizen
	u.Email = email
	return &u, nil
}

// Register creates a citizen with a fresh id. Re-registering an address is
// rejected.
func (d *Demo) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	if err := d.wait(ctx); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(reg.Email))
	if !validEmail(email) || reg.Password == "" {
		return nil, domain.ErrRegistrationFailed
	}

	u := domain.User{
		ID:        "citizen-" + uuid.NewString(),
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
		Email:     email,
		Phone:     reg.Phone,
		Role:      domain.RoleCitizen,
		Commune:   reg.Commune,
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, taken := d.registered[email]; taken || email == AdminEmail || email == AgentEmail {
		return nil, domain.ErrUserExists
	}
	d.registered[email] = u
	return u.Clone(), nil
}

// RequestPasswordReset only logs; no mail is sent.
func (d *Demo) RequestPasswordReset(ctx context.Context, email string) error {
	if err := d.wait(ctx); err != nil {
		return err
	}
	d.log.Info().Str("email", email).Msg("demo: password reset email would be sent")
	return nil
}

func (d *Demo) wait(ctx context.Context) error {
	if d.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
