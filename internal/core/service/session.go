package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ecivil/civil-portal/internal/core/domain"
	"github.com/ecivil/civil-portal/internal/core/ports"
)

// Session is the auth state of one browser client. It is the only writer of
// the client's session slot.
type Session struct {
	clientID string
	store    ports.SessionStore
	identity ports.IdentityProvider
	audit    ports.AuditSink
	log      zerolog.Logger
	now      func() time.Time

	mu       sync.Mutex
	user     *domain.User
	state    domain.LoadState
	restored bool
	// epoch advances on every logout. Operations started under an older
	// epoch must not write the slot or the user.
	epoch    uint64
	lastSeen time.Time

	// restoreMu makes concurrent first requests wait for one restore.
	restoreMu sync.Mutex
	// slotMu orders slot writes of Login/Register against Logout.
	slotMu sync.Mutex
}

// errSignedOut reports an operation whose result was dropped because the
// client logged out while it was in flight.
var errSignedOut = errors.New("client signed out while the operation was in flight")

// NewSession returns a session for clientID in the not-checked state.
// audit may be nil.
func NewSession(
	clientID string,
	store ports.SessionStore,
	identity ports.IdentityProvider,
	audit ports.AuditSink,
	log zerolog.Logger,
) *Session {
	return &Session{
		clientID: clientID,
		store:    store,
		identity: identity,
		audit:    audit,
		log:      log.With().Str("client_id", clientID).Logger(),
		now:      time.Now,
		state:    domain.StateNotChecked,
		lastSeen: time.Now(),
	}
}

// CheckAuthStatus restores the user from the session store. A corrupt slot
// is cleared and leaves the client signed out. Any other load failure keeps
// the current user and returns a never-restored session to the not-checked
// state so the next request tries again. Errors are never returned.
func (s *Session) CheckAuthStatus(ctx context.Context) {
	epoch, err := s.begin()
	if err != nil {
		s.log.Debug().Msg("restore skipped, operation in flight")
		return
	}

	user, err := s.store.Load(ctx, s.clientID)
	settled := true
	switch {
	case errors.Is(err, domain.ErrStorageCorrupt):
		s.log.Warn().Err(err).Msg("discarding corrupt session slot")
		if clearErr := s.store.Clear(ctx, s.clientID); clearErr != nil {
			s.log.Warn().Err(clearErr).Msg("failed to clear corrupt session slot")
		}
		user = nil
	case err != nil:
		s.log.Error().Err(err).Msg("session restore failed, retrying on next request")
		settled = false
	}

	s.mu.Lock()
	if settled && s.epoch == epoch {
		s.user = user
		s.restored = true
	}
	s.mu.Unlock()
	s.finish()

	if settled {
		s.record(domain.AuthEvent{Type: domain.EventRestore, Success: user != nil}, user)
	}
}

// Login authenticates email/password and makes the result the session user.
// Every failure is reported as domain.ErrInvalidCredentials and leaves the
// current user untouched.
func (s *Session) Login(ctx context.Context, email, password string) (*domain.User, error) {
	epoch, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer s.finish()

	user, err := s.identity.Authenticate(ctx, email, password)
	if err == nil && user == nil {
		err = errors.New("identity provider returned no user")
	}
	if err == nil {
		err = s.commit(ctx, epoch, user)
	}
	if err != nil {
		s.log.Info().Err(err).Str("email", email).Msg("login failed")
		s.record(domain.AuthEvent{Type: domain.EventLogin, Email: email}, nil)
		return nil, wrapAs(domain.ErrInvalidCredentials, "login", err)
	}

	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user logged in")
	s.record(domain.AuthEvent{Type: domain.EventLogin, Email: email, Success: true}, user)
	return user.Clone(), nil
}

// Register creates a citizen account and signs it in. Failures are reported
// as domain.ErrRegistrationFailed and leave the current user untouched.
func (s *Session) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	epoch, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer s.finish()

	user, err := s.identity.Register(ctx, reg)
	switch {
	case err != nil:
	case user == nil || user.ID == "":
		err = errors.New("identity provider returned no account id")
	case user.Role != domain.RoleCitizen:
		err = fmt.Errorf("identity provider assigned role %q to a self-registered account", user.Role)
	default:
		err = s.commit(ctx, epoch, user)
	}
	if err != nil {
		s.log.Info().Err(err).Str("email", reg.Email).Msg("registration failed")
		s.record(domain.AuthEvent{Type: domain.EventRegister, Email: reg.Email}, nil)
		return nil, wrapAs(domain.ErrRegistrationFailed, "register", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("citizen registered")
	s.record(domain.AuthEvent{Type: domain.EventRegister, Email: reg.Email, Success: true}, user)
	return user.Clone(), nil
}

// Logout signs the client out. It always succeeds, even while another
// operation is in flight: that operation's result is dropped. A store
// failure is only logged because the in-memory user is cleared regardless.
func (s *Session) Logout(ctx context.Context) {
	s.slotMu.Lock()
	defer s.slotMu.Unlock()

	s.mu.Lock()
	s.epoch++
	prev := s.user
	s.user = nil
	s.restored = true
	if s.state == domain.StateNotChecked {
		s.state = domain.StateResolved
	}
	s.mu.Unlock()

	if err := s.store.Clear(ctx, s.clientID); err != nil {
		s.log.Error().Err(err).Msg("failed to clear session slot on logout")
	}

	s.record(domain.AuthEvent{Type: domain.EventLogout, Success: true}, prev)
}

// ForgotPassword asks the identity provider to start a reset. The session
// user is not affected.
func (s *Session) ForgotPassword(ctx context.Context, email string) error {
	if _, err := s.begin(); err != nil {
		return err
	}
	defer s.finish()

	if err := s.identity.RequestPasswordReset(ctx, email); err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("password reset failed")
		s.record(domain.AuthEvent{Type: domain.EventPasswordReset, Email: email}, nil)
		return wrapAs(domain.ErrResetFailed, "forgot password", err)
	}

	s.record(domain.AuthEvent{Type: domain.EventPasswordReset, Email: email, Success: true}, nil)
	return nil
}

// User returns a copy of the current user, or nil when signed out.
func (s *Session) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user.Clone()
}

// IsAuthenticated reports whether a user is currently signed in.
func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

// Loading is true until the session has been restored and while any auth
// operation is in flight.
func (s *Session) Loading() bool {
	return s.State() != domain.StateResolved
}

func (s *Session) State() domain.LoadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// restore runs CheckAuthStatus until one run settles the session.
// Concurrent callers wait for the run in progress.
func (s *Session) restore(ctx context.Context) {
	s.restoreMu.Lock()
	defer s.restoreMu.Unlock()
	if s.isRestored() {
		return
	}
	s.CheckAuthStatus(ctx)
}

func (s *Session) isRestored() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restored
}

func (s *Session) touch(t time.Time) {
	s.mu.Lock()
	s.lastSeen = t
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// begin marks an operation in flight and returns the logout epoch it runs
// under. Only one operation may run at a time.
func (s *Session) begin() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == domain.StateChecking {
		return 0, domain.ErrSessionBusy
	}
	s.state = domain.StateChecking
	return s.epoch, nil
}

// finish ends the operation in flight. A session that has never been
// restored goes back to not-checked.
func (s *Session) finish() {
	s.mu.Lock()
	if s.restored {
		s.state = domain.StateResolved
	} else {
		s.state = domain.StateNotChecked
	}
	s.mu.Unlock()
}

// commit saves user to the slot and makes it the session user, unless a
// logout happened since epoch.
func (s *Session) commit(ctx context.Context, epoch uint64, user *domain.User) error {
	s.slotMu.Lock()
	defer s.slotMu.Unlock()

	s.mu.Lock()
	stale := s.epoch != epoch
	s.mu.Unlock()
	if stale {
		return errSignedOut
	}

	if err := s.store.Save(ctx, s.clientID, user); err != nil {
		return err
	}
	s.mu.Lock()
	s.user = user.Clone()
	s.restored = true
	s.mu.Unlock()
	return nil
}

func (s *Session) record(ev domain.AuthEvent, user *domain.User) {
	if s.audit == nil {
		return
	}
	ev.ClientID = s.clientID
	ev.Timestamp = s.now().UTC()
	if user != nil {
		ev.UserID = user.ID
		ev.Role = user.Role
		if ev.Email == "" {
			ev.Email = user.Email
		}
	}
	s.audit.Enqueue(ev)
}

// wrapAs reports cause as kind while keeping it reachable through
// errors.Is / errors.As.
func wrapAs(kind error, op string, cause error) error {
	if errors.Is(cause, kind) {
		return fmt.Errorf("%s: %w", op, cause)
	}
	return fmt.Errorf("%s: %w: %w", op, kind, cause)
}
