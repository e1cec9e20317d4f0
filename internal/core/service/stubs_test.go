package service

import (
	"context"
	"sync"

	"github.com/ecivil/civil-portal/internal/core/domain"
)

type stubStore struct {
	mu       sync.Mutex
	slots    map[string]*domain.User
	loadErr  error
	saveErr  error
	clearErr error
	loads    int
	clears   int
}

func newStubStore() *stubStore {
	return &stubStore{slots: make(map[string]*domain.User)}
}

func (s *stubStore) Save(_ context.Context, slot string, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.slots[slot] = user.Clone()
	return nil
}

func (s *stubStore) Load(_ context.Context, slot string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.slots[slot].Clone(), nil
}

func (s *stubStore) Clear(_ context.Context, slot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
	delete(s.slots, slot)
	return s.clearErr
}

func (s *stubStore) get(slot string) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slots[slot].Clone()
}

func (s *stubStore) loadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}

type stubIdentity struct {
	authenticateFn func(ctx context.Context, email, password string) (*domain.User, error)
	registerFn     func(ctx context.Context, reg domain.Registration) (*domain.User, error)
	resetFn        func(ctx context.Context, email string) error
}

func (s *stubIdentity) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	return s.authenticateFn(ctx, email, password)
}

func (s *stubIdentity) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	return s.registerFn(ctx, reg)
}

func (s *stubIdentity) RequestPasswordReset(ctx context.Context, email string) error {
	return s.resetFn(ctx, email)
}

type recordingAudit struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func (a *recordingAudit) Enqueue(ev domain.AuthEvent) {
	a.mu.Lock()
	a.events = append(a.events, ev)
	a.mu.Unlock()
}

func (a *recordingAudit) all() []domain.AuthEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.AuthEvent(nil), a.events...)
}

var (
	testAdmin = &domain.User{ID: "admin-123", FirstName: "Admin", LastName: "User", Email: "admin@ecivil.ci", Role: domain.RoleAdmin}
	testAgent = &domain.User{ID: "agent-123", FirstName: "Agent", LastName: "User", Email: "agent@ecivil.ci", Role: domain.RoleAgent, Commune: "Abidjan-Plateau"}
)
