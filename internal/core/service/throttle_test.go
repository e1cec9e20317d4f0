package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

type stubThrottle struct {
	marked   map[string]bool
	checkErr error
	markErr  error
}

func (s *stubThrottle) IsThrottled(_ context.Context, email string) (bool, error) {
	if s.checkErr != nil {
		return false, s.checkErr
	}
	return s.marked[email], nil
}

func (s *stubThrottle) Mark(_ context.Context, email string) error {
	if s.markErr != nil {
		return s.markErr
	}
	s.marked[email] = true
	return nil
}

func countingIdentity(calls *int, err error) *stubIdentity {
	id := acceptAll()
	id.resetFn = func(context.Context, string) error {
		*calls++
		return err
	}
	return id
}

func TestResetThrottle_AbsorbsRepeats(t *testing.T) {
	calls := 0
	th := &stubThrottle{marked: map[string]bool{}}
	p := WithResetThrottle(countingIdentity(&calls, nil), th, zerolog.Nop())

	for i := 0; i < 3; i++ {
		if err := p.RequestPasswordReset(context.Background(), "Awa@Example.ci"); err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one provider call, got %d", calls)
	}
	if !th.marked["awa@example.ci"] {
		t.Fatalf("expected normalised email marked")
	}
}

func TestResetThrottle_FailsOpen(t *testing.T) {
	calls := 0
	th := &stubThrottle{marked: map[string]bool{}, checkErr: errors.New("redis down")}
	p := WithResetThrottle(countingIdentity(&calls, nil), th, zerolog.Nop())

	_ = p.RequestPasswordReset(context.Background(), "a@example.ci")
	_ = p.RequestPasswordReset(context.Background(), "a@example.ci")

	if calls != 2 {
		t.Fatalf("expected every request processed while the throttle is down, got %d", calls)
	}
}

func TestResetThrottle_ProviderErrorNotMarked(t *testing.T) {
	calls := 0
	th := &stubThrottle{marked: map[string]bool{}}
	p := WithResetThrottle(countingIdentity(&calls, errors.New("boom")), th, zerolog.Nop())

	if err := p.RequestPasswordReset(context.Background(), "a@example.ci"); err == nil {
		t.Fatalf("expected provider error")
	}
	if th.marked["a@example.ci"] {
		t.Fatalf("failed requests must not start the throttle window")
	}
}

func TestResetThrottle_PassesOtherCallsThrough(t *testing.T) {
	th := &stubThrottle{marked: map[string]bool{}}
	p := WithResetThrottle(acceptAll(), th, zerolog.Nop())

	user, err := p.Authenticate(context.Background(), testAdmin.Email, "pw")
	if err != nil || user.ID != testAdmin.ID {
		t.Fatalf("expected Authenticate delegated, got %+v %v", user, err)
	}
}
