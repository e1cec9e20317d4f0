package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/ecivil/civil-portal/internal/api/middleware"
	"github.com/ecivil/civil-portal/internal/core/domain"
)

type stubSession struct {
	user    *domain.User
	state   domain.LoadState
	loginFn func(ctx context.Context, email, password string) (*domain.User, error)
	regFn   func(ctx context.Context, reg domain.Registration) (*domain.User, error)
	resetFn func(ctx context.Context, email string) error
	out     bool
}

func (s *stubSession) CheckAuthStatus(context.Context) {}

func (s *stubSession) Login(ctx context.Context, email, password string) (*domain.User, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubSession) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	return s.regFn(ctx, reg)
}

func (s *stubSession) Logout(context.Context) {
	s.out = true
	s.user = nil
}

func (s *stubSession) ForgotPassword(ctx context.Context, email string) error {
	return s.resetFn(ctx, email)
}

func (s *stubSession) User() *domain.User      { return s.user.Clone() }
func (s *stubSession) IsAuthenticated() bool   { return s.user != nil }
func (s *stubSession) Loading() bool           { return s.state != domain.StateResolved }
func (s *stubSession) State() domain.LoadState { return s.state }

func newContext(method, target, body string, sess *stubSession) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if sess != nil {
		c.Set(middleware.SessionKey, sess)
	}
	return c, rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestAuthHandler_Login_Success(t *testing.T) {
	sess := &stubSession{
		state: domain.StateResolved,
		loginFn: func(_ context.Context, email, password string) (*domain.User, error) {
			if email != "agent@ecivil.ci" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return &domain.User{ID: "agent-123", Email: email, Role: domain.RoleAgent}, nil
		},
	}
	c, rec := newContext(http.MethodPost, "/login",
		`{"email":"agent@ecivil.ci","password":"secret","from":"/agent/process/9"}`, sess)

	if err := NewAuthHandler().Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decode(t, rec)
	if resp["redirect"] != "/agent/process/9" {
		t.Fatalf("expected return to the requested view, got %v", resp["redirect"])
	}
	user := resp["user"].(map[string]any)
	if user["role"] != "agent" || user["id"] != "agent-123" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
}

func TestAuthHandler_Login_ForeignReturnTargetGoesHome(t *testing.T) {
	sess := &stubSession{
		loginFn: func(_ context.Context, email, _ string) (*domain.User, error) {
			return &domain.User{ID: "c", Email: email, Role: domain.RoleCitizen}, nil
		},
	}
	c, rec := newContext(http.MethodPost, "/login?from=%2Fadmin%2Fusers",
		`{"email":"random@user.com","password":"x"}`, sess)

	if err := NewAuthHandler().Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got := decode(t, rec)["redirect"]; got != "/citizen/dashboard" {
		t.Fatalf("expected role home, got %v", got)
	}
}

func TestAuthHandler_Login_Failure(t *testing.T) {
	sess := &stubSession{
		loginFn: func(context.Context, string, string) (*domain.User, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	c, _ := newContext(http.MethodPost, "/login", `{"email":"a@b.com","password":"x"}`, sess)

	err := NewAuthHandler().Login(c)
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for the error handler, got %v", err)
	}
}

func TestAuthHandler_Login_Validation(t *testing.T) {
	sess := &stubSession{
		loginFn: func(context.Context, string, string) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	c, _ := newContext(http.MethodPost, "/login", `{"email":"nope","password":""}`, sess)

	err := NewAuthHandler().Login(c)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Fields) != 2 || ve.Fields[0] != "email must be a valid email" || ve.Fields[1] != "password is required" {
		t.Fatalf("unexpected fields: %v", ve.Fields)
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	c, _ := newContext(http.MethodPost, "/login", "not-json", &stubSession{})

	err := NewAuthHandler().Login(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_MissingSession(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/session", "", nil)

	err := NewAuthHandler().Session(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %v", err)
	}
}

func TestAuthHandler_Register_Success(t *testing.T) {
	sess := &stubSession{
		regFn: func(_ context.Context, reg domain.Registration) (*domain.User, error) {
			if reg.Email != "a@b.com" || reg.Commune != "cocody" || reg.Password != "password1" {
				t.Fatalf("unexpected registration: %+v", reg)
			}
			return &domain.User{ID: "citizen-1", FirstName: reg.FirstName, LastName: reg.LastName, Email: reg.Email, Role: domain.RoleCitizen}, nil
		},
	}
	c, rec := newContext(http.MethodPost, "/register",
		`{"firstName":"A","lastName":"B","email":"a@b.com","commune":"cocody","password":"password1"}`, sess)

	if err := NewAuthHandler().Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if got := decode(t, rec)["redirect"]; got != "/citizen/dashboard" {
		t.Fatalf("expected citizen home, got %v", got)
	}
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	c, _ := newContext(http.MethodPost, "/register", `{"firstName":"A","email":"a@b.com","password":"short"}`, &stubSession{})

	err := NewAuthHandler().Register(c)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := map[string]bool{"lastName is required": true, "password must be at least 8 characters": true}
	for _, f := range ve.Fields {
		if !want[f] {
			t.Fatalf("unexpected field message %q", f)
		}
	}
}

func TestAuthHandler_ForgotPassword(t *testing.T) {
	var asked string
	sess := &stubSession{resetFn: func(_ context.Context, email string) error {
		asked = email
		return nil
	}}
	c, rec := newContext(http.MethodPost, "/forgot-password", `{"email":"a@b.com"}`, sess)

	if err := NewAuthHandler().ForgotPassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusAccepted || asked != "a@b.com" {
		t.Fatalf("expected 202 after asking for a@b.com, got %d %q", rec.Code, asked)
	}
	if decode(t, rec)["message"] != resetAccepted {
		t.Fatalf("expected the non-committal message")
	}
}

func TestAuthHandler_ForgotPassword_Failure(t *testing.T) {
	sess := &stubSession{resetFn: func(context.Context, string) error { return domain.ErrResetFailed }}
	c, _ := newContext(http.MethodPost, "/forgot-password", `{"email":"a@b.com"}`, sess)

	if err := NewAuthHandler().ForgotPassword(c); !errors.Is(err, domain.ErrResetFailed) {
		t.Fatalf("expected ErrResetFailed, got %v", err)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	sess := &stubSession{user: &domain.User{ID: "c", Role: domain.RoleCitizen}, state: domain.StateResolved}
	c, rec := newContext(http.MethodPost, "/logout", "", sess)

	if err := NewAuthHandler().Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !sess.out || rec.Code != http.StatusOK {
		t.Fatalf("expected logout with 200, got %d", rec.Code)
	}
	if decode(t, rec)["redirect"] != "/" {
		t.Fatalf("expected landing redirect")
	}
}

func TestAuthHandler_Session(t *testing.T) {
	sess := &stubSession{user: &domain.User{ID: "a", Email: "admin@ecivil.ci", Role: domain.RoleAdmin}, state: domain.StateResolved}
	c, rec := newContext(http.MethodGet, "/session", "", sess)

	if err := NewAuthHandler().Session(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decode(t, rec)
	if resp["authenticated"] != true || resp["loading"] != false || resp["home"] != "/admin/dashboard" {
		t.Fatalf("unexpected snapshot: %v", resp)
	}
}

func TestResultOf(t *testing.T) {
	cases := map[string]error{
		"ok":                  nil,
		"busy":                domain.ErrSessionBusy,
		"invalid_credentials": domain.ErrInvalidCredentials,
		"registration_failed": domain.ErrRegistrationFailed,
		"reset_failed":        domain.ErrResetFailed,
		"error":               errors.New("x"),
	}
	for want, err := range cases {
		if got := resultOf(err); got != want {
			t.Errorf("resultOf(%v) = %s, want %s", err, got, want)
		}
	}
}
