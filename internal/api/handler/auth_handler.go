package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ecivil/civil-portal/internal/api/metrics"
	"github.com/ecivil/civil-portal/internal/core/domain"
	"github.com/ecivil/civil-portal/internal/core/gate"
)

// resetAccepted is returned whether or not the address has an account.
const resetAccepted = "if an account exists for this address, a reset link has been sent"

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// Session reports the auth state of the requesting client.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snapshot(sess))
}

// Login signs the client in and tells it where to go next.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	start := time.Now()
	user, err := sess.Login(c.Request().Context(), req.Email, req.Password)
	observe("login", start, err)
	if err != nil {
		return err
	}

	from := req.From
	if from == "" {
		from = c.QueryParam("from")
	}
	return c.JSON(http.StatusOK, authResponse{User: user, Redirect: gate.ReturnTarget(user, from)})
}

// Register creates a citizen account and signs it in.
//
// @Summary      Register a citizen
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration form"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	start := time.Now()
	user, err := sess.Register(c.Request().Context(), req.toDomain())
	observe("register", start, err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, authResponse{User: user, Redirect: domain.HomeFor(user.Role)})
}

// ForgotPassword starts a password reset. The answer does not reveal whether
// the address has an account.
//
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      202   {object}  messageResponse
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	start := time.Now()
	err = sess.ForgotPassword(c.Request().Context(), req.Email)
	observe("forgot_password", start, err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, messageResponse{Message: resetAccepted})
}

// Logout signs the client out and sends it to the landing page.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	start := time.Now()
	sess.Logout(c.Request().Context())
	observe("logout", start, nil)
	return c.JSON(http.StatusOK, messageResponse{Message: "signed out", Redirect: domain.LandingPath})
}

func observe(op string, start time.Time, err error) {
	metrics.AuthOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	metrics.AuthOperationsTotal.WithLabelValues(op, resultOf(err)).Inc()
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrSessionBusy):
		return "busy"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrRegistrationFailed):
		return "registration_failed"
	case errors.Is(err, domain.ErrResetFailed):
		return "reset_failed"
	default:
		return "error"
	}
}
