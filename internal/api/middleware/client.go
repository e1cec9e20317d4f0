package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/ecivil/civil-portal/internal/api/metrics"
	"github.com/ecivil/civil-portal/internal/core/domain"
	"github.com/ecivil/civil-portal/internal/core/ports"
	"github.com/ecivil/civil-portal/internal/core/service"
)

const (
	// ClientCookie carries the signed browser client id.
	ClientCookie = "ecivil_client"

	// SessionKey is the echo context key of the request's ports.AuthSession.
	SessionKey = "auth_session"

	clientIssuer = "ecivil-portal"
)

// ClientConfig configures the Client middleware.
type ClientConfig struct {
	// Secret signs the client cookie (HS256). Required.
	Secret string
	// TTL is the cookie lifetime.
	TTL time.Duration
	// Secure marks the cookie HTTPS-only.
	Secure bool
	// Skipper defaults to skipping the operational endpoints.
	Skipper echomiddleware.Skipper
}

// Client identifies the browser client behind the request, minting a new
// client id when the cookie is missing or fails verification, and attaches
// the client's session from the registry to the echo context.
func Client(registry *service.Registry, cfg ClientConfig, log zerolog.Logger) echo.MiddlewareFunc {
	if cfg.Skipper == nil {
		cfg.Skipper = OperationalSkipper
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * 24 * time.Hour
	}
	secret := []byte(cfg.Secret)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper(c) {
				return next(c)
			}

			clientID, ok := readClientID(c, secret)
			if !ok {
				clientID = uuid.NewString()
				signed, err := signClientID(clientID, secret, cfg.TTL, time.Now())
				if err != nil {
					return err
				}
				c.SetCookie(&http.Cookie{
					Name:     ClientCookie,
					Value:    signed,
					Path:     "/",
					MaxAge:   int(cfg.TTL.Seconds()),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
				log.Debug().Str("client_id", clientID).Msg("new browser client")
			}

			sess, created := registry.Acquire(c.Request().Context(), clientID)
			if created {
				result := "signed_out"
				switch {
				case sess.State() == domain.StateNotChecked:
					result = "failed"
				case sess.IsAuthenticated():
					result = "signed_in"
				}
				metrics.SessionsRestoredTotal.WithLabelValues(result).Inc()
			}

			c.Set(SessionKey, sess)
			return next(c)
		}
	}
}

// OperationalSkipper skips health, metrics and API docs.
func OperationalSkipper(c echo.Context) bool {
	p := c.Request().URL.Path
	return strings.HasPrefix(p, "/health") ||
		p == "/metrics" ||
		strings.HasPrefix(p, "/swagger")
}

// SessionFrom returns the session attached by Client, or nil.
func SessionFrom(c echo.Context) ports.AuthSession {
	s, _ := c.Get(SessionKey).(ports.AuthSession)
	return s
}

func readClientID(c echo.Context, secret []byte) (string, bool) {
	cookie, err := c.Cookie(ClientCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(cookie.Value, claims, func(token *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(clientIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !tkn.Valid {
		return "", false
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", false
	}
	return claims.Subject, true
}

func signClientID(clientID string, secret []byte, ttl time.Duration, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    clientIssuer,
		Subject:   clientID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	return token.SignedString(secret)
}
